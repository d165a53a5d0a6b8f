package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
	"github.com/labelproof/artcheck/internal/usecase"
)

const serviceName = "artcheck"

// defaultMaxUploadBytes bounds each uploaded file.
const defaultMaxUploadBytes int64 = 50 << 20

// HandlerConfig holds handler settings that come from configuration
type HandlerConfig struct {
	Version        string
	MaxUploadBytes int64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	checkService   *usecase.CheckService
	version        string
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler. checkService may be nil, in which
// case the check endpoints answer 501.
func NewHandler(checkService *usecase.CheckService, cfg HandlerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		checkService:   checkService,
		version:        cfg.Version,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": h.version,
	})
}

// ConversionRequest is the body of POST /api/v1/conversions
type ConversionRequest struct {
	CopyFields []domain.CopyField `json:"copyFields" binding:"required"`
}

// CheckBody is the body of POST /api/v1/checks. The extraction summary must
// be present; its method and confidence drive the visual-check triggers.
type CheckBody struct {
	domain.CheckRequest
	Extraction *domain.ExtractionSummary `json:"extraction" binding:"required"`
}

// RunCheck checks pre-extracted copy fields against artwork fragments
func (h *Handler) RunCheck(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var body CheckBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	req := body.CheckRequest
	req.Extraction = *body.Extraction

	report, err := h.checkService.Check(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CheckFiles checks an uploaded copy document against uploaded artwork.
// Expects multipart fields "copy" and "artwork".
func (h *Handler) CheckFiles(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	copyName, copyContent, err := h.readUpload(c, "copy")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	artworkName, artworkContent, err := h.readUpload(c, "artwork")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.checkService.CheckDocuments(c.Request.Context(), copyName, copyContent, artworkName, artworkContent)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CheckConversions runs only the metric/imperial cross-check
func (h *Handler) CheckConversions(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	checks := h.checkService.CheckConversions(req.CopyFields)
	if checks == nil {
		checks = []domain.ConversionCheck{}
	}
	c.JSON(http.StatusOK, gin.H{"conversions": checks})
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.checkService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Check service not configured",
		})
		return false
	}
	return true
}

func (h *Handler) readUpload(c *gin.Context, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q file: %w", field, err)
	}
	if header.Size > h.maxUploadBytes {
		return "", nil, fmt.Errorf("%q file exceeds %d bytes", field, h.maxUploadBytes)
	}

	content, err := readMultipartFile(header, h.maxUploadBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %q file: %w", field, err)
	}
	return header.Filename, content, nil
}

func readMultipartFile(header *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoCopyFields):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Copy document contains no active fields"})
	case errors.Is(err, domain.ErrMalformedDocument):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrExtractionService):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Extraction service temporarily unavailable"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Check timed out"})
	default:
		h.logger.Error("check failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
