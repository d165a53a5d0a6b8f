package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labelproof/artcheck/config"
	"github.com/labelproof/artcheck/internal/domain"
	"github.com/labelproof/artcheck/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
		Cache: config.CacheConfig{
			Type: "memory",
		},
	}
}

// setupTestRouter creates a test router without a check service
func setupTestRouter() *gin.Engine {
	handler := NewHandler(nil, HandlerConfig{Version: "1.0.0"}, nil)
	if handler == nil {
		panic("setupTestRouter: NewHandler returned nil")
	}

	router := SetupRouter(testConfig(), handler, nil)
	if router == nil {
		panic("setupTestRouter: SetupRouter returned nil *gin.Engine")
	}

	return router
}

// --- Mock implementations for testing with CheckService ---

type mockCacheRepository struct {
	data map[string][]byte
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string][]byte)}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

type mockExtractor struct {
	result *domain.ArtworkExtraction
	err    error
}

func (m *mockExtractor) Extract(ctx context.Context, name string, content []byte) (*domain.ArtworkExtraction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockParser struct {
	result *domain.CopyDocument
	err    error
}

func (m *mockParser) Parse(ctx context.Context, name string, content []byte) (*domain.CopyDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// setupTestRouterWithService creates a test router with a real CheckService using mocks
func setupTestRouterWithService(t *testing.T, cfg *config.Config, extractor domain.ArtworkExtractor, parser domain.CopyDocumentParser) *gin.Engine {
	t.Helper()

	checkService, err := usecase.NewCheckService(
		newMockCacheRepository(),
		extractor,
		parser,
		usecase.CheckServiceConfig{
			CacheTTL: time.Hour,
		},
		nil,
	)
	if err != nil {
		t.Fatalf("NewCheckService() error = %v", err)
	}

	handler := NewHandler(checkService, HandlerConfig{Version: "1.0.0"}, nil)
	return SetupRouter(cfg, handler, nil)
}

func lotionDocument() *domain.CopyDocument {
	return &domain.CopyDocument{
		SourceName: "copy.yaml",
		Fields: []domain.CopyField{
			{FieldName: "Product Name", Panel: "Front", Language: domain.LanguageEN, Text: "Hydrating Body Lotion"},
		},
	}
}

func lotionExtraction() *domain.ArtworkExtraction {
	return &domain.ArtworkExtraction{
		SourceName: "label.pdf",
		Summary:    domain.ExtractionSummary{Method: domain.ExtractionLiveText, Confidence: 1, FragmentCount: 1},
		Fragments: []domain.TextFragment{
			{Text: "Hydrating Body Lotion", PageNumber: 1, FontSize: 9, Confidence: 1},
		},
	}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, name := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		part.Write([]byte("content of " + name))
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("multipart Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body %s)", err, w.Body.String())
	}
	return response
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		response := decodeBody(t, w)
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "artcheck" {
			t.Errorf("service = %v, want artcheck", response["service"])
		}
		if response["version"] != "1.0.0" {
			t.Errorf("version = %v, want 1.0.0", response["version"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter()

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("sets a request ID", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header not set")
		}
	})

	t.Run("echoes the caller's request ID", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("X-Request-ID = %q, want abc-123", got)
		}
	})
}

// TestCheckEndpointWithoutService tests the 501 answers when no service is wired
func TestCheckEndpointWithoutService(t *testing.T) {
	router := setupTestRouter()

	for _, path := range []string{"/api/v1/checks", "/api/v1/checks/files", "/api/v1/conversions"} {
		req, _ := http.NewRequest("POST", path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotImplemented {
			t.Errorf("%s: Status = %d, want %d", path, w.Code, http.StatusNotImplemented)
		}
		errorMsg, _ := decodeBody(t, w)["error"].(string)
		if !strings.Contains(errorMsg, "not configured") {
			t.Errorf("%s: error = %q, want to contain 'not configured'", path, errorMsg)
		}
	}
}

// TestRunCheckEndpoint tests POST /api/v1/checks with a real service
func TestRunCheckEndpoint(t *testing.T) {
	t.Run("returns a report for a valid request", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		payload := `{
			"copySource": "copy.xlsx",
			"copyFields": [{"fieldName": "Product Name", "panel": "Front", "language": "EN", "text": "Hydrating Body Lotion"}],
			"fragments": [{"text": "Hydrating Body Lotion", "pageNumber": 1, "fontSize": 9, "extractionMethod": "LIVE_TEXT", "confidence": 1}],
			"extraction": {"method": "LIVE_TEXT", "confidence": 1, "fragmentCount": 1}
		}`
		req, _ := http.NewRequest("POST", "/api/v1/checks", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var report domain.CheckReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("Failed to unmarshal report: %v", err)
		}
		if len(report.Findings) != 1 {
			t.Fatalf("len(Findings) = %d, want 1", len(report.Findings))
		}
		if report.Findings[0].Classification != domain.ExactMatch {
			t.Errorf("Classification = %v, want EXACT_MATCH", report.Findings[0].Classification)
		}
		if report.Findings[0].Status != domain.StatusOK {
			t.Errorf("Status = %v, want OK", report.Findings[0].Status)
		}
		if report.Source != "computed" {
			t.Errorf("Source = %s, want computed", report.Source)
		}
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		req, _ := http.NewRequest("POST", "/api/v1/checks", strings.NewReader(`{invalid json}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 400 for missing copyFields", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		req, _ := http.NewRequest("POST", "/api/v1/checks", strings.NewReader(`{"fragments": []}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if decodeBody(t, w)["error"] == nil {
			t.Error("expected error field in response")
		}
	})

	t.Run("returns 400 when extraction is omitted", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		payload := `{
			"copyFields": [{"fieldName": "Product Name", "text": "Hydrating Body Lotion"}],
			"fragments": [{"text": "Hydrating Body Lotion", "pageNumber": 1, "confidence": 1}]
		}`
		req, _ := http.NewRequest("POST", "/api/v1/checks", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		details, _ := decodeBody(t, w)["details"].(string)
		if !strings.Contains(details, "Extraction") {
			t.Errorf("details = %q, want it to name the extraction field", details)
		}
	})

	t.Run("returns 422 when every field is retired", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		payload := `{"copyFields": [{"fieldName": "Tagline", "text": "old", "isLegacy": true}], "extraction": {"method": "LIVE_TEXT", "confidence": 1}}`
		req, _ := http.NewRequest("POST", "/api/v1/checks", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("returns 400 for an unknown enum value", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		payload := `{"copyFields": [{"fieldName": "Name", "text": "x"}], "extraction": {"method": "OCR"}}`
		req, _ := http.NewRequest("POST", "/api/v1/checks", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestCheckFilesEndpoint tests the multipart upload endpoint
func TestCheckFilesEndpoint(t *testing.T) {
	t.Run("checks uploaded documents", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(),
			&mockExtractor{result: lotionExtraction()},
			&mockParser{result: lotionDocument()})

		body, contentType := multipartBody(t, map[string]string{"copy": "copy.yaml", "artwork": "label.pdf"})
		req, _ := http.NewRequest("POST", "/api/v1/checks/files", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}
		response := decodeBody(t, w)
		if response["artworkSource"] != "label.pdf" {
			t.Errorf("artworkSource = %v, want label.pdf", response["artworkSource"])
		}
		findings, _ := response["findings"].([]interface{})
		if len(findings) != 1 {
			t.Errorf("len(findings) = %d, want 1", len(findings))
		}
	})

	t.Run("returns 400 when the artwork file is missing", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(),
			&mockExtractor{result: lotionExtraction()},
			&mockParser{result: lotionDocument()})

		body, contentType := multipartBody(t, map[string]string{"copy": "copy.yaml"})
		req, _ := http.NewRequest("POST", "/api/v1/checks/files", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	errorCases := []struct {
		name       string
		extractErr error
		parseErr   error
		wantStatus int
	}{
		{"unsupported artwork format", domain.ErrUnsupportedFormat, nil, http.StatusUnsupportedMediaType},
		{"extraction service failure", domain.ErrExtractionService, nil, http.StatusBadGateway},
		{"malformed copy document", nil, domain.ErrMalformedDocument, http.StatusUnprocessableEntity},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			extractor := &mockExtractor{result: lotionExtraction(), err: tc.extractErr}
			parser := &mockParser{result: lotionDocument(), err: tc.parseErr}
			router := setupTestRouterWithService(t, testConfig(), extractor, parser)

			body, contentType := multipartBody(t, map[string]string{"copy": "copy.yaml", "artwork": "label.pdf"})
			req, _ := http.NewRequest("POST", "/api/v1/checks/files", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

// TestConversionsEndpoint tests POST /api/v1/conversions
func TestConversionsEndpoint(t *testing.T) {
	t.Run("checks fill weight fields", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		payload := `{"copyFields": [
			{"fieldName": "Fill Weight", "language": "EN", "text": "250 ML / 9.5 FL OZ"},
			{"fieldName": "Product Name", "language": "EN", "text": "Body Lotion"}
		]}`
		req, _ := http.NewRequest("POST", "/api/v1/conversions", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response struct {
			Conversions []domain.ConversionCheck `json:"conversions"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.Conversions) != 1 {
			t.Fatalf("len(conversions) = %d, want 1", len(response.Conversions))
		}
		if response.Conversions[0].Status != domain.StatusFail {
			t.Errorf("Status = %v, want FAIL", response.Conversions[0].Status)
		}
	})

	t.Run("returns an empty list when nothing applies", func(t *testing.T) {
		router := setupTestRouterWithService(t, testConfig(), nil, nil)

		payload := `{"copyFields": [{"fieldName": "Product Name", "text": "Body Lotion"}]}`
		req, _ := http.NewRequest("POST", "/api/v1/conversions", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), `"conversions":[]`) {
			t.Errorf("body = %s, want an empty conversions array", w.Body.String())
		}
	})
}

// TestRateLimitIntegration tests the per-IP limit on API routes
func TestRateLimitIntegration(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.PerIP = 2
	router := setupTestRouterWithService(t, cfg, nil, nil)

	payload := `{"copyFields": [{"fieldName": "Product Name", "text": "Body Lotion"}]}`
	var codes []int
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("POST", "/api/v1/conversions", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Error("Retry-After header not set on 429")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: Status = %d, want %d", i+1, codes[i], want[i])
		}
	}

	// /health is outside the limited group
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("/health Status = %d, want %d", w.Code, http.StatusOK)
	}
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for extension origins", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://abcdefghijklmnop" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "chrome-extension://abcdefghijklmnop")
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
		}
	})

	t.Run("check endpoint has CORS for localhost", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("POST", "/api/v1/checks", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if decodeBody(t, w)["error"] != "Internal server error" {
		t.Errorf("error = %v, want 'Internal server error'", w.Body.String())
	}
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter()

	for _, path := range []string{"/api/checks", "/checks", "/api/v2/checks", "/api/v1/check"} {
		req, _ := http.NewRequest("POST", path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Path %s: Status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"POST", "/api/v1/checks"},
		{"POST", "/api/v1/conversions"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			router := setupTestRouter()

			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			gotContentType := w.Header().Get("Content-Type")
			wantContentType := "application/json; charset=utf-8"
			if gotContentType != wantContentType {
				t.Errorf("Content-Type = %q, want %q", gotContentType, wantContentType)
			}
			decodeBody(t, w)
		})
	}
}
