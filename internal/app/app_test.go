package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelproof/artcheck/config"
	"github.com/labelproof/artcheck/internal/infrastructure/extraction"
	"github.com/labelproof/artcheck/internal/infrastructure/pdftext"
)

func TestNewExtractor(t *testing.T) {
	local, err := NewExtractor(config.ExtractionConfig{Provider: "local"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &pdftext.Extractor{}, local)

	remote, err := NewExtractor(config.ExtractionConfig{Provider: "service", BaseURL: "http://localhost:9999", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &extraction.Client{}, remote)

	_, err = NewExtractor(config.ExtractionConfig{Provider: "ocr"}, nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Extraction: config.ExtractionConfig{Provider: "local"},
		Cache:      config.CacheConfig{Type: "memory"},
	}

	services, err := New(cfg, nil)
	require.NoError(t, err)
	defer services.Close()

	assert.NotNil(t, services.Checks)
	assert.NotNil(t, services.cache)

	cfg.Cache.Type = "none"
	uncached, err := New(cfg, nil)
	require.NoError(t, err)
	defer uncached.Close()
	assert.Nil(t, uncached.cache)

	cfg.Exclusion.ExtraPatterns = []string{"("}
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
