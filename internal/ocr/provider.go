package ocr

import (
	"context"
	"net/http"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/config"
	"github.com/studysphere/backend/internal/logger"
)

var (
	ErrNotConfigured   = apperr.Misconfigured("OCR API key not configured on server")
	ErrUnsupportedType = apperr.Validation("This file type cannot be read by the configured OCR provider")
)

// Document is one uploaded file.
type Document struct {
	Name     string
	MimeType string
	Data     []byte
}

// Provider turns a document into plain text.
type Provider interface {
	Extract(ctx context.Context, doc Document) (string, error)
	Close() error
}

// Unconfigured is used when no OCR credentials are available.
type Unconfigured struct{}

func (Unconfigured) Extract(context.Context, Document) (string, error) { return "", ErrNotConfigured }
func (Unconfigured) Close() error                                      { return nil }

// NewProvider builds the provider selected by cfg.OCRProvider. A missing
// OCR.space key is not an error: the Unconfigured provider is returned.
func NewProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) (Provider, error) {
	if cfg.OCRProvider == config.OCRProviderVision {
		p, err := NewVisionProvider(ctx, log, CredentialOptions(cfg.GCPCredentials)...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	if cfg.OCRSpaceAPIKey == "" {
		log.Warn("OCR_SPACE_API_KEY is not set; OCR endpoints are disabled")
		return Unconfigured{}, nil
	}
	return NewOCRSpaceProvider(cfg.OCRSpaceAPIKey, cfg.OCRSpaceURL, &http.Client{Timeout: cfg.OCRTimeout}, log), nil
}
