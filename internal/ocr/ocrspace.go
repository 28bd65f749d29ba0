package ocr

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/studysphere/backend/internal/logger"
)

const maxOCRResponseBytes = 8 << 20

// OCRSpaceProvider calls the OCR.space parse/image endpoint with a multipart upload.
type OCRSpaceProvider struct {
	apiKey string
	url    string
	client *http.Client
	log    *logger.Logger
}

func NewOCRSpaceProvider(apiKey, url string, client *http.Client, log *logger.Logger) *OCRSpaceProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &OCRSpaceProvider{apiKey: apiKey, url: url, client: client, log: log.With("service", "OCRSpace")}
}

// fileType maps a document onto OCR.space's filetype parameter.
func fileType(doc Document) string {
	switch doc.MimeType {
	case "image/png":
		return "PNG"
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/gif":
		return "GIF"
	case "image/bmp":
		return "BMP"
	case "image/tiff":
		return "TIF"
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	}
	return "PDF"
}

func (p *OCRSpaceProvider) Extract(ctx context.Context, doc Document) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"apikey", p.apiKey},
		{"filetype", fileType(doc)},
		{"language", "eng"},
		{"isOverlayRequired", "false"},
		{"OCREngine", "2"},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return "", errors.Wrap(err, "write form field")
		}
	}
	name := doc.Name
	if name == "" {
		name = "upload.pdf"
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err := part.Write(doc.Data); err != nil {
		return "", errors.Wrap(err, "write form file")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, &body)
	if err != nil {
		return "", errors.Wrap(err, "build ocr request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "ocr.space request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxOCRResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, "read ocr.space response")
	}
	if !gjson.ValidBytes(raw) {
		return "", errors.Errorf("ocr.space returned a non-JSON response (status %d)", resp.StatusCode)
	}

	res := gjson.ParseBytes(raw)
	if res.Get("IsErroredOnProcessing").Bool() {
		return "", errors.Errorf("ocr.space could not process %q: %s", name, errorMessage(res))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("ocr.space status %d: %s", resp.StatusCode, errorMessage(res))
	}

	text := strings.TrimSpace(res.Get("ParsedResults.0.ParsedText").String())
	p.log.Debug("ocr.space parsed", "file", name, "chars", len(text))
	return text, nil
}

// errorMessage reads ErrorMessage, which OCR.space sends as a string or an array.
func errorMessage(res gjson.Result) string {
	m := res.Get("ErrorMessage")
	if m.IsArray() {
		if arr := m.Array(); len(arr) > 0 {
			return arr[0].String()
		}
		return ""
	}
	return m.String()
}

func (p *OCRSpaceProvider) Close() error { return nil }
