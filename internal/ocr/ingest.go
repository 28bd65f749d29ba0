package ocr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
)

const (
	// MinTextLength is the shortest trimmed OCR result treated as readable.
	MinTextLength = 20
	// MaxNoteChars caps the content of a note created from OCR.
	MaxNoteChars     = 12000
	truncationSuffix = "\n\n(Truncated because the PDF was very long.)"

	PlaceholderWarning = "OCR could not extract clear text from this PDF. A placeholder note was created instead."
)

var ErrUnreadable = apperr.New(apperr.KindUnusableContent,
	"OCR could not extract clear text from this PDF. Please try another file or clearer scan.")

var pdfSuffix = regexp.MustCompile(`(?i)\.pdf$`)

// Ingestor wraps a Provider with a timeout and the readability threshold.
type Ingestor struct {
	provider Provider
	timeout  time.Duration
	log      *logger.Logger
}

func NewIngestor(p Provider, timeout time.Duration, log *logger.Logger) *Ingestor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Ingestor{provider: p, timeout: timeout, log: log.With("service", "OCRIngest")}
}

// Configured is false when no OCR credentials were supplied.
func (i *Ingestor) Configured() bool {
	_, off := i.provider.(Unconfigured)
	return !off
}

// Extract returns the document's trimmed text. Provider failures and near-empty
// results are reported as ErrUnreadable; misconfiguration and unsupported
// file types are passed through.
func (i *Ingestor) Extract(ctx context.Context, doc Document) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	text, err := i.provider.Extract(callCtx, doc)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrUnsupportedType) {
			return "", err
		}
		i.log.Warn("ocr failed", "file", doc.Name, "error", err.Error())
		return "", ErrUnreadable.Wrap(err)
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinTextLength {
		i.log.Warn("ocr returned too little text", "file", doc.Name, "chars", len(text))
		return "", ErrUnreadable
	}
	i.log.Info("ocr extracted", "file", doc.Name, "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
	return text, nil
}

// Truncate caps text at MaxNoteChars runes, marking the cut.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= MaxNoteChars {
		return text
	}
	return string(r[:MaxNoteChars]) + truncationSuffix
}

// Title picks the form title, else the file name without ".pdf", else fallback.
func Title(formTitle, fileName, fallback string) string {
	if t := strings.TrimSpace(formTitle); t != "" {
		return t
	}
	if t := strings.TrimSpace(pdfSuffix.ReplaceAllString(fileName, "")); t != "" {
		return t
	}
	return fallback
}

// Placeholder is the body of the note created when OCR could not read a file.
func Placeholder(fileName string) string {
	return fmt.Sprintf("This note was created from the PDF file %q.\n\n", fileName) +
		"The online OCR service could not read much text from this PDF. " +
		"It might be scanned, low-quality, or formatted in a way that is hard to read automatically.\n\n" +
		"You can now type or paste your own notes here for this PDF."
}
