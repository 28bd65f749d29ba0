package ocr

import (
	"context"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/studysphere/backend/internal/logger"
)

var visionImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// VisionProvider runs DOCUMENT_TEXT_DETECTION on uploaded images. PDFs need
// the asynchronous GCS flow and are rejected with ErrUnsupportedType.
type VisionProvider struct {
	client *vision.ImageAnnotatorClient
	log    *logger.Logger
}

// CredentialOptions turns a service-account JSON document or file path into
// client options. Empty creds fall back to application default credentials.
func CredentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func NewVisionProvider(ctx context.Context, log *logger.Logger, opts ...option.ClientOption) (*VisionProvider, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "vision client")
	}
	return &VisionProvider{client: client, log: log.With("service", "Vision")}, nil
}

func (p *VisionProvider) Extract(ctx context.Context, doc Document) (string, error) {
	if !visionImageTypes[strings.ToLower(doc.MimeType)] {
		return "", ErrUnsupportedType
	}

	resp, err := p.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: doc.Data},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", errors.Wrap(err, "vision BatchAnnotateImages")
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", errors.Errorf("vision annotate %q: %s", doc.Name, r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	text := strings.TrimSpace(r0.FullTextAnnotation.Text)
	p.log.Debug("vision parsed", "file", doc.Name, "chars", len(text))
	return text, nil
}

func (p *VisionProvider) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
