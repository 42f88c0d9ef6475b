package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/envutil"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type docAIEngine struct {
	log    *logger.Logger
	client *documentai.DocumentProcessorClient

	projectID        string
	location         string
	processorID      string
	processorVersion string
}

// NewDocAI builds a Document AI backed engine from DOCAI_* env vars. Returns
// (nil, nil) when no processor is configured so the pipeline can take the
// no-OCR path instead of failing at boot.
func NewDocAI(baseLog *logger.Logger) (Engine, error) {
	projectID := envutil.Str("DOCAI_PROJECT_ID", "")
	processorID := envutil.Str("DOCAI_PROCESSOR_ID", "")
	if projectID == "" || processorID == "" {
		return nil, nil
	}
	location := envutil.Str("DOCAI_LOCATION", "us")

	slog := baseLog.With("service", "ocr.DocAI")
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, clientOptionsFromEnv()...)
	client, err := documentai.NewDocumentProcessorClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", processorID)
	return &docAIEngine{
		log:              slog,
		client:           client,
		projectID:        projectID,
		location:         location,
		processorID:      processorID,
		processorVersion: envutil.Str("DOCAI_PROCESSOR_VERSION", ""),
	}, nil
}

func (e *docAIEngine) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *docAIEngine) processorName() string {
	if e.processorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			e.projectID, e.location, e.processorID, e.processorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		e.projectID, e.location, e.processorID)
}

func (e *docAIEngine) Extract(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(data) == 0 {
		return &Result{}, nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	resp, err := e.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: e.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return &Result{}, nil
	}
	return resultFromDocument(resp.Document), nil
}

func resultFromDocument(doc *documentaipb.Document) *Result {
	out := &Result{
		Text:      strings.TrimSpace(doc.GetText()),
		PageCount: len(doc.GetPages()),
	}

	// Document AI reports per-page detected-language confidence in 0..1;
	// average and scale to the pipeline's 0..100.
	var sum float64
	var n int
	for _, page := range doc.GetPages() {
		for _, lang := range page.GetDetectedLanguages() {
			sum += float64(lang.GetConfidence())
			n++
		}
	}
	if n > 0 {
		out.Confidence = sum / float64(n) * 100
	} else if out.Text != "" {
		out.Confidence = 85
	}
	return out
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(envutil.Str("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""))
	if creds == "" {
		creds = strings.TrimSpace(envutil.Str("GOOGLE_APPLICATION_CREDENTIALS", ""))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
