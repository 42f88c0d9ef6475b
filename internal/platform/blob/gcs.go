package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/envutil"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type gcsStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

// NewGCS builds a GCS-backed store. The bucket must already exist.
func NewGCS(baseLog *logger.Logger) (Store, error) {
	bucket := envutil.Str("DOCUMENT_GCS_BUCKET_NAME", "")
	if bucket == "" {
		return nil, fmt.Errorf("missing env var DOCUMENT_GCS_BUCKET_NAME")
	}
	slog := baseLog.With("service", "blob.GCS")

	client, err := storage.NewClient(context.Background(), gcsClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	slog.Info("Object storage initialized", "bucket", bucket)
	return &gcsStore{log: slog, client: client, bucket: bucket}, nil
}

func (s *gcsStore) Upload(ctx context.Context, key string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	return nil
}

func (s *gcsStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return rc, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}

func gcsClientOptionsFromEnv() []option.ClientOption {
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
