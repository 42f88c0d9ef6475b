package app

import (
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/envutil"
)

type Config struct {
	Addr             string
	Environment      string
	Version          string
	ClassifyRulePath string
	RoutingRulePath  string
	LocalBlobDir     string
	MaxConcurrentOCR int
	RunWorker        bool
}

func LoadConfig() Config {
	return Config{
		Addr:             envutil.Str("HTTP_ADDR", ":8080"),
		Environment:      envutil.Str("APP_ENV", "development"),
		Version:          envutil.Str("APP_VERSION", "dev"),
		ClassifyRulePath: envutil.Str("CLASSIFY_RULES_PATH", ""),
		RoutingRulePath:  envutil.Str("ROUTING_RULES_PATH", ""),
		LocalBlobDir:     envutil.Str("LOCAL_BLOB_DIR", ""),
		MaxConcurrentOCR: envutil.Int("MAX_CONCURRENT_OCR", 4),
		RunWorker:        envutil.Bool("RUN_WORKER", true),
	}
}
