package app

import (
	"gorm.io/gorm"

	redisclient "github.com/PavithraSukumar6/kbn-dss-backend/internal/clients/redis"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/blob"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/ocr"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/split"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/search"
)

type Clients struct {
	OCR         ocr.Engine // nil when Document AI is not configured
	Blob        blob.Store
	Splitter    split.Splitter
	SettingsBus redisclient.SettingsBus // nil when Redis is not configured
	SearchIndex search.Index
}

func wireClients(db *gorm.DB, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	engine, err := ocr.NewDocAI(log)
	if err != nil {
		return Clients{}, err
	}
	if engine == nil {
		log.Warn("Document AI not configured; uploads take the no-OCR path")
	}

	var store blob.Store
	if cfg.LocalBlobDir != "" {
		store, err = blob.NewLocal(log, cfg.LocalBlobDir)
	} else {
		store, err = blob.NewGCS(log)
	}
	if err != nil {
		return Clients{}, err
	}

	bus, err := redisclient.NewSettingsBus(log)
	if err != nil {
		return Clients{}, err
	}
	if bus == nil {
		log.Warn("Redis not configured; settings invalidation is process-local")
	}

	var index search.Index
	if db.Dialector.Name() == "postgres" {
		index, err = search.NewPostgres(db, log)
		if err != nil {
			return Clients{}, err
		}
	} else {
		index = search.NewMemory()
	}

	return Clients{
		OCR:         engine,
		Blob:        store,
		Splitter:    split.New(),
		SettingsBus: bus,
		SearchIndex: index,
	}, nil
}
