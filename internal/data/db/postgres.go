package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/envutil"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects to the configured database. Postgres is the production
// backend; DB_DRIVER=sqlite switches to an embedded file database for local
// runs and CI.
func New(baseLog *logger.Logger) (*Service, error) {
	serviceLog := baseLog.With("service", "DBService")

	driver := envutil.Str("DB_DRIVER", "postgres")

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := envutil.Str("SQLITE_PATH", "kbn-dss.db")
		serviceLog.Info("Connecting to sqlite", "path", path)
		gdb, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		host := envutil.Str("POSTGRES_HOST", "localhost")
		port := envutil.Str("POSTGRES_PORT", "5432")
		user := envutil.Str("POSTGRES_USER", "postgres")
		password := envutil.Str("POSTGRES_PASSWORD", "")
		name := envutil.Str("POSTGRES_NAME", "kbn_dss")
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		serviceLog.Info("Connecting to Postgres", "host", host, "db", name)
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }
