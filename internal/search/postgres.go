package search

import (
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type postgresIndex struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgres builds a tsvector-backed index in a side table so reindexing
// never rewrites document rows.
func NewPostgres(db *gorm.DB, baseLog *logger.Logger) (Index, error) {
	idx := &postgresIndex{db: db, log: baseLog.With("service", "search.Postgres")}
	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS document_search (
			document_id BIGINT PRIMARY KEY,
			vector      tsvector NOT NULL
		)`).Error
	if err != nil {
		return nil, err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_search_vector ON document_search USING GIN (vector)`).Error; err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *postgresIndex) IndexDocument(dbc dbctx.Context, documentID int64, content string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = idx.db
	}
	return transaction.WithContext(dbc.Ctx).Exec(`
		INSERT INTO document_search (document_id, vector)
		VALUES (?, to_tsvector('english', ?))
		ON CONFLICT (document_id) DO UPDATE SET vector = EXCLUDED.vector`,
		documentID, content).Error
}

func (idx *postgresIndex) Remove(dbc dbctx.Context, documentID int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = idx.db
	}
	return transaction.WithContext(dbc.Ctx).
		Exec(`DELETE FROM document_search WHERE document_id = ?`, documentID).Error
}

func (idx *postgresIndex) Search(dbc dbctx.Context, query string, limit int) ([]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = idx.db
	}
	if limit <= 0 {
		limit = 100
	}
	var ids []int64
	err := transaction.WithContext(dbc.Ctx).Raw(`
		SELECT document_id
		FROM document_search
		WHERE vector @@ plainto_tsquery('english', ?)
		ORDER BY ts_rank(vector, plainto_tsquery('english', ?)) DESC
		LIMIT ?`,
		query, query, limit).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
