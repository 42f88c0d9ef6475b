package search

import (
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
)

// Index is the full-text layer over extracted document content. Listing
// access control still applies on top of whatever IDs an index returns.
type Index interface {
	IndexDocument(dbc dbctx.Context, documentID int64, content string) error
	Remove(dbc dbctx.Context, documentID int64) error
	Search(dbc dbctx.Context, query string, limit int) ([]int64, error)
}
