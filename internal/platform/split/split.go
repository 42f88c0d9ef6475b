package split

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Artifact is one logical page of an intake file. Page artifacts share the
// stored blob; PageNumber addresses the page within it.
type Artifact struct {
	Filename   string
	PageNumber int
	PageCount  int
	MimeType   string
}

// Splitter breaks an intake file into per-page artifacts.
type Splitter interface {
	Split(filename string, data []byte) ([]Artifact, error)
}

type pageSplitter struct{}

func New() Splitter { return pageSplitter{} }

var pdfPageRe = regexp.MustCompile(`/Type\s*/Page[^s]`)

// Split inspects the file header to count pages. PDFs yield one artifact per
// page; anything else is treated as a single-page scan.
func (pageSplitter) Split(filename string, data []byte) ([]Artifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file %q", filename)
	}

	mime := mimeFor(filename, data)
	pages := 1
	if mime == "application/pdf" {
		if n := len(pdfPageRe.FindAll(data, -1)); n > 0 {
			pages = n
		}
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	ext := filepath.Ext(filename)
	out := make([]Artifact, 0, pages)
	for i := 1; i <= pages; i++ {
		name := filename
		if pages > 1 {
			name = fmt.Sprintf("%s_p%d%s", base, i, ext)
		}
		out = append(out, Artifact{
			Filename:   name,
			PageNumber: i,
			PageCount:  pages,
			MimeType:   mime,
		})
	}
	return out, nil
}

func mimeFor(filename string, data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "application/pdf"
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".txt":
		return "text/plain"
	}
	return "application/octet-stream"
}
