// Package pdf provides document access for the splitting and extraction
// operations: opening and validating a PDF, counting pages, extracting
// per-page text, and writing page subsets to new files.
//
// The capability is an interface so the service layer and its tests can run
// against in-memory fakes; the real implementation delegates to pdfcpu.
package pdf

import (
	"errors"

	"github.com/splitfire/splitfire/internal/chunk"
)

// ErrNotFound reports a missing source file.
var ErrNotFound = errors.New("pdf not found")

// ErrUnreadable reports a document that exists but cannot be processed:
// corrupt, encrypted, zero pages, or over the configured size limit.
// Terminal and user-visible; never retried.
var ErrUnreadable = errors.New("pdf unreadable")

// DocumentInfo is the metadata surfaced by the info operation.
type DocumentInfo struct {
	Path          string `json:"path"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	TotalPages    int    `json:"total_pages"`
	HasBookmarks  bool   `json:"has_bookmarks"`
	Title         string `json:"title,omitempty"`
	Creator       string `json:"creator,omitempty"`
	Subject       string `json:"subject,omitempty"`
	CreationDate  string `json:"creation_date,omitempty"`
}

// Document is an open PDF.
type Document interface {
	// PageCount returns the number of pages; always >= 1 for an open document.
	PageCount() int
	// PageText extracts the text of one 1-based page. An empty string for a
	// page with no extractable text (e.g. a scanned image) is not an error.
	PageText(page int) (string, error)
	// WriteSubset writes the pages covered by r to a new PDF at dest.
	WriteSubset(r chunk.PageRange, dest string) error
	// Info returns document metadata.
	Info() DocumentInfo
	// Close releases resources held by the document.
	Close() error
}

// Access opens documents. Open fails with ErrNotFound for missing paths and
// ErrUnreadable for corrupt, encrypted, empty, or oversized documents.
type Access interface {
	Open(path string) (Document, error)
}
