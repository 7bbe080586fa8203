package models

import "time"

// DocumentType enumerates the portal's document categories.
type DocumentType string

const (
	TypeTD     DocumentType = "TD"
	TypeTP     DocumentType = "TP"
	TypeCours  DocumentType = "Cours"
	TypeExamen DocumentType = "Examen"
)

// Document is the client's read-only projection of a server-owned document.
type Document struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        DocumentType `json:"type"`
	Subject     string       `json:"subject"`
	Description string       `json:"description,omitempty"`
	FileName    string       `json:"fileName,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	Downloads   int          `json:"downloads"`
	UploadedBy  *Uploader    `json:"uploadedBy,omitempty"`
}

// DocumentFilter narrows a listing. Absent fields impose no constraint; the
// server combines present fields with logical AND and matches Search as a
// case-insensitive substring of title or description.
type DocumentFilter struct {
	Type    string
	Subject string
	Search  string
}

// IsZero reports whether no field is set.
func (f DocumentFilter) IsZero() bool {
	return f.Type == "" && f.Subject == "" && f.Search == ""
}

// UploadMetadata describes a document being created. Exactly one file
// accompanies it per submission.
type UploadMetadata struct {
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description,omitempty"`
}

// FileSelection is a file chosen for upload, held in memory so a failed
// submission can be retried without re-selecting.
type FileSelection struct {
	Name string
	Data []byte
}

// Pagination contains pagination metadata for list views.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
