package dto

import "encoding/json"

// CreateDocumentRequest stores an externally produced document bundle.
type CreateDocumentRequest struct {
	Name string          `json:"name" validate:"required,min=3,max=120"`
	Data json.RawMessage `json:"data" validate:"required"`
}

// UpdateDocumentRequest renames a stored document or replaces its content.
type UpdateDocumentRequest struct {
	Name *string         `json:"name,omitempty" validate:"omitempty,min=3,max=120"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DuplicateDocumentRequest clones a document for a sister company. Every
// escala and jornada in the copy receives fresh keys so both documents can
// be imported into the same payroll system. Codes restricts the copy to a
// subset of escalas; Prefix is prepended to each copied escala name so the
// affiliate's entries stay distinguishable in the payroll system.
type DuplicateDocumentRequest struct {
	Name   string   `json:"name" validate:"required,min=3,max=120"`
	Codes  []string `json:"codes,omitempty"`
	Prefix string   `json:"prefix,omitempty" validate:"omitempty,max=40"`
}

// ExportDocumentRequest selects which escalas to include in a custom export.
// An empty Codes slice exports the full document.
type ExportDocumentRequest struct {
	Codes []string `json:"codes"`
}
