package registry

import "github.com/registradesk/registra/internal/record"

// DuplicateCheckRequest carries the identity fields of a draft to the
// duplicate-lookup endpoint. ExcludeID is set on edit sessions so a record
// never flags itself as its own duplicate.
type DuplicateCheckRequest struct {
	Type      record.Type       `json:"type"`
	Identity  map[string]string `json:"identity"`
	ExcludeID string            `json:"exclude_id,omitempty"`
}

// SimilarRecord is one candidate match returned by the duplicate lookup,
// carrying enough identity fields to render a comparison row.
type SimilarRecord struct {
	ID         string            `json:"id"`
	RegistryNo string            `json:"registry_no"`
	Identity   map[string]string `json:"identity"`
}

// DuplicateCheckResponse is the duplicate-lookup result. IsDuplicate means
// an exact identity match exists; SimilarRecords lists partial overlaps
// (and the exact match itself, when present).
type DuplicateCheckResponse struct {
	Success        bool            `json:"success"`
	IsDuplicate    bool            `json:"is_duplicate"`
	SimilarRecords []SimilarRecord `json:"similar_records"`
}

// SaveRequest is the create/update payload: the full draft as a flat
// field map.
type SaveRequest struct {
	Type   record.Type   `json:"type"`
	Fields record.Fields `json:"fields"`
}

// ListResponse wraps the record list endpoint result.
type ListResponse struct {
	Records []record.Record `json:"records"`
}

// errorBody is the wire shape of a failed create/update response: either
// field-level errors or a generic message.
type errorBody struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}
