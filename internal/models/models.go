package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerateRequest is the body of the document and name endpoints.
type GenerateRequest struct {
	Persona string `json:"persona"`
}

// DocumentResponse carries a generated persona document.
//
// Document holds the JSON object when Status is valid or degraded. RawText
// holds the model output when it never parsed.
type DocumentResponse struct {
	Seed        string          `json:"seed"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	FailurePath string          `json:"failure_path,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
	RawText     string          `json:"raw_text,omitempty"`
}

// NameResponse carries an issued persona name.
type NameResponse struct {
	FullName      string `json:"full_name"`
	Title         string `json:"title"`
	SourcePersona string `json:"source_persona"`
	Source        string `json:"source"`
	Attempts      int    `json:"attempts"`
}

// DocumentRecord is a stored document generation.
type DocumentRecord struct {
	ID          uuid.UUID `json:"id"`
	Seed        string    `json:"seed"`
	Status      string    `json:"status"`
	Attempts    int       `json:"attempts"`
	FailurePath string    `json:"failure_path,omitempty"`
	Document    string    `json:"document"`
	CreatedAt   time.Time `json:"created_at"`
}

// NameRecord is a stored name generation.
type NameRecord struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	Title         string    `json:"title"`
	SourcePersona string    `json:"source_persona"`
	Source        string    `json:"source"`
	Attempts      int       `json:"attempts"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryResponse lists recent generations, newest first.
type HistoryResponse struct {
	Documents []DocumentRecord `json:"documents"`
	Names     []NameRecord     `json:"names"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services,omitempty"`
}
