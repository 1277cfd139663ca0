package models

import (
	"time"
)

// Session holds the state for one reviewer: the extracted text of the
// current document. Uploading a new document replaces it; ending the session
// discards it.
type Session struct {
	ID                 string     `json:"id" db:"id"`
	Filename           string     `json:"filename,omitempty" db:"filename"`
	ContentType        string     `json:"content_type,omitempty" db:"content_type"`
	FileSize           int64      `json:"file_size,omitempty" db:"file_size"`
	ContentHash        string     `json:"content_hash,omitempty" db:"content_hash"`
	StorageKey         string     `json:"-" db:"storage_key"`
	DocumentText       string     `json:"document_text,omitempty" db:"document_text"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	DocumentUploadedAt *time.Time `json:"document_uploaded_at,omitempty" db:"document_uploaded_at"`
}

func (s *Session) HasDocument() bool {
	return s.DocumentUploadedAt != nil && s.DocumentText != ""
}

type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

type UploadResponse struct {
	SessionID   string    `json:"session_id"`
	Filename    string    `json:"filename"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	TextLength  int       `json:"text_length"`
	Reused      bool      `json:"reused"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Message     string    `json:"message"`
}

// AnalysisRequest selects the criteria for one run. A nil Checks means the
// catalog defaults.
type AnalysisRequest struct {
	Checks      []string `json:"checks"`
	CustomCheck string   `json:"custom_check"`
	Mode        string   `json:"mode"`
}

type AnalysisSummary struct {
	SessionID   string   `json:"session_id"`
	Mode        string   `json:"mode"`
	Invocations int      `json:"invocations"`
	Failed      []string `json:"failed,omitempty"`
}
