package models

import "time"

type ReportStatus string

const (
	ReportDraft    ReportStatus = "DRAFT"
	ReportFinal    ReportStatus = "FINAL"
	ReportReleased ReportStatus = "RELEASED"
)

// Report is a certificate of analysis for a sample. Snapshot/versioning of the
// certificate body lives outside this service; here we govern the workflow
// status and who may move it.
type Report struct {
	ID        string       `json:"id"`
	SampleID  string       `json:"sample_id"`
	ClientID  string       `json:"client_id"`
	Title     string       `json:"title"`
	Status    ReportStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
