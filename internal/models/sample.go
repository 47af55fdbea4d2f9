package models

import "time"

type SampleStatus string

const (
	SampleReceived   SampleStatus = "received"
	SampleInTesting  SampleStatus = "in_testing"
	SampleCompleted  SampleStatus = "completed"
	SampleWithdrawn  SampleStatus = "withdrawn"
)

type Sample struct {
	ID             string       `json:"id"`
	JobID          string       `json:"job_id"`
	ClientID       string       `json:"client_id"`
	AssignedUserID string       `json:"assigned_user_id,omitempty"`
	Description    string       `json:"description"`
	Matrix         string       `json:"matrix,omitempty"`
	Status         SampleStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// SampleTest is a single test assignment on a sample. Test packs insert many
// of these in one transaction sharing one audit tx id.
type SampleTest struct {
	ID        string    `json:"id"`
	SampleID  string    `json:"sample_id"`
	Method    string    `json:"method"`
	Parameter string    `json:"parameter"`
	Unit      string    `json:"unit,omitempty"`
	Result    string    `json:"result,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
