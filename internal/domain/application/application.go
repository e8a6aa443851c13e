package application

import (
	"time"

	"rcvj/internal/common"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Application is a submitted job application. TrackingID is the public
// handle returned to the applicant; the row ID stays internal. JobTitle and
// JobCompany are denormalized at submission time so the record survives the
// posting being removed.
type Application struct {
	ID             common.UUID  `json:"id"`
	TrackingID     string       `json:"application_id"`
	JobID          *common.UUID `json:"job_id,omitempty"`
	JobTitle       string       `json:"job_title"`
	JobCompany     string       `json:"job_company"`
	Name           string       `json:"applicant_name"`
	Email          string       `json:"applicant_email"`
	Phone          string       `json:"applicant_phone"`
	CoverLetter    string       `json:"cover_letter,omitempty"`
	ResumeFilename string       `json:"resume_filename"`
	Status         Status       `json:"status"`
	Notes          string       `json:"notes,omitempty"`
	AppliedAt      time.Time    `json:"applied_at"`
}

// Filter narrows List results. Zero-value fields are ignored. Search matches
// case-insensitive substrings of applicant name, email, and tracking id.
type Filter struct {
	JobTitle string
	Status   Status
	Search   string
}
