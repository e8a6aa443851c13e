package job

import (
	"time"

	"rcvj/internal/common"
)

type Type string

const (
	TypeFullTime  Type = "full-time"
	TypePartTime  Type = "part-time"
	TypeContract  Type = "contract"
	TypeTemporary Type = "temporary"
)

// Posting is a job posting. Soft-deleted rows keep Active = false and never
// show up on public reads.
type Posting struct {
	ID               common.UUID  `json:"id"`
	Title            string       `json:"title"`
	Company          string       `json:"company"`
	Location         string       `json:"location"`
	SalaryRange      string       `json:"salary_range,omitempty"`
	Type             Type         `json:"job_type"`
	Description      string       `json:"description"`
	Requirements     string       `json:"requirements"`
	Responsibilities string       `json:"responsibilities,omitempty"`
	Active           bool         `json:"is_active"`
	CreatedBy        *common.UUID `json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
