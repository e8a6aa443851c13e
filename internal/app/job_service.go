package app

import (
	"context"
	"strings"

	"rcvj/internal/common"
	"rcvj/internal/domain/job"
)

type JobService struct {
	repo job.Repository
}

func NewJobService(repo job.Repository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) ListActive(ctx context.Context) ([]job.Posting, error) {
	return s.repo.ListActive(ctx)
}

// ListAll includes soft-deleted postings and backs the admin panel only.
func (s *JobService) ListAll(ctx context.Context) ([]job.Posting, error) {
	return s.repo.ListAll(ctx)
}

func (s *JobService) Get(ctx context.Context, id common.UUID) (*job.Posting, error) {
	return s.repo.GetActiveByID(ctx, id)
}

func (s *JobService) Create(ctx context.Context, actorID common.UUID, posting job.Posting) (*job.Posting, error) {
	fields := map[string]string{}
	requireField(fields, "title", posting.Title)
	requireField(fields, "company", posting.Company)
	requireField(fields, "location", posting.Location)
	requireField(fields, "description", posting.Description)
	requireField(fields, "requirements", posting.Requirements)
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid job", fields)
	}
	if posting.Type == "" {
		posting.Type = job.TypeFullTime
	}
	if err := validateJobType(posting.Type); err != nil {
		return nil, err
	}
	posting.CreatedBy = &actorID
	return s.repo.Create(ctx, posting)
}

// Update overwrites every field; callers must resupply the full posting.
// There is no ownership check: any authenticated actor may update any
// posting.
func (s *JobService) Update(ctx context.Context, id common.UUID, posting job.Posting) (*job.Posting, error) {
	fields := map[string]string{}
	requireField(fields, "title", posting.Title)
	requireField(fields, "company", posting.Company)
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid job", fields)
	}
	if posting.Type == "" {
		posting.Type = job.TypeFullTime
	}
	if err := validateJobType(posting.Type); err != nil {
		return nil, err
	}
	posting.ID = id
	return s.repo.Update(ctx, posting)
}

func (s *JobService) SoftDelete(ctx context.Context, id common.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func requireField(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = name + " is required"
	}
}

func validateJobType(t job.Type) error {
	switch t {
	case job.TypeFullTime, job.TypePartTime, job.TypeContract, job.TypeTemporary:
		return nil
	default:
		return common.NewValidationError("invalid job type", map[string]string{"job_type": "job_type must be full-time, part-time, contract, or temporary"})
	}
}
