package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rcvj/internal/common"
	"rcvj/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, title, company, location, salary_range, job_type, description, requirements, responsibilities, is_active, created_by, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, posting job.Posting) (*job.Posting, error) {
	posting.ID = common.NewUUID()
	now := time.Now().UTC()
	posting.CreatedAt = now
	posting.UpdatedAt = now
	posting.Active = true
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (id, title, company, location, salary_range, job_type, description, requirements, responsibilities, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		posting.ID, posting.Title, posting.Company, posting.Location, posting.SalaryRange, posting.Type, posting.Description, posting.Requirements, posting.Responsibilities, posting.Active, posting.CreatedBy, posting.CreatedAt, posting.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	return &posting, nil
}

func (r *JobRepository) Update(ctx context.Context, posting job.Posting) (*job.Posting, error) {
	posting.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET title = $1, company = $2, location = $3, salary_range = $4, job_type = $5, description = $6, requirements = $7, responsibilities = $8, updated_at = $9
		WHERE id = $10`,
		posting.Title, posting.Company, posting.Location, posting.SalaryRange, posting.Type, posting.Description, posting.Requirements, posting.Responsibilities, posting.UpdatedAt, posting.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update job", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return r.getByID(ctx, posting.ID)
}

func (r *JobRepository) GetActiveByID(ctx context.Context, id common.UUID) (*job.Posting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND is_active = TRUE`, id)
	return scanJob(row)
}

func (r *JobRepository) getByID(ctx context.Context, id common.UUID) (*job.Posting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *JobRepository) ListActive(ctx context.Context) ([]job.Posting, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE is_active = TRUE ORDER BY created_at DESC`)
}

func (r *JobRepository) ListAll(ctx context.Context) ([]job.Posting, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
}

func (r *JobRepository) SoftDelete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete job", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return nil
}

func (r *JobRepository) list(ctx context.Context, query string) ([]job.Posting, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	var items []job.Posting
	for rows.Next() {
		var p job.Posting
		var createdBy sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.SalaryRange, &p.Type, &p.Description, &p.Requirements, &p.Responsibilities, &p.Active, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan job", err)
		}
		if createdBy.Valid {
			id := common.UUID(createdBy.String)
			p.CreatedBy = &id
		}
		items = append(items, p)
	}
	return items, nil
}

func scanJob(row *sql.Row) (*job.Posting, error) {
	var p job.Posting
	var createdBy sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.SalaryRange, &p.Type, &p.Description, &p.Requirements, &p.Responsibilities, &p.Active, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	if createdBy.Valid {
		id := common.UUID(createdBy.String)
		p.CreatedBy = &id
	}
	return &p, nil
}
