package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rcvj/internal/common"
	"rcvj/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, application_id, job_id, job_title, job_company, applicant_name, applicant_email, applicant_phone, cover_letter, resume_filename, status, notes, applied_at`

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	app.AppliedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, application_id, job_id, job_title, job_company, applicant_name, applicant_email, applicant_phone, cover_letter, resume_filename, status, notes, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		app.ID, app.TrackingID, app.JobID, app.JobTitle, app.JobCompany, app.Name, app.Email, app.Phone, app.CoverLetter, app.ResumeFilename, app.Status, app.Notes, app.AppliedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "tracking id already taken", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByTrackingID(ctx context.Context, trackingID string) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE application_id = $1`, trackingID)
	return scanApplication(row)
}

func (r *ApplicationRepository) List(ctx context.Context, filter application.Filter) ([]application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications`
	var conds []string
	var args []any
	if filter.JobTitle != "" {
		args = append(args, filter.JobTitle)
		conds = append(conds, fmt.Sprintf("job_title = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(applicant_name ILIKE $%d OR applicant_email ILIKE $%d OR application_id ILIKE $%d)", n, n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY applied_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		var app application.Application
		var jobID sql.NullString
		if err := rows.Scan(&app.ID, &app.TrackingID, &jobID, &app.JobTitle, &app.JobCompany, &app.Name, &app.Email, &app.Phone, &app.CoverLetter, &app.ResumeFilename, &app.Status, &app.Notes, &app.AppliedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		if jobID.Valid {
			id := common.UUID(jobID.String)
			app.JobID = &id
		}
		items = append(items, app)
	}
	return items, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, trackingID string, status application.Status, notes string) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, notes = $2 WHERE application_id = $3`, status, notes, trackingID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return r.GetByTrackingID(ctx, trackingID)
}

func (r *ApplicationRepository) Delete(ctx context.Context, trackingID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE application_id = $1`, trackingID)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return nil
}

func scanApplication(row *sql.Row) (*application.Application, error) {
	var app application.Application
	var jobID sql.NullString
	if err := row.Scan(&app.ID, &app.TrackingID, &jobID, &app.JobTitle, &app.JobCompany, &app.Name, &app.Email, &app.Phone, &app.CoverLetter, &app.ResumeFilename, &app.Status, &app.Notes, &app.AppliedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	if jobID.Valid {
		id := common.UUID(jobID.String)
		app.JobID = &id
	}
	return &app, nil
}
