package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"rcvj/internal/common"
	"rcvj/internal/domain/application"
)

const maxResumeBytes = 5 << 20

// FileStore is the durable local storage the intake component writes
// resumes to. Save must not overwrite an existing name.
type FileStore interface {
	Save(name string, r io.Reader) error
	Open(name string) (io.ReadSeekCloser, error)
	Remove(name string) error
}

type ApplicationService struct {
	repo   application.Repository
	files  FileStore
	logger Logger
}

func NewApplicationService(repo application.Repository, files FileStore, logger Logger) *ApplicationService {
	return &ApplicationService{repo: repo, files: files, logger: logger}
}

type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type SubmitInput struct {
	Name        string
	Email       string
	Phone       string
	CoverLetter string
	JobID       string
	JobTitle    string
	JobCompany  string
	Resume      *ResumeUpload
}

// Submit validates the submission, writes the resume to storage, then
// inserts the row. The file write strictly precedes the insert; if the
// insert fails the stored file is removed before the error is returned.
func (s *ApplicationService) Submit(ctx context.Context, input SubmitInput) (*application.Application, error) {
	fields := map[string]string{}
	requireField(fields, "name", input.Name)
	requireField(fields, "email", input.Email)
	requireField(fields, "phone", input.Phone)
	if input.Resume == nil {
		fields["resume"] = "resume is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("name, email, phone, and resume are required", fields)
	}
	ext := strings.ToLower(filepath.Ext(input.Resume.Filename))
	if ext != ".pdf" && ext != ".doc" && ext != ".docx" {
		return nil, common.NewValidationError("only PDF, DOC, and DOCX files are allowed", map[string]string{"resume": "unsupported file type"})
	}
	if input.Resume.Size > maxResumeBytes {
		return nil, common.NewValidationError("resume must not exceed 5MB", map[string]string{"resume": "file too large"})
	}

	var jobID *common.UUID
	if strings.TrimSpace(input.JobID) != "" {
		parsed, err := common.ParseUUID(input.JobID)
		if err != nil {
			return nil, common.NewValidationError("invalid request", map[string]string{"jobId": "invalid job id"})
		}
		jobID = &parsed
	}

	filename := fmt.Sprintf("resume-%d-%s%s", time.Now().UnixMilli(), randomDigits(9), ext)
	if err := s.files.Save(filename, io.LimitReader(input.Resume.Content, maxResumeBytes)); err != nil {
		return nil, common.NewError(common.CodeStorage, "failed to store resume", err)
	}

	app := application.Application{
		TrackingID:     newTrackingID(),
		JobID:          jobID,
		JobTitle:       input.JobTitle,
		JobCompany:     input.JobCompany,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		CoverLetter:    input.CoverLetter,
		ResumeFilename: filename,
		Status:         application.StatusPending,
	}
	created, err := s.repo.Create(ctx, app)
	if err != nil {
		// Compensating action: the row never landed, so the file must go.
		if removeErr := s.files.Remove(filename); removeErr != nil {
			s.logError("failed to remove orphaned resume " + filename + ": " + removeErr.Error())
		}
		return nil, common.NewError(common.CodeStorage, "failed to save application", err)
	}
	s.logInfo("application " + created.TrackingID + " submitted")
	return created, nil
}

func (s *ApplicationService) List(ctx context.Context, filter application.Filter) ([]application.Application, error) {
	if filter.Status != "" {
		if err := validateApplicationStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus overwrites status and notes unconditionally; any enum value
// is reachable from any other.
func (s *ApplicationService) UpdateStatus(ctx context.Context, trackingID string, status application.Status, notes string) (*application.Application, error) {
	status = application.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if status == "" {
		return nil, common.NewValidationError("status is required", map[string]string{"status": "status is required"})
	}
	if err := validateApplicationStatus(status); err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, trackingID, status, notes)
}

// Delete hard-deletes the row and removes the stored resume. A failed file
// removal is logged but not surfaced; the record is already gone.
func (s *ApplicationService) Delete(ctx context.Context, trackingID string) error {
	app, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, trackingID); err != nil {
		return err
	}
	if err := s.files.Remove(app.ResumeFilename); err != nil {
		s.logError("failed to remove resume " + app.ResumeFilename + ": " + err.Error())
	}
	return nil
}

// Resume resolves the record and opens its stored file for streaming. The
// caller closes the reader.
func (s *ApplicationService) Resume(ctx context.Context, trackingID string) (*application.Application, io.ReadSeekCloser, error) {
	app, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.files.Open(app.ResumeFilename)
	if err != nil {
		return nil, nil, common.NewError(common.CodeNotFound, "resume file not found", err)
	}
	return app, f, nil
}

func validateApplicationStatus(status application.Status) error {
	switch status {
	case application.StatusPending, application.StatusReviewed, application.StatusAccepted, application.StatusRejected:
		return nil
	default:
		return common.NewValidationError("invalid status", map[string]string{"status": "status must be pending, reviewed, accepted, or rejected"})
	}
}

// newTrackingID keeps the original APP<millis> shape but appends random
// digits so concurrent submissions within the same millisecond do not
// collide.
func newTrackingID() string {
	return fmt.Sprintf("APP%d%s", time.Now().UnixMilli(), randomDigits(6))
}

func randomDigits(n int) string {
	max := big.NewInt(10)
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

func (s *ApplicationService) logInfo(msg string) {
	if s.logger != nil {
		s.logger.Info(msg)
	}
}

func (s *ApplicationService) logError(msg string) {
	if s.logger != nil {
		s.logger.Error(msg)
	}
}
