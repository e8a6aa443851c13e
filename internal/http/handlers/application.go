package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"rcvj/internal/app"
	"rcvj/internal/common"
	"rcvj/internal/domain/application"
	"rcvj/internal/http/middleware"
	"rcvj/internal/http/response"
)

// maxMultipartMemory bounds how much of the upload is buffered in memory;
// the rest spills to temp files.
const maxMultipartMemory = 1 << 20

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter}
}

type applyResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"applicationId"`
	Message       string `json:"message"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		key := "apply:" + middleware.ClientIP(r)
		if !h.limiter.Allow(key, 5, applyWindow) {
			response.Error(w, errRateLimited("apply"))
			return
		}
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if isBodyTooLarge(err) {
			response.Error(w, common.NewValidationError("resume must not exceed 5MB", map[string]string{"resume": "file too large"}))
			return
		}
		response.Error(w, common.NewValidationError("invalid multipart body", nil))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	input := app.SubmitInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		CoverLetter: r.FormValue("coverLetter"),
		JobID:       r.FormValue("jobId"),
		JobTitle:    r.FormValue("jobTitle"),
		JobCompany:  r.FormValue("jobCompany"),
	}
	file, header, err := r.FormFile("resume")
	if err == nil {
		defer file.Close()
		input.Resume = &app.ResumeUpload{
			Filename: filepath.Base(header.Filename),
			Size:     header.Size,
			Content:  file,
		}
	}

	created, err := h.applications.Submit(r.Context(), input)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, applyResponse{
		Success:       true,
		ApplicationID: created.TrackingID,
		Message:       "Application submitted successfully!",
	})
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := application.Filter{
		JobTitle: r.URL.Query().Get("job"),
		Status:   application.Status(r.URL.Query().Get("status")),
		Search:   r.URL.Query().Get("search"),
	}
	items, err := h.applications.List(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []application.Application{}
	}
	response.JSON(w, http.StatusOK, items)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	trackingID, err := pathSegment(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.UpdateStatus(r.Context(), trackingID, application.Status(req.Status), req.Notes)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	trackingID, err := pathSegment(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.applications.Delete(r.Context(), trackingID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Application deleted successfully"})
}

func (h *ApplicationHandler) Resume(w http.ResponseWriter, r *http.Request) {
	trackingID, err := pathSegment(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	record, f, err := h.applications.Resume(r.Context(), trackingID)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Disposition", `attachment; filename="`+record.ResumeFilename+`"`)
	http.ServeContent(w, r, record.ResumeFilename, record.AppliedAt, f)
}
