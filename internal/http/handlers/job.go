package handlers

import (
	"net/http"

	"rcvj/internal/app"
	"rcvj/internal/domain/job"
	"rcvj/internal/http/middleware"
	"rcvj/internal/http/response"
)

type JobHandler struct {
	jobs *app.JobService
}

func NewJobHandler(jobs *app.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type jobRequest struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	Location         string `json:"location"`
	SalaryRange      string `json:"salary_range"`
	Type             string `json:"job_type"`
	Description      string `json:"description"`
	Requirements     string `json:"requirements"`
	Responsibilities string `json:"responsibilities"`
}

func (req jobRequest) posting() job.Posting {
	return job.Posting{
		Title:            req.Title,
		Company:          req.Company,
		Location:         req.Location,
		SalaryRange:      req.SalaryRange,
		Type:             job.Type(req.Type),
		Description:      req.Description,
		Requirements:     req.Requirements,
		Responsibilities: req.Responsibilities,
	}
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.jobs.ListActive(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []job.Posting{}
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *JobHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.jobs.ListAll(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []job.Posting{}
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.jobs.Create(r.Context(), actor.ID, req.posting())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFromContext(r.Context()); !ok {
		response.Error(w, errUnauthorized())
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.jobs.Update(r.Context(), jobID, req.posting())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFromContext(r.Context()); !ok {
		response.Error(w, errUnauthorized())
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.jobs.SoftDelete(r.Context(), jobID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}
