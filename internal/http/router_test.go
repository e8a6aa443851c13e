package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"rcvj/internal/app"
	"rcvj/internal/common"
	"rcvj/internal/domain/application"
	"rcvj/internal/domain/job"
	"rcvj/internal/domain/user"
	"rcvj/internal/http/handlers"
	"rcvj/internal/http/metrics"
	httpmw "rcvj/internal/http/middleware"
	"rcvj/internal/security"
	"rcvj/internal/storage"
)

var (
	trackingIDPattern = regexp.MustCompile(`^APP\d+$`)
	resumePattern     = regexp.MustCompile(`^resume-\d+-\d+\.pdf$`)
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*user.User)}
}

func (r *memUserRepo) Create(ctx context.Context, u user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return nil, common.NewError(common.CodeConflict, "username already taken", nil)
	}
	u.ID = common.NewUUID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	stored := u
	r.users[u.Username] = &stored
	return &u, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[username]
	if u == nil {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	copy := *u
	return &copy, nil
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[common.UUID]*job.Posting
	seq  int
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[common.UUID]*job.Posting)}
}

func (r *memJobRepo) Create(ctx context.Context, posting job.Posting) (*job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	posting.ID = common.NewUUID()
	posting.Active = true
	posting.CreatedAt = time.Now().UTC().Add(time.Duration(r.seq) * time.Millisecond)
	posting.UpdatedAt = posting.CreatedAt
	stored := posting
	r.jobs[posting.ID] = &stored
	return &posting, nil
}

func (r *memJobRepo) Update(ctx context.Context, posting job.Posting) (*job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.jobs[posting.ID]
	if existing == nil {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	posting.Active = existing.Active
	posting.CreatedBy = existing.CreatedBy
	posting.CreatedAt = existing.CreatedAt
	posting.UpdatedAt = time.Now().UTC()
	stored := posting
	r.jobs[posting.ID] = &stored
	return &posting, nil
}

func (r *memJobRepo) GetActiveByID(ctx context.Context, id common.UUID) (*job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posting := r.jobs[id]
	if posting == nil || !posting.Active {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	copy := *posting
	return &copy, nil
}

func (r *memJobRepo) ListActive(ctx context.Context) ([]job.Posting, error) {
	return r.list(func(p *job.Posting) bool { return p.Active }), nil
}

func (r *memJobRepo) ListAll(ctx context.Context) ([]job.Posting, error) {
	return r.list(func(p *job.Posting) bool { return true }), nil
}

func (r *memJobRepo) list(keep func(*job.Posting) bool) []job.Posting {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []job.Posting
	for _, posting := range r.jobs {
		if keep(posting) {
			items = append(items, *posting)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

func (r *memJobRepo) SoftDelete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	posting := r.jobs[id]
	if posting == nil || !posting.Active {
		return common.NewError(common.CodeNotFound, "job not found", nil)
	}
	posting.Active = false
	posting.UpdatedAt = time.Now().UTC()
	return nil
}

type memApplicationRepo struct {
	mu      sync.Mutex
	records map[string]*application.Application
}

func newMemApplicationRepo() *memApplicationRepo {
	return &memApplicationRepo{records: make(map[string]*application.Application)}
}

func (r *memApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[app.TrackingID]; ok {
		return nil, common.NewError(common.CodeConflict, "tracking id already taken", nil)
	}
	app.ID = common.NewUUID()
	app.AppliedAt = time.Now().UTC()
	stored := app
	r.records[app.TrackingID] = &stored
	return &app, nil
}

func (r *memApplicationRepo) GetByTrackingID(ctx context.Context, trackingID string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.records[trackingID]
	if record == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	copy := *record
	return &copy, nil
}

func (r *memApplicationRepo) List(ctx context.Context, filter application.Filter) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, record := range r.records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.JobTitle != "" && record.JobTitle != filter.JobTitle {
			continue
		}
		items = append(items, *record)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AppliedAt.After(items[j].AppliedAt) })
	return items, nil
}

func (r *memApplicationRepo) UpdateStatus(ctx context.Context, trackingID string, status application.Status, notes string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.records[trackingID]
	if record == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	record.Status = status
	record.Notes = notes
	copy := *record
	return &copy, nil
}

func (r *memApplicationRepo) Delete(ctx context.Context, trackingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[trackingID]; !ok {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	delete(r.records, trackingID)
	return nil
}

type routerLogger struct{}

func (routerLogger) Info(msg string)  {}
func (routerLogger) Error(msg string) {}

type testEnv struct {
	handler      http.Handler
	users        *memUserRepo
	jobs         *memJobRepo
	applications *memApplicationRepo
	files        *storage.Local
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	jobs := newMemJobRepo()
	applications := newMemApplicationRepo()
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	hash, err := security.HashPassword("admin123")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := users.Create(context.Background(), user.User{
		Username:     "admin",
		Email:        "admin@rcvjcompany.com",
		PasswordHash: hash,
		Role:         user.RoleSuperAdmin,
	}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	jwtProvider := security.NewJWTProvider("test-secret")
	logger := routerLogger{}

	authService := app.NewAuthService(users, jwtProvider, logger, 24*time.Hour)
	jobService := app.NewJobService(jobs)
	applicationService := app.NewApplicationService(applications, files, logger)

	limiter := httpmw.NewRateLimiter()
	collector := metrics.NewCollector()

	handler := NewRouter(RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService, limiter),
		JobHandler:         handlers.NewJobHandler(jobService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter),
		UploadsHandler:     handlers.NewUploadsHandler(files),
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider, authService),
		Metrics:            collector,
		RequestTimeout:     5 * time.Second,
	})

	return &testEnv{handler: handler, users: users, jobs: jobs, applications: applications, files: files}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func multipartApply(t *testing.T, fields map[string]string, resumeName string, resumeSize int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	if resumeName != "" {
		part, err := writer.CreateFormFile("resume", resumeName)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if _, err := part.Write(bytes.Repeat([]byte("a"), resumeSize)); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/applications/apply", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func login(t *testing.T, env *testEnv) string {
	t.Helper()
	body := strings.NewReader(`{"username":"admin","password":"admin123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	return resp.Token
}

func TestRouterApplyAndReview(t *testing.T) {
	env := newTestEnv(t)

	fields := map[string]string{
		"name":        "Maria Santos",
		"email":       "maria@example.com",
		"phone":       "09171234567",
		"coverLetter": "I would like to apply.",
		"jobTitle":    "Office Clerk",
		"jobCompany":  "RCVJ, Inc.",
	}
	rec := env.do(t, multipartApply(t, fields, "my resume.pdf", 2<<20))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var applyResp struct {
		Success       bool   `json:"success"`
		ApplicationID string `json:"applicationId"`
	}
	decodeBody(t, rec, &applyResp)
	if !applyResp.Success {
		t.Fatal("expected success")
	}
	if !trackingIDPattern.MatchString(applyResp.ApplicationID) {
		t.Fatalf("unexpected application id %q", applyResp.ApplicationID)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/applications", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []application.Application
	decodeBody(t, rec, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected 1 application, got %d", len(listed))
	}
	if listed[0].TrackingID != applyResp.ApplicationID {
		t.Fatalf("expected tracking id %q, got %q", applyResp.ApplicationID, listed[0].TrackingID)
	}
	if listed[0].Status != application.StatusPending {
		t.Fatalf("expected pending, got %q", listed[0].Status)
	}
	if !resumePattern.MatchString(listed[0].ResumeFilename) {
		t.Fatalf("unexpected resume filename %q", listed[0].ResumeFilename)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/applications/"+applyResp.ApplicationID+"/resume", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 2<<20 {
		t.Fatalf("expected %d resume bytes, got %d", 2<<20, rec.Body.Len())
	}

	body := strings.NewReader(`{"status":"reviewed","notes":"promising"}`)
	req := httptest.NewRequest(http.MethodPut, "/applications/"+applyResp.ApplicationID, body)
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated application.Application
	decodeBody(t, rec, &updated)
	if updated.Status != application.StatusReviewed || updated.Notes != "promising" {
		t.Fatalf("unexpected record %+v", updated)
	}

	resumeFilename := listed[0].ResumeFilename
	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/applications/"+applyResp.ApplicationID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := env.files.Open(resumeFilename); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected resume file to be removed, got %v", err)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/applications", nil))
	decodeBody(t, rec, &listed)
	if len(listed) != 0 {
		t.Fatalf("expected empty list, got %d", len(listed))
	}
}

func TestRouterApply_Invalid(t *testing.T) {
	env := newTestEnv(t)

	// Missing resume.
	rec := env.do(t, multipartApply(t, map[string]string{"name": "Maria", "email": "maria@example.com", "phone": "09171234567"}, "", 0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// Disallowed extension.
	rec = env.do(t, multipartApply(t, map[string]string{"name": "Maria", "email": "maria@example.com", "phone": "09171234567"}, "resume.exe", 128))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// Oversized resume.
	rec = env.do(t, multipartApply(t, map[string]string{"name": "Maria", "email": "maria@example.com", "phone": "09171234567"}, "resume.pdf", 5<<20+1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// Nothing persisted.
	items, err := env.applications.List(context.Background(), application.Filter{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no applications, got %d", len(items))
	}
}

func TestRouterDeleteUnknownApplication(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, multipartApply(t, map[string]string{"name": "Maria", "email": "maria@example.com", "phone": "09171234567"}, "resume.pdf", 1024))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/applications/APP0000000000000", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	items, err := env.applications.List(context.Background(), application.Filter{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the existing application to survive, got %d", len(items))
	}
}

func TestRouterJobAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	jobBody := `{"title":"Office Clerk","company":"RCVJ, Inc.","location":"Quezon City","description":"Clerical work","requirements":"None"}`

	// Writes without a token are rejected.
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(jobBody))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	token := login(t, env)

	req = httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(jobBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created job.Posting
	decodeBody(t, rec, &created)
	if created.ID == "" || !created.Active || created.Type != job.TypeFullTime {
		t.Fatalf("unexpected posting %+v", created)
	}
	if created.CreatedBy == nil {
		t.Fatal("expected created_by to be set")
	}

	// Public listing shows the active posting.
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	var listed []job.Posting
	decodeBody(t, rec, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected listing %+v", listed)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/jobs/"+string(created.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Soft delete hides the posting from public queries only.
	req = httptest.NewRequest(http.MethodDelete, "/jobs/"+string(created.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	decodeBody(t, rec, &listed)
	if len(listed) != 0 {
		t.Fatalf("expected empty public listing, got %+v", listed)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/jobs/"+string(created.ID), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/jobs/all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &listed)
	if len(listed) != 1 || listed[0].Active {
		t.Fatalf("expected one inactive posting in the admin listing, got %+v", listed)
	}

	// /jobs/all requires a token.
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/jobs/all", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterAuthMe(t *testing.T) {
	env := newTestEnv(t)
	token := login(t, env)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User *user.User `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.User == nil || resp.User.Username != "admin" {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password material leaked: %s", rec.Body.String())
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouterUploads(t *testing.T) {
	env := newTestEnv(t)

	if err := env.files.Save("resume-1-1.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/uploads/resume-1-1.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Fatalf("unexpected body %q", data)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/uploads/missing.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// A request must have passed through the metrics middleware before the
	// counter appears in the exposition.
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in exposition: %s", rec.Body.String())
	}
}

func TestRouterLoginRateLimit(t *testing.T) {
	env := newTestEnv(t)

	var last int
	for i := 0; i < 11; i++ {
		body := strings.NewReader(fmt.Sprintf(`{"username":"admin","password":"wrong-%d"}`, i))
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		last = env.do(t, req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding the window, got %d", last)
	}
}
