package http

import (
	"net/http"
	"strings"
	"time"

	"rcvj/internal/http/handlers"
	"rcvj/internal/http/metrics"
	httpmw "rcvj/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	JobHandler         *handlers.JobHandler
	ApplicationHandler *handlers.ApplicationHandler
	UploadsHandler     *handlers.UploadsHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	RequestTimeout     time.Duration
}

type Router struct {
	deps RouterDependencies
}

// Large enough for the multipart intake body: a 5 MiB resume plus form
// fields and multipart framing.
const maxBodyBytes = 6 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(r.deps.Metrics), httpmw.Timeout(r.deps.RequestTimeout))
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/login":
			r.deps.AuthHandler.Login(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/register":
			r.deps.AuthHandler.Register(w, req)
			return
		case req.Method == http.MethodGet && path == "/jobs":
			r.deps.JobHandler.List(w, req)
			return
		case req.Method == http.MethodGet && path == "/jobs/all":
			// admin query, falls through to the protected section
		case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/"):
			r.deps.JobHandler.Get(w, req)
			return
		case req.Method == http.MethodPost && path == "/applications/apply":
			r.deps.ApplicationHandler.Apply(w, req)
			return
		case req.Method == http.MethodGet && path == "/applications":
			r.deps.ApplicationHandler.List(w, req)
			return
		case req.Method == http.MethodGet && strings.HasPrefix(path, "/applications/") && strings.HasSuffix(path, "/resume"):
			r.deps.ApplicationHandler.Resume(w, req)
			return
		case req.Method == http.MethodPut && strings.HasPrefix(path, "/applications/"):
			r.deps.ApplicationHandler.UpdateStatus(w, req)
			return
		case req.Method == http.MethodDelete && strings.HasPrefix(path, "/applications/"):
			r.deps.ApplicationHandler.Delete(w, req)
			return
		case req.Method == http.MethodGet && strings.HasPrefix(path, "/uploads/"):
			r.deps.UploadsHandler.Get(w, req)
			return
		}

		if strings.HasPrefix(path, "/jobs") || path == "/auth/me" {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path

	switch {
	case req.Method == http.MethodGet && path == "/auth/me":
		r.deps.AuthHandler.Me(w, req)
		return
	case req.Method == http.MethodGet && path == "/jobs/all":
		r.deps.JobHandler.ListAll(w, req)
		return
	case req.Method == http.MethodPost && path == "/jobs":
		r.deps.JobHandler.Create(w, req)
		return
	case req.Method == http.MethodPut && strings.HasPrefix(path, "/jobs/"):
		r.deps.JobHandler.Update(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/jobs/"):
		r.deps.JobHandler.Delete(w, req)
		return
	}

	http.NotFound(w, req)
}
