package http

import (
	"net/http"
	"strings"
	"time"

	"placementhub/internal/domain/admin"
	"placementhub/internal/http/handlers"
	"placementhub/internal/http/metrics"
	httpmw "placementhub/internal/http/middleware"
)

type RouterDependencies struct {
	ExperienceHandler *handlers.ExperienceHandler
	UpdateHandler     *handlers.UpdateHandler
	AdminHandler      *handlers.AdminHandler
	MetricsHandler    *handlers.MetricsHandler
	AuthMiddleware    *httpmw.AuthMiddleware
	AdminDirectory    admin.Directory
	Metrics           *metrics.Collector
	RequestTimeout    time.Duration
}

type Router struct {
	deps RouterDependencies
}

const maxBodyBytes = 1 << 20

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
		case req.Method == http.MethodGet && path == "/experiences":
			r.deps.ExperienceHandler.ListPublic(w, req)
			return
		case req.Method == http.MethodGet && path == "/updates":
			r.deps.UpdateHandler.ListActive(w, req)
			return
		}

		if strings.HasPrefix(path, "/experiences") || strings.HasPrefix(path, "/updates") || strings.HasPrefix(path, "/admin") {
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
	adminOnly := httpmw.RequireAdmin(r.deps.AdminDirectory)

	switch {
	case req.Method == http.MethodGet && path == "/experiences/mine":
		r.deps.ExperienceHandler.ListMine(w, req)
		return
	case req.Method == http.MethodPost && path == "/experiences":
		r.deps.ExperienceHandler.Submit(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/experiences/") && strings.HasSuffix(path, "/approve"):
		adminOnly(http.HandlerFunc(r.deps.ExperienceHandler.Approve)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/experiences/") && strings.HasSuffix(path, "/reject"):
		adminOnly(http.HandlerFunc(r.deps.ExperienceHandler.Reject)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/experiences/"):
		r.deps.ExperienceHandler.Edit(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/experiences/"):
		adminOnly(http.HandlerFunc(r.deps.ExperienceHandler.Delete)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/admin/experiences":
		adminOnly(http.HandlerFunc(r.deps.ExperienceHandler.ListAll)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/admin/updates":
		adminOnly(http.HandlerFunc(r.deps.UpdateHandler.ListAll)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/updates/extract":
		adminOnly(http.HandlerFunc(r.deps.UpdateHandler.Extract)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/updates":
		adminOnly(http.HandlerFunc(r.deps.UpdateHandler.Create)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/updates/") && strings.HasSuffix(path, "/active"):
		adminOnly(http.HandlerFunc(r.deps.UpdateHandler.ToggleActive)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/updates/") && strings.HasSuffix(path, "/permanent"):
		adminOnly(http.HandlerFunc(r.deps.UpdateHandler.PermanentDelete)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/updates/"):
		adminOnly(http.HandlerFunc(r.deps.UpdateHandler.SoftDelete)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/admin/admins":
		adminOnly(http.HandlerFunc(r.deps.AdminHandler.List)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/admin/admins":
		adminOnly(http.HandlerFunc(r.deps.AdminHandler.Add)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodDelete && path == "/admin/admins":
		adminOnly(http.HandlerFunc(r.deps.AdminHandler.Remove)).ServeHTTP(w, req)
		return
	}

	http.NotFound(w, req)
}
