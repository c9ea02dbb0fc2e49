package httpapi

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jaysurani18/smart-society/internal/metrics"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// Router wraps chi with the service-wide middleware.
type Router struct {
	mux    *chi.Mux
	policy *service.Policy
	logger *zap.Logger
}

// RouterConfig TrustedProxies may be empty, in which case forwarding headers
// are ignored and clients are keyed by socket address.
type RouterConfig struct {
	CORSOrigins    []string
	TrustedProxies []netip.Prefix
	Policy         *service.Policy
}

func NewRouter(cfg RouterConfig, logger *zap.Logger) *Router {
	mux := chi.NewRouter()
	mux.Use(RealIP(cfg.TrustedProxies))
	mux.Use(middleware.Recoverer)
	mux.Use(metrics.InstrumentHandler)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found - "+r.URL.Path)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return &Router{mux: mux, policy: cfg.Policy, logger: logger}
}

// allow gates a route on op before its handler touches the body.
func (r *Router) allow(op service.Operation) func(http.Handler) http.Handler {
	return RequireOp(r.policy, op, r.logger)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.mux.Get("/", h.Root)
	r.mux.Get("/healthz", h.Healthz)
	r.mux.Handle("/metrics", metrics.Handler())
}

// RegisterUploadRoutes serves stored complaint images. Directory listings are not exposed.
func (r *Router) RegisterUploadRoutes(dir string) {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	r.mux.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			writeMessage(w, http.StatusNotFound, "Not Found - "+req.URL.Path)
			return
		}
		files.ServeHTTP(w, req)
	})
}

// RegisterAuthRoutes public credential endpoints sit behind the rate limiter;
// logout needs a session.
func (r *Router) RegisterAuthRoutes(h *AuthHandler, limiter, gate func(http.Handler) http.Handler) {
	r.mux.Group(func(g chi.Router) {
		g.Use(limiter)
		g.Post("/api/users/login", h.Login)
		g.Post("/api/users/register", h.Register)
		g.Post("/api/users/setup-password", h.SetupPassword)
	})
	r.mux.Group(func(g chi.Router) {
		g.Use(gate)
		g.With(r.allow(service.OpLogout)).Post("/api/users/logout", h.Logout)
	})
}

func (r *Router) RegisterUserRoutes(h *UserHandler, gate func(http.Handler) http.Handler) {
	r.mux.Group(func(g chi.Router) {
		g.Use(gate)
		g.With(r.allow(service.OpViewProfile)).Get("/api/users/me", h.Me)
		g.With(r.allow(service.OpUpdateProfile)).Put("/api/users/profile", h.UpdateProfile)
		g.With(r.allow(service.OpInvite)).Post("/api/users/invite", h.Invite)
		g.With(r.allow(service.OpListAccounts)).Get("/api/users", h.List)
		g.With(r.allow(service.OpDeleteAccount)).Delete("/api/users/{id}", h.Delete)
		g.With(r.allow(service.OpChangeRole)).Put("/api/users/{id}/role", h.ChangeRole)
	})
}

func (r *Router) RegisterBillRoutes(h *BillHandler, gate func(http.Handler) http.Handler) {
	r.mux.Group(func(g chi.Router) {
		g.Use(gate)
		g.With(r.allow(service.OpListOwnBills)).Get("/api/bills/my-bills", h.MyBills)
		g.With(r.allow(service.OpListResidents)).Get("/api/bills/residents", h.Residents)
		g.With(r.allow(service.OpCreateBill)).Post("/api/bills/create", h.Create)
		g.With(r.allow(service.OpListAllBills)).Get("/api/bills/all", h.All)
		g.With(r.allow(service.OpListAllBills)).Get("/api/bills/export", h.Export)
		g.With(r.allow(service.OpMarkBillPaid)).Put("/api/bills/{id}/pay", h.MarkPaid)
	})
}

func (r *Router) RegisterComplaintRoutes(h *ComplaintHandler, gate func(http.Handler) http.Handler) {
	r.mux.Group(func(g chi.Router) {
		g.Use(gate)
		g.With(r.allow(service.OpFileComplaint)).Post("/api/complaints", h.File)
		g.With(r.allow(service.OpListComplaints)).Get("/api/complaints", h.List)
		g.With(r.allow(service.OpUpdateComplaintStatus)).Put("/api/complaints/{id}/status", h.UpdateStatus)
		g.With(r.allow(service.OpDeleteComplaint)).Delete("/api/complaints/{id}", h.Delete)
	})
}

func (r *Router) RegisterNoticeRoutes(h *NoticeHandler, gate func(http.Handler) http.Handler) {
	r.mux.Group(func(g chi.Router) {
		g.Use(gate)
		g.With(r.allow(service.OpListNotices)).Get("/api/notices", h.List)
		g.With(r.allow(service.OpCreateNotice)).Post("/api/notices", h.Create)
		g.With(r.allow(service.OpDeleteNotice)).Delete("/api/notices/{id}", h.Delete)
	})
}

func (r *Router) RegisterStatsRoutes(h *StatsHandler, gate func(http.Handler) http.Handler) {
	r.mux.Group(func(g chi.Router) {
		g.Use(gate)
		g.With(r.allow(service.OpViewDashboard)).Get("/api/stats", h.Dashboard)
	})
}
