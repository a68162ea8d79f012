package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"inspectroom/internal/auth"
	"inspectroom/internal/httpserver/handlers"
	"inspectroom/internal/inspection"
	"inspectroom/internal/session"
	"inspectroom/internal/store"
	"inspectroom/internal/tasks"
)

type Deps struct {
	DB              *gorm.DB
	Users           *store.UserStore
	Reports         *store.ReportStore
	Audit           *store.AuditStore
	Tokens          *auth.Tokens
	Sessions        *session.Manager
	Tasks           *tasks.List
	RequiredSigners []inspection.Role
	AllowedOrigins  []string
	Logger          *zap.SugaredLogger
}

func NewRouter(d Deps) http.Handler {
	lg := d.Logger
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/v1/auth/login", handlers.Login(d.DB, d.Users, d.Tokens, d.Audit, lg))
	r.Post("/v1/inspections/{id}/join", handlers.Join(d.DB, d.Reports, d.Tokens, d.Audit, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(d.DB, d.Tokens))
		protected.Get("/v1/me", handlers.Me(d.Users, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(d.DB, d.Audit, lg))
		protected.Get("/v1/gdt/symbols", handlers.GDTSymbols())
		protected.Get("/v1/logs", handlers.MyLogs(d.Audit, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(inspection.RoleAdmin))
			admin.Get("/v1/admin/users", handlers.ListUsers(d.Users, lg))
			admin.Post("/v1/admin/users", handlers.CreateUser(d.Users, d.Audit, lg))
			admin.Get("/v1/inspections", handlers.ListInspections(d.Reports, lg))
			admin.Post("/v1/inspections", handlers.ScheduleInspection(d.Users, d.Reports, d.Audit, lg))
		})

		protected.Group(func(insp chi.Router) {
			insp.Use(auth.RequireRole(inspection.RoleInspector))
			insp.Get("/v1/inspections/mine", handlers.MyInspections(d.Reports, lg))
			insp.Get("/v1/tasks", handlers.ListTasks(d.Tasks, lg))
			insp.Post("/v1/tasks", handlers.AddTask(d.Tasks, lg))
			insp.Patch("/v1/tasks/{id}", handlers.ToggleTask(d.Tasks, lg))
			insp.Delete("/v1/tasks/{id}", handlers.DeleteTask(d.Tasks, lg))
		})

		protected.Route("/v1/sessions/{id}", func(s chi.Router) {
			m := d.Sessions
			s.Post("/", handlers.OpenSession(d.Reports, m, d.Audit, lg))
			s.Get("/", handlers.GetSession(m, lg))
			s.Get("/summary", handlers.SessionSummary(m, d.RequiredSigners, lg))
			s.Get("/notices", handlers.TakeNotices(m, lg))
			s.Post("/signatures", handlers.Sign(m, d.Audit, lg))

			s.With(auth.RequireRole(inspection.RoleInspector, inspection.RoleSupervisor)).
				Post("/complete", handlers.Complete(m, d.Audit, lg))

			s.Group(func(edit chi.Router) {
				edit.Use(auth.RequireRole(inspection.RoleInspector))
				edit.Delete("/", handlers.ExitSession(m, d.Audit, lg))
				edit.Patch("/product", handlers.UpdateProduct(m, lg))
				edit.Post("/parameters", handlers.AddParameter(m, lg))
				edit.Patch("/parameters/{pid}", handlers.UpdateParameter(m, lg))
				edit.Delete("/parameters/{pid}", handlers.RemoveParameter(m, lg))
				edit.Post("/parameters/{pid}/evidence", handlers.AddParameterEvidence(m, lg))
				edit.Delete("/parameters/{pid}/evidence/{idx}", handlers.RemoveParameterEvidence(m, lg))
				edit.Post("/parameters/{pid}/gdt-image", handlers.GenerateGDTImage(m, lg))
				edit.Post("/evidence", handlers.AddReportEvidence(m, lg))
				edit.Delete("/evidence/{idx}", handlers.RemoveReportEvidence(m, lg))
			})
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
