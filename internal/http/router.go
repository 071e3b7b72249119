package http

import (
	"net/http"

	"leadgen/internal/assistant"
	"leadgen/internal/auth"
	"leadgen/internal/config"
	"leadgen/internal/http/handler"
	mw "leadgen/internal/http/middleware"
	"leadgen/internal/scheduler"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, runner *assistant.Runner, sched *scheduler.Scheduler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	chat := &handler.ChatHandler{Runner: runner}
	r.With(auth.RequireAuth(jwtSvc)).Post("/chat", chat.Chat)

	tasks := &handler.TaskHandler{Sched: sched, DB: db}
	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", tasks.List)
		r.Post("/", tasks.Create)
		r.Get("/{id}/executions", tasks.Executions)
	})

	jobs := &handler.JobsHandler{DB: db}
	r.With(auth.RequireAuth(jwtSvc)).Get("/jobs", jobs.List)

	return r
}
