package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/commit"
	"github.com/shortalex12333/Image-processing-sub000/config"
	rpmw "github.com/shortalex12333/Image-processing-sub000/middleware"
	"github.com/shortalex12333/Image-processing-sub000/observability"
	"github.com/shortalex12333/Image-processing-sub000/ocr"
	"github.com/shortalex12333/Image-processing-sub000/pipeline"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// Deps bundles everything NewRouter needs to mount the receiving
// pipeline's HTTP surface.
type Deps struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Redis        *redis.Client
	Auth         rpmw.Authenticator
	Uploads      repository.Uploads
	Sessions     repository.Sessions
	OCRRegistry  *ocr.Registry
	Orchestrator *pipeline.Orchestrator
	CommitEngine *commit.Engine
}

// NewRouter returns a configured chi Router with the full middleware
// chain and every route from spec §6 mounted. Order matters: CORS and
// security headers run before anything else so preflight and error
// responses carry them too; auth and rate limiting guard only the
// authenticated API group, not the health/metrics endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(rpmw.CORS([]string{"*"}))
	r.Use(rpmw.SecurityHeaders)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(d.Logger))
	r.Use(maxBodySize(d.Config.MaxBodyBytes))

	healthHandler := NewHealthHandler(d.Logger, d.OCRRegistry)
	r.Get("/health", healthHandler.Health)
	r.Get("/metrics", observability.Handler().ServeHTTP)

	uploadHandler := NewUploadHandler(d.Config, d.Logger, d.Orchestrator, d.Sessions)
	statusHandler := NewUploadStatusHandler(d.Config, d.Logger, d.Uploads)
	sessionHandler := NewSessionHandler(d.Config, d.Logger, d.Sessions)
	commitHandler := NewCommitHandler(d.Config, d.Logger, d.CommitEngine)

	authMW := rpmw.NewAuth(d.Logger, d.Auth, d.Config.APIKeyHeader)
	rateLimiter := rpmw.NewRateLimiter(d.Logger, d.Redis, d.Config.MaxUploadsPerHour, time.Duration(d.Config.UploadRateLimitWindowSeconds)*time.Second, true)
	timeoutMW := rpmw.NewTimeout(d.Logger, 60*time.Second)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW.Handler)
		r.Use(timeoutMW.Handler)

		r.Route("/images", func(r chi.Router) {
			r.With(rateLimiter.Handler).Post("/upload", uploadHandler.Upload)
			r.Get("/{image_id}/status", statusHandler.Status)
		})

		r.Route("/receiving/sessions", func(r chi.Router) {
			r.Get("/{session_id}", sessionHandler.GetSession)
			r.Patch("/{session_id}/lines/{line_id}/verify", sessionHandler.VerifyLine)
			r.Post("/{session_id}/commit", commitHandler.Commit)
		})
	})

	return r
}

func maxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > 0 && r.ContentLength > maxBytes {
				http.Error(w, `{"status":"error","error_code":"FILE_TOO_LARGE","message":"request body too large"}`, http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("req_id", chimw.GetReqID(r.Context())).
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
