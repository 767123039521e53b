package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/commit"
	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/extraction"
	"github.com/shortalex12333/Image-processing-sub000/intake"
	"github.com/shortalex12333/Image-processing-sub000/middleware"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/ocr"
	"github.com/shortalex12333/Image-processing-sub000/pipeline"
	"github.com/shortalex12333/Image-processing-sub000/reconciliation"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

type noopUploads struct{}

func (noopUploads) Insert(ctx context.Context, u *model.Upload) (string, error) { return "", nil }
func (noopUploads) FindByTenantSHA(ctx context.Context, tenantID, sha256 string) (*model.Upload, error) {
	return nil, nil
}
func (noopUploads) CountSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	return 0, nil
}
func (noopUploads) Get(ctx context.Context, tenantID, id string) (*model.Upload, error) {
	return nil, repository.ErrNoRows
}
func (noopUploads) UpdateStatus(ctx context.Context, tenantID, id string, status model.ProcessingStatus) error {
	return nil
}

type noopSessions struct{}

func (noopSessions) CreateSession(ctx context.Context, s *model.ReceivingSession) (string, error) {
	return "", nil
}
func (noopSessions) GetSession(ctx context.Context, tenantID, sessionID string) (*model.ReceivingSession, error) {
	return nil, repository.ErrNoRows
}
func (noopSessions) ListLines(ctx context.Context, tenantID, sessionID string) ([]model.ExtractedLine, error) {
	return nil, nil
}
func (noopSessions) InsertLine(ctx context.Context, tenantID, sessionID string, line *model.ExtractedLine) (string, error) {
	return "", nil
}
func (noopSessions) UpdateLineVerified(ctx context.Context, tenantID, sessionID, lineID, actorID string) error {
	return nil
}
func (noopSessions) CommitSessionIfDraft(ctx context.Context, tenantID, sessionID, actorID, eventID string, ts time.Time) (bool, error) {
	return false, nil
}
func (noopSessions) CountEventsForTenantYear(ctx context.Context, tenantID string, year int) (int, error) {
	return 0, nil
}

type noopBlob struct{}

func (noopBlob) Put(ctx context.Context, path string, data []byte) error { return nil }
func (noopBlob) Get(ctx context.Context, path string) ([]byte, error)   { return nil, nil }

type noopTxBeginner struct{}

func (noopTxBeginner) Begin(ctx context.Context) (repository.Tx, error) {
	return nil, repository.ErrNoRows
}

// alwaysDenyAuth rejects every token, so the 401 test exercises the real
// Authenticator interface rather than a pre-baked allow list.
type alwaysDenyAuth struct{}

func (alwaysDenyAuth) Authenticate(ctx context.Context, token string) (*middleware.Principal, error) {
	return nil, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Env:               "test",
		APIKeyHeader:      "Authorization",
		MaxBodyBytes:      1 << 20,
		MaxUploadsPerHour: 50,
		UploadRateLimitWindowSeconds: 3600,
	}
	logger := zerolog.New(io.Discard)

	gate := intake.NewGate(cfg, logger, noopUploads{}, noopBlob{}, intake.NewAbuseGuard(rdb, cfg))
	ocrLayer := ocr.NewLayer(ocr.NewRegistry(), ocr.NewPDFEngine(false), nil, 0.6, 3000, nil)
	extractionLayer := extraction.NewLayer(cfg, nil)
	reconLayer := reconciliation.NewLayer(nil, nil, time.Now)
	orchestrator := pipeline.NewOrchestrator(gate, ocrLayer, extractionLayer, reconLayer, logger)
	commitEngine := commit.NewEngine(noopTxBeginner{}, logger, nil)

	return NewRouter(Deps{
		Config:       cfg,
		Logger:       logger,
		Redis:        rdb,
		Auth:         alwaysDenyAuth{},
		Uploads:      noopUploads{},
		Sessions:     noopSessions{},
		OCRRegistry:  ocr.NewRegistry(),
		Orchestrator: orchestrator,
		CommitEngine: commitEngine,
	})
}

func TestHealthEndpointReturnsServiceUnavailableWithNoEngines(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Result().StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with no registered OCR engines, got %d", rw.Result().StatusCode)
	}
}

func TestUnauthenticatedRouteReturns401(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receiving/sessions/abc", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated session route, got %d", rw.Result().StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/images/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("expected CORS Allow-Origin header on preflight response")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	headers := []string{"X-Content-Type-Options", "X-Frame-Options", "Strict-Transport-Security"}
	for _, h := range headers {
		if rw.Header().Get(h) == "" {
			t.Fatalf("expected security header %s to be set", h)
		}
	}
}
