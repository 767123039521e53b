package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"

	"github.com/shortalex12333/Image-processing-sub000/commit"
	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/extraction"
	"github.com/shortalex12333/Image-processing-sub000/httpapi"
	"github.com/shortalex12333/Image-processing-sub000/intake"
	"github.com/shortalex12333/Image-processing-sub000/logging"
	rpmw "github.com/shortalex12333/Image-processing-sub000/middleware"
	"github.com/shortalex12333/Image-processing-sub000/ocr"
	"github.com/shortalex12333/Image-processing-sub000/pipeline"
	"github.com/shortalex12333/Image-processing-sub000/reconciliation"
	"github.com/shortalex12333/Image-processing-sub000/redisclient"
	"github.com/shortalex12333/Image-processing-sub000/repository/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg)

	log.Info().Str("env", cfg.Env).Msg("receiving pipeline starting")

	rc, err := redisclient.New(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis init failed — continuing without Redis")
	} else if err := rc.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis ping failed")
	} else {
		log.Info().Msg("redis connected")
	}

	// Repository handle set: the in-memory store stands in for a SQL
	// adapter in this module, per spec §9's "repository handle set is
	// one of three permitted globals" — a real deployment swaps this
	// for a Postgres-backed implementation without touching callers.
	store := memory.New()
	repoSet := store.Set()

	rs := redsync.New(goredis.NewPool(rc.Client))
	lockedCatalog := commit.NewLockedCatalog(repoSet.Catalog, rs)
	repoSet.Catalog = lockedCatalog

	abuseGuard := intake.NewAbuseGuard(rc.Client, cfg)
	gate := intake.NewGate(cfg, log, repoSet.Uploads, repoSet.Blob, abuseGuard)

	ocrRegistry := ocr.NewRegistry()
	registerOCREngines(cfg, ocrRegistry)
	ocrRegistry.SetPriority(cfg.OCREnginePriority)

	pdfEngine := ocr.NewPDFEngine(cfg.OCREnginesEnabled["pdf"])
	fallback, _ := ocrRegistry.Get("fast")
	ocrLayer := ocr.NewLayer(ocrRegistry, pdfEngine, fallback, cfg.OCRFallbackConfidence, cfg.OCRMaxDimensionPx, nil)

	extractionLayer := extraction.NewLayer(cfg, nil)
	reconLayer := reconciliation.NewLayer(repoSet.Catalog, repoSet.Orders, time.Now)
	orchestrator := pipeline.NewOrchestrator(gate, ocrLayer, extractionLayer, reconLayer, log)
	commitEngine := commit.NewEngine(repoSet.TxBeginner, log, time.Now)

	authenticator := rpmw.NewStaticAuthenticator()

	router := httpapi.NewRouter(httpapi.Deps{
		Config:       cfg,
		Logger:       log,
		Redis:        rc.Client,
		Auth:         authenticator,
		Uploads:      repoSet.Uploads,
		Sessions:     repoSet.Sessions,
		OCRRegistry:  ocrRegistry,
		Orchestrator: orchestrator,
		CommitEngine: commitEngine,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("receiving pipeline listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("receiving pipeline stopped gracefully")
	}
}

var errOCRBackendNotConfigured = errors.New("local OCR backend not configured")

// unconfiguredExtractor stands in for the local OCR binary/model binding
// until one is wired; it returns an error so the fallback chain moves to
// the next engine in priority order instead of crashing the request.
func unconfiguredExtractor(ctx context.Context, imageBytes []byte) (string, float64, error) {
	return "", 0, errOCRBackendNotConfigured
}

// registerOCREngines wires the local engines enabled by configuration.
// The cloud engine is left unregistered here since it requires a
// configured CloudClient credential set, out of this module's scope.
func registerOCREngines(cfg *config.Config, registry *ocr.Registry) {
	if cfg.OCREnginesEnabled["fast"] {
		registry.Register(ocr.NewFastEngine(true, unconfiguredExtractor))
	}
	if cfg.OCREnginesEnabled["accurate"] {
		registry.Register(ocr.NewAccurateEngine(true, unconfiguredExtractor))
	}
}
