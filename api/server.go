package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/config"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/db/kvdb"
	"github.com/meghashyamc/apotek/db/searchdb"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/realtime"
	"github.com/meghashyamc/apotek/services/debounce"
	"github.com/meghashyamc/apotek/services/livesearch"
	"github.com/meghashyamc/apotek/services/records"
	"github.com/meghashyamc/apotek/services/search"
	"github.com/meghashyamc/apotek/validation"
)

type server struct {
	cfg           *config.Config
	router        *gin.Engine
	httpServer    *http.Server
	kvdb          kvdb.DB
	searchdb      searchdb.DB
	hub           realtime.Hub
	recordService *records.Service
	searchService *search.Service
	liveManager   *livesearch.Manager
	validator     *validation.Validator
	logger        logger.Logger
}

func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()
	s.setupGracefulShutdown(ctx)

	return nil
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	buckets := make([]string, 0, len(db.Kinds))
	for _, kind := range db.Kinds {
		buckets = append(buckets, string(kind))
	}
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetKVDBPath(), buckets)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchdb, err = searchdb.New(s.logger, filepath.Join(s.cfg.GetStoragePath(), s.cfg.GetIndexPath()))
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		return err
	}
	s.hub, err = newHub(s.logger, s.cfg.GetRedisAddr())
	if err != nil {
		s.logger.Error("error creating realtime hub", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger, s.cfg.GetMaxPageSize())
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	s.recordService = records.New(s.logger, s.kvdb, s.searchdb, s.hub)
	if err := s.recordService.Reindex(ctx); err != nil {
		s.logger.Error("error rebuilding lookup index", "err", err.Error())
		return err
	}
	s.searchService = search.New(s.logger, s.recordService, search.NewRanker(s.cfg.GetCollationLanguage()))
	s.liveManager = livesearch.NewManager(s.logger, s.searchService, s.hub, debounce.Options{
		Delay:             s.cfg.GetDebounceDelay(),
		ColumnFilterDelay: s.cfg.GetColumnFilterDelay(),
	}, s.cfg.GetSessionTTL())

	return nil

}

// newHub uses Redis when an address is configured so that several
// instances see each other's changes.
func newHub(logger logger.Logger, redisAddr string) (realtime.Hub, error) {
	if redisAddr == "" {
		logger.Info("no redis address configured, using in-process realtime hub")
		return realtime.NewLocalHub(logger), nil
	}

	return realtime.NewRedisHub(logger, redisAddr)
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s)

	s.router = router
}

func (s *server) setupHTTPServer() {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
}

func (s *server) setupGracefulShutdown(ctx context.Context) {

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.logger.Info("starting to shut down http server")
		shutdownCtx := context.Background()
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer cancel()
		// Closing sessions first ends open event streams.
		s.liveManager.Shutdown()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error shutting down http server", "err", err)
		}
		s.hub.Close()
		s.kvdb.Close()
		s.searchdb.Close()
		s.logger.Info("shut down http server successfully")
	}()

	wg.Wait()
}
