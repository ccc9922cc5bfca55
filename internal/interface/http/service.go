package httpservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/config"
	interfaces "github.com/indelible-labs/indelibled/internal/interface"
	"github.com/indelible-labs/indelibled/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type service struct {
	version   string
	config    Config
	appConfig *config.Config
	server    *http.Server
	started   atomic.Bool
	cancel    context.CancelFunc
}

func NewService(
	version string, svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{
		version:   version,
		config:    svcConfig,
		appConfig: appConfig,
	}, nil
}

func (s *service) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.config.EnableMetrics {
		telemetry.SetVersion(s.version)
		if err := telemetry.WatchEvents(ctx, s.appConfig.EventBus()); err != nil {
			cancel()
			s.started.Store(false)
			return err
		}
	}

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := NewRouter(s.config, Services{
		App:    s.appConfig.AppService(),
		Admin:  s.appConfig.AdminService(),
		Ledger: s.appConfig.LedgerService(),
		Events: s.appConfig.EventBus(),
	})

	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// nolint:all
	go s.server.ListenAndServe()

	log.Infof("started listening at %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}

	// Event streams end once the base context is done.
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully shutdown server")
		_ = s.server.Close()
	}

	s.appConfig.Close()
	log.Info("shutdown service")
}
