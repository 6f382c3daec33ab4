// launching the server, preview storage, session sweeper, kafka
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/digit-ui/config"
	"github.com/ds124wfegd/digit-ui/internal/database"
	"github.com/ds124wfegd/digit-ui/internal/pkg/kafka"
	"github.com/ds124wfegd/digit-ui/internal/pkg/processor"
	"github.com/ds124wfegd/digit-ui/internal/pkg/storage"
	"github.com/ds124wfegd/digit-ui/internal/predict"
	"github.com/ds124wfegd/digit-ui/internal/service"
	"github.com/ds124wfegd/digit-ui/internal/transport"
	"github.com/ds124wfegd/digit-ui/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg.Server.Timeout),
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// writeTimeout leaves room to answer after an API request hits its own timeout.
func writeTimeout(requestTimeout time.Duration) time.Duration {
	if requestTimeout <= 0 {
		return 0
	}
	return requestTimeout + 5*time.Second
}

func NewServer(cfg *config.Config) {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	if cfg.Server.Env == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	fileStorage := storage.NewFileStorage(cfg.Preview.Dir)
	previewRepo := database.NewPreviewRepository(fileStorage)
	imgProcessor := processor.NewImageProcessor(cfg.Preview.MaxSide)
	previewService := service.NewPreviewService(previewRepo, imgProcessor)

	// превью прошлого запуска никому не принадлежат
	if err := previewService.Purge(); err != nil {
		logrus.Warnf("could not purge previews: %v", err)
	}

	predictor, err := predict.NewClient(cfg.API.BaseURL, nil)
	if err != nil {
		logrus.Fatalf("invalid api base url %q: %s", cfg.API.BaseURL, err.Error())
	}

	healthCtx, healthCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := predictor.Health(healthCtx); err != nil {
		logrus.WithField("base_url", predictor.BaseURL()).Warnf("classifier is not reachable yet: %v", err)
	} else {
		logrus.WithField("base_url", predictor.BaseURL()).Info("classifier is reachable")
	}
	healthCancel()

	kafkaProducer := kafka.NewProducer(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.Enabled)

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	sessionService := service.NewSessionService(appCtx, predictor, previewService, kafkaProducer)

	cleanupWorker := worker.NewSessionCleanupWorker(sessionService, cfg.Session.SweepInterval, cfg.Session.IdleTTL)
	go cleanupWorker.Start(appCtx)

	handlers := transport.Handlers{
		Sessions: transport.NewSessionHandler(sessionService, cfg.Upload.MaxBytes),
		Previews: transport.NewPreviewHandler(previewService),
		Pages:    transport.NewPageHandler(sessionService, previewService, predictor, cleanupWorker, cfg.Server.AppVersion),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handlers, cfg.Server.Timeout)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	appCancel()
	sessionService.CloseAll()

	if err := previewService.Purge(); err != nil {
		logrus.Errorf("error occured on preview cleanup: %s", err.Error())
	}
	if err := kafkaProducer.Close(); err != nil {
		logrus.Errorf("error occured on kafka producer closing: %s", err.Error())
	}
}
