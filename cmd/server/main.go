package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/api/handlers"
	"github.com/feichai0017/ai-ready-data/api/routes"
	"github.com/feichai0017/ai-ready-data/config"
	"github.com/feichai0017/ai-ready-data/internal/service/document"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

func main() {
	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	srvCfg := config.GetServerConfig()

	// init processing stack
	docService, meter, err := document.GetService(context.Background(), log)
	if err != nil {
		log.Fatal("Failed to build document service:", logger.Error(err))
	}

	// init handlers
	h := handlers.NewHandlers(docService, meter, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, meter, srvCfg.AdminToken, log)

	srv := &http.Server{
		Addr:    ":" + srvCfg.Port,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("port", srvCfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error:", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown:", logger.Error(err))
	}

}
