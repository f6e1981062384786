// Command ocr-server runs the DeepSeek-OCR web app: upload UI,
// /api/ocr endpoint, health probe.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deepseekocr "github.com/lalanikarim/deepseek-ocr"
	"github.com/lalanikarim/deepseek-ocr/internal/config"
	"github.com/lalanikarim/deepseek-ocr/internal/server"
	"github.com/lalanikarim/deepseek-ocr/pkg/client"
	"github.com/lalanikarim/deepseek-ocr/pkg/llamacpp"
	"github.com/lalanikarim/deepseek-ocr/pkg/ollama"
)

func main() {
	var addr, configPath, backend, url, model string

	flag.StringVar(&addr, "addr", "", "listen address (overrides config)")
	flag.StringVar(&configPath, "config", "", "path to JSON config file")
	flag.StringVar(&backend, "backend", "", "backend to use: ollama or llamacpp (overrides config)")
	flag.StringVar(&url, "url", "", "backend server URL (overrides config)")
	flag.StringVar(&model, "model", "", "model name (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if addr != "" {
		cfg.Server.Addr = addr
	}
	if backend != "" {
		cfg.Backend.Kind = backend
	}
	if url != "" {
		cfg.Backend.URL = url
	}
	if model != "" {
		cfg.Backend.Model = model
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var visionClient client.VisionClient
	var err error
	switch cfg.Backend.Kind {
	case "ollama":
		visionClient, err = ollama.NewClient(cfg.Backend.URL)
	case "llamacpp":
		visionClient, err = llamacpp.NewClient(cfg.Backend.URL)
	}
	if err != nil {
		logger.Error("failed to create backend client", "backend", cfg.Backend.Kind, "error", err)
		os.Exit(1)
	}

	svc := deepseekocr.NewWithOptions(visionClient, deepseekocr.Options{
		Model:       cfg.Backend.Model,
		SendFormat:  cfg.Send.Format,
		SendMaxDim:  cfg.Send.MaxDim,
		SendQuality: cfg.Send.Quality,
		StrokeWidth: cfg.Annotate.StrokeWidth,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(logger, svc, cfg.Server.MaxUploadMB).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "backend", cfg.Backend.Kind, "model", cfg.Backend.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
