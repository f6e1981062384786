// Package server exposes the OCR pipeline over HTTP: an upload UI at
// the root, a health probe, and the /api/ocr endpoint the UI posts to.
package server

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

//go:embed index.html
var indexHTML []byte

// Runner is the part of the OCR service the server needs: one image
// plus one operation in, one result out.
type Runner interface {
	Run(ctx context.Context, imageData []byte, operation string) (types.OCRResult, error)
}

// Server routes HTTP requests into the OCR pipeline.
type Server struct {
	log       *slog.Logger
	ocr       Runner
	maxUpload int64
}

// New creates a Server. maxUploadMB caps the multipart form size per
// request.
func New(logger *slog.Logger, ocr Runner, maxUploadMB int) *Server {
	if maxUploadMB < 1 {
		maxUploadMB = 50
	}
	return &Server{
		log:       logger,
		ocr:       ocr,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// Handler returns the routed handler with CORS and request logging
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/ocr", s.handleOCR)
	return s.withRequestLog(withCORS(mux))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
