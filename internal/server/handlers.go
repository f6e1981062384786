package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ocrResponse is the JSON shape of a successful /api/ocr call.
// AnnotatedImage is base64-encoded PNG, or null when the transcript
// carried no detections.
type ocrResponse struct {
	Text           string  `json:"text"`
	Detections     int     `json:"detections"`
	AnnotatedImage *string `json:"annotated_image"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleOCR accepts a multipart form with an image under "file" and a
// natural-language "operation", runs the OCR pipeline, and returns
// the transcript plus the annotated image when any boxes were drawn.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, "File must be an image", http.StatusBadRequest)
		return
	}

	operation := strings.TrimSpace(r.FormValue("operation"))
	if operation == "" {
		respondError(w, "Operation is required", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	result, err := s.ocr.Run(r.Context(), imageData, operation)
	if err != nil {
		s.log.Error("ocr failed", "file", header.Filename, "error", err)
		respondError(w, fmt.Sprintf("Processing error: %v", err), http.StatusInternalServerError)
		return
	}

	resp := ocrResponse{
		Text:       result.Text,
		Detections: len(result.Detections),
	}
	if result.Annotated != nil {
		encoded := base64.StdEncoding.EncodeToString(result.Annotated)
		resp.AnnotatedImage = &encoded
	}
	respondJSON(w, resp, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
