package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pdf"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
	"github.com/MeKo-Tech/qrscan/internal/raster"
	"github.com/MeKo-Tech/qrscan/internal/sanitize"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  versionString(),
		Time:     time.Now().UTC().Format(time.RFC3339),
		Pipeline: s.info,
	})
}

// scanImageHandler scans an uploaded image for a code.
func (s *Server) scanImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, ok := s.readUpload(w, r, "image")
	if !ok {
		scanRequestsTotal.WithLabelValues("image", "error").Inc()
		return
	}

	start := time.Now()
	res := s.scanner.ScanImageBytesResult(data)
	scanProcessingDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	scanRequestsTotal.WithLabelValues("image", scanStatus(res)).Inc()

	if res.Err != nil {
		slog.Debug("rejecting unreadable upload", "error", res.Err)
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusOK, toScanResponse(res, wantsClean(r)))
}

// scanRawHandler scans a request body holding width*height luminance bytes.
func (s *Server) scanRawHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	width, errW := strconv.Atoi(r.URL.Query().Get("width"))
	height, errH := strconv.Atoi(r.URL.Query().Get("height"))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		scanRequestsTotal.WithLabelValues("raw", "error").Inc()
		s.writeErrorResponse(w, "width and height must be positive integers", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	pix, err := io.ReadAll(r.Body)
	if err != nil {
		scanRequestsTotal.WithLabelValues("raw", "error").Inc()
		s.writeBodyError(w, err)
		return
	}
	uploadSizeBytes.Observe(float64(len(pix)))

	if !raster.NewLuma(pix, width, height).Valid() {
		scanRequestsTotal.WithLabelValues("raw", "error").Inc()
		s.writeErrorResponse(w, "body length does not match width*height", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res := s.scanner.ScanRawLumaResult(pix, width, height)
	scanProcessingDuration.WithLabelValues("raw").Observe(time.Since(start).Seconds())
	scanRequestsTotal.WithLabelValues("raw", scanStatus(res)).Inc()

	s.writeJSON(w, http.StatusOK, toScanResponse(res, wantsClean(r)))
}

// scanPDFHandler scans the embedded images of an uploaded PDF.
func (s *Server) scanPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, ok := s.readUpload(w, r, "pdf")
	if !ok {
		scanRequestsTotal.WithLabelValues("pdf", "error").Inc()
		return
	}

	opts := pdf.Options{Pages: r.FormValue("pages")}
	if pw := r.FormValue("password"); pw != "" {
		opts.Credentials = &pdf.Credentials{UserPassword: pw, OwnerPassword: pw}
	}

	start := time.Now()
	res := batch.ScanPDFReader("upload.pdf", bytes.NewReader(data), opts, s.scanner)
	scanProcessingDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())

	if res.Error != "" {
		scanRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, res.Error, http.StatusBadRequest)
		return
	}
	status := "not_found"
	if res.Found {
		status = "found"
	}
	scanRequestsTotal.WithLabelValues("pdf", status).Inc()

	resp := toScanResponse(pipeline.Result{Text: res.Text, Found: res.Found, Stage: res.Stage, Attempts: res.Attempts}, wantsClean(r))
	resp.Page = res.Page
	resp.Images = res.Images
	s.writeJSON(w, http.StatusOK, resp)
}

// cleanHandler sanitizes the request body for embedding in JSON.
func (s *Server) cleanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeBodyError(w, err)
		return
	}

	cleaned := sanitize.CleanJSONString(string(body))
	s.writeJSON(w, http.StatusOK, CleanResponse{Text: cleaned, Changed: cleaned != string(body)})
}

// readUpload reads the multipart file field, writing the error response itself on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		if isTooLarge(err) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeErrorResponse(w, "No "+field+" file provided", http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read upload", http.StatusInternalServerError)
		return nil, false
	}
	return data, true
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return true
	}
	// Some multipart paths flatten the MaxBytesReader error to text.
	return strings.Contains(err.Error(), "request body too large")
}

func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	if isTooLarge(err) {
		s.writeErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest)
}

func wantsClean(r *http.Request) bool {
	v := r.FormValue("clean")
	if v == "" {
		return false
	}
	on, err := strconv.ParseBool(v)
	return err == nil && on
}

func toScanResponse(res pipeline.Result, clean bool) ScanResponse {
	text := res.Text
	if clean && res.Found {
		text = sanitize.CleanJSONString(text)
	}
	return ScanResponse{
		Success:  true,
		Found:    res.Found,
		Text:     text,
		Stage:    res.Stage,
		Attempts: res.Attempts,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ScanResponse{Success: false, Error: message})
}
