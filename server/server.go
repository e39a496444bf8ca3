// Package server exposes report extraction over HTTP.
//
// Routes:
//
//	GET  /             upload form
//	POST /summary      form post (file or url), answers with the HTML page
//	POST /v1/summary   PDF body, multipart form or {"url": ...}; answers JSON
//	GET  /v1/catalog   the exam catalog as YAML
//	GET  /healthz      liveness
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	labhll "github.com/dsm122n/lab-hll"
	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/ocr"
	"github.com/dsm122n/lab-hll/render"
)

// Config configures a Server. Zero fields get defaults.
type Config struct {
	Catalog        *catalog.Catalog
	Logger         *slog.Logger
	HTTPClient     *http.Client
	MaxUploadBytes int64
	FetchTimeout   time.Duration
	OCR            bool
	OCRLanguage    string
	OCRPageSegMode ocr.PageSegMode
}

func (c *Config) defaults() {
	if c.Catalog == nil {
		c.Catalog = catalog.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 32 << 20
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
}

// Server handles extraction requests.
type Server struct {
	cfg Config
}

// New returns a server for cfg.
func New(cfg Config) *Server {
	cfg.defaults()
	return &Server{cfg: cfg}
}

var (
	errNoInput  = errors.New("send a PDF file or a url")
	errBadURL   = errors.New("url must be an absolute http or https URL")
	errTooLarge = errors.New("document too large")
)

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleIndex)
	r.Post("/summary", s.handleFormSummary)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/summary", s.handleSummary)
		r.Get("/catalog", s.handleCatalog)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writePage(w, http.StatusOK, render.Page{Action: "/summary"})
}

func (s *Server) handleFormSummary(w http.ResponseWriter, r *http.Request) {
	ext, cancel, err := s.extractor(w, r)
	if err != nil {
		writePage(w, statusFor(err), render.Page{Action: "/summary", Error: err.Error()})
		return
	}
	defer cancel()

	summary, _, err := ext.Summary()
	if err != nil {
		s.cfg.Logger.Debug("summary failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writePage(w, statusFor(err), render.Page{Action: "/summary", Error: err.Error()})
		return
	}
	writePage(w, http.StatusOK, render.Page{Action: "/summary", Summary: summary})
}

// summaryResponse is the body of POST /v1/summary.
type summaryResponse struct {
	render.Document
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ext, cancel, err := s.extractor(w, r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	defer cancel()

	rep, warnings, err := ext.Report()
	if err != nil {
		s.cfg.Logger.Debug("report failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	resp := summaryResponse{Document: render.JSON(rep)}
	for _, wn := range warnings {
		resp.Warnings = append(resp.Warnings, wn.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.cfg.Catalog.WriteYAML(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Write(buf.Bytes())
}

// extractor builds the pipeline for a request. It accepts a raw PDF body, a
// multipart form with a "file" or "url" field, a url-encoded form, or a JSON
// object {"url": ...}. The returned cancel func releases the extraction
// deadline.
func (s *Server) extractor(w http.ResponseWriter, r *http.Request) (*labhll.Extractor, context.CancelFunc, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var data []byte
	var rawURL string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = body
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			return nil, nil, requestError(err)
		}
		if f, _, err := r.FormFile("file"); err == nil {
			defer f.Close()
			if data, err = io.ReadAll(f); err != nil {
				return nil, nil, requestError(err)
			}
		}
		rawURL = r.FormValue("url")
	case "application/x-www-form-urlencoded":
		r.Body = body
		if err := r.ParseForm(); err != nil {
			return nil, nil, requestError(err)
		}
		rawURL = r.PostFormValue("url")
	case "application/json":
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return nil, nil, requestError(err)
		}
		rawURL = req.URL
	default:
		var err error
		if data, err = io.ReadAll(body); err != nil {
			return nil, nil, requestError(err)
		}
	}

	var ext *labhll.Extractor
	switch {
	case len(data) > 0:
		ext = labhll.FromReader(bytes.NewReader(data))
	case rawURL != "":
		u, err := url.Parse(rawURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, nil, errBadURL
		}
		ext = labhll.FromURL(u.String()).WithHTTPClient(s.cfg.HTTPClient)
	default:
		return nil, nil, errNoInput
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.FetchTimeout)
	ext = ext.WithContext(ctx).WithCatalog(s.cfg.Catalog).WithLogger(s.cfg.Logger)
	if s.cfg.OCR {
		ext = ext.OCR(s.cfg.OCRLanguage).OCRPageSegMode(s.cfg.OCRPageSegMode)
	}
	return ext, cancel, nil
}

// requestError maps body read failures, turning size overruns into
// errTooLarge.
func requestError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errTooLarge
	}
	return fmt.Errorf("invalid request: %w", err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, labhll.ErrAcquisition):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// logRequests logs one Info record per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writePage(w http.ResponseWriter, code int, p render.Page) {
	var buf bytes.Buffer
	if err := render.WritePage(&buf, p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
