package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mediasig/internal/analysis"
	"mediasig/internal/config"
	"mediasig/internal/fileutil"
	"mediasig/internal/jobs"
	"mediasig/internal/logging"
	"mediasig/internal/services"
)

// formFieldLimit caps the size of non-file multipart fields.
const formFieldLimit = 4 << 10

// multipartOverhead is allowed on top of max_upload_bytes for part headers
// and small form fields.
const multipartOverhead = 1 << 20

// StatusFunc builds the /v1/status report.
type StatusFunc func(ctx context.Context) StatusResponse

// Server holds the handlers' collaborators.
type Server struct {
	cfg        *config.Config
	dispatcher jobs.Dispatcher
	tracker    *jobs.Tracker
	status     StatusFunc
	logger     *slog.Logger
}

// NewServer builds the HTTP surface. status may be nil, in which case the
// report is assembled from dependency and preflight checks.
func NewServer(cfg *config.Config, dispatcher jobs.Dispatcher, tracker *jobs.Tracker, status StatusFunc, logger *slog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		tracker:    tracker,
		status:     status,
		logger:     logging.NewComponentLogger(logger, "api"),
	}
	if s.status == nil {
		s.status = func(ctx context.Context) StatusResponse {
			return BuildStatus(ctx, cfg, tracker)
		}
	}
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(s.requestContext)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.API.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(bearerAuth(s.cfg.API.Token))
		rt.Get("/status", s.handleStatus)
		rt.Post("/analyze", s.handleAnalyze)
		rt.Get("/jobs", s.handleListJobs)
		rt.Post("/jobs", s.handleSubmit)
		rt.Post("/jobs/upload", s.handleUpload)
		rt.Get("/jobs/{id}", s.handleGetJob)
	})
	return mux
}

// requestContext stamps the chi request id into the services context and
// logs each request.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = services.WithRequestID(ctx, id)
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String(logging.FieldEventType, "http_request"),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status(r.Context()))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r.Body)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if s.dispatcher == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, analysis.FailureEnvelope{Error: "analysis unavailable"})
		return
	}
	result, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r.Body)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.submit(w, r, req, jobs.SubmitOptions{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.API.MaxUploadBytes
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}
	reader, err := r.MultipartReader()
	if err != nil {
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "upload", "multipart/form-data body required", err))
		return
	}

	var (
		stored *fileutil.StoredFile
		fields = map[string]string{}
	)
	discard := func() {
		if stored != nil {
			_ = fileutil.RemoveQuietly(stored.Path)
		}
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			discard()
			s.writeUploadError(w, r, err)
			return
		}
		name := part.FormName()
		if name == "file" {
			if stored != nil {
				_ = part.Close()
				discard()
				s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "upload", "exactly one file part is allowed", nil))
				return
			}
			file, err := fileutil.StoreStream(s.cfg.Paths.UploadDir, part.FileName(), part, maxBytes)
			_ = part.Close()
			if err != nil {
				s.writeUploadError(w, r, err)
				return
			}
			stored = &file
			continue
		}
		value, err := io.ReadAll(io.LimitReader(part, formFieldLimit))
		_ = part.Close()
		if err != nil {
			discard()
			s.writeUploadError(w, r, err)
			return
		}
		fields[name] = strings.TrimSpace(string(value))
	}
	if stored == nil {
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "upload", "file part is required", nil))
		return
	}

	req, err := toRequest(AnalyzeRequest{
		FilePath:          stored.Path,
		Kind:              fields["kind"],
		Language:          fields["language"],
		ReferenceDatabase: fields["referenceDatabase"],
	})
	if err != nil {
		discard()
		s.writeFailure(w, r, err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("upload stored",
		logging.String(logging.FieldEventType, "upload_stored"),
		logging.Int64("size_bytes", stored.Size),
		logging.String("sha256", stored.SHA256),
	)
	s.submit(w, r, req, jobs.SubmitOptions{OwnedInput: true})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, req analysis.Request, opts jobs.SubmitOptions) {
	if s.tracker == nil {
		if opts.OwnedInput {
			_ = fileutil.RemoveQuietly(req.FilePath)
		}
		s.writeJSON(w, http.StatusServiceUnavailable, analysis.FailureEnvelope{Error: "job tracking unavailable"})
		return
	}
	id, err := s.tracker.Submit(r.Context(), req, opts)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, SubmitResponse{JobID: id})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.writeFailure(w, r, jobs.ErrNotFound)
		return
	}
	job, err := s.tracker.Poll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	resp, err := FromJob(job)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	resp := JobListResponse{Jobs: []JobSummary{}}
	if s.tracker != nil {
		list, err := s.tracker.List(r.Context())
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		for _, job := range list {
			resp.Jobs = append(resp.Jobs, SummarizeJob(job))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func decodeAnalyzeRequest(body io.Reader) (analysis.Request, error) {
	var payload AnalyzeRequest
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return analysis.Request{}, services.Wrap(services.ErrValidation, "api", "decode request", "invalid JSON body", err)
	}
	return toRequest(payload)
}

func toRequest(payload AnalyzeRequest) (analysis.Request, error) {
	kind, err := analysis.ParseKind(payload.Kind)
	if err != nil {
		return analysis.Request{}, err
	}
	return analysis.Request{
		FilePath:          strings.TrimSpace(payload.FilePath),
		Kind:              kind,
		Language:          strings.TrimSpace(payload.Language),
		ReferenceDatabase: strings.TrimSpace(payload.ReferenceDatabase),
	}, nil
}

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.Is(err, fileutil.ErrTooLarge) || errors.As(err, &maxErr) {
		s.writeJSON(w, http.StatusRequestEntityTooLarge, analysis.FailureEnvelope{Error: "upload exceeds api.max_upload_bytes"})
		return
	}
	s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "upload", "read multipart body", err))
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}
	if !services.IsUserFacing(err) {
		logging.StageFailure(logging.WithContext(r.Context(), s.logger), "request failed", "http_request_failed", err,
			logging.String("path", r.URL.Path))
	}
	s.writeJSON(w, status, analysis.NewFailure(err, s.cfg.API.IncludeTrace))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}
