package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/orchestrator"
	"github.com/thariqabe666/finalproj-group-2/internal/session"

	"go.uber.org/zap"
)

// Engine is the orchestration surface the HTTP layer needs.
type Engine interface {
	HandleTurn(ctx context.Context, sessionID, input string) (*orchestrator.Reply, error)
	StartInterview(ctx context.Context, sessionID, jobDescription string) (*orchestrator.Reply, error)
	EndInterview(ctx context.Context, sessionID string) (*orchestrator.Reply, error)
	AnalyzeCV(ctx context.Context, sessionID, cvText, jobDescription string) (*orchestrator.Reply, error)
	GenerateCoverLetter(ctx context.Context, sessionID, jobDescription string) (*orchestrator.Reply, error)
}

// Server exposes the engine over HTTP.
type Server struct {
	engine Engine
	logger *zap.Logger
}

// NewServer creates the HTTP server facade.
func NewServer(engine Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, logger: logger}
}

// Routes builds the router with all endpoints registered.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Post("/chat", s.handleChat)
	r.Post("/cv/analyze", s.handleAnalyzeCV)
	r.Post("/cover-letter/generate", s.handleCoverLetter)
	r.Route("/interview", func(r chi.Router) {
		r.Post("/start", s.handleInterviewStart)
		r.Post("/chat", s.handleInterviewChat)
		r.Post("/end", s.handleInterviewEnd)
	})

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type analyzeRequest struct {
	SessionID      string `json:"session_id"`
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
}

type jobRequest struct {
	SessionID      string `json:"session_id"`
	JobDescription string `json:"job_description"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.HandleTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, reply)
}

func (s *Server) handleAnalyzeCV(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.AnalyzeCV(r.Context(), req.SessionID, req.CVText, req.JobDescription)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, reply)
}

func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.GenerateCoverLetter(r.Context(), req.SessionID, req.JobDescription)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, reply)
}

func (s *Server) handleInterviewStart(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.StartInterview(r.Context(), req.SessionID, req.JobDescription)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, reply)
}

func (s *Server) handleInterviewChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.HandleTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, reply)
}

func (s *Server) handleInterviewEnd(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.EndInterview(r.Context(), req.SessionID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, reply)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// fail maps engine errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInterviewActive), errors.Is(err, interview.ErrStateViolation):
		s.error(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.error(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encoding failed", zap.Error(err))
	}
}

func (s *Server) error(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]string{"error": message})
}
