package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"i4.energy/across/socketmodem/modem"
	"i4.energy/across/socketmodem/serialio"
)

// StatusSource reports the state of the radio.
type StatusSource interface {
	Status(ctx context.Context) (modem.Status, error)
}

// Server handles incoming HTTP requests for the radio daemon
type Server struct {
	Logger *slog.Logger
	Outbox *Outbox
	Radio  StatusSource
	// Stats, when set, reports the serial transport counters
	Stats func() serialio.Stats
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sms", s.handleSMS)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Failed to write response", "error", err)
	}
}

// handleSMS queues an SMS for delivery
func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	var req SMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.Outbox.Enqueue(req)
	switch {
	case errors.Is(err, ErrMissingFields):
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrQueueFull):
		s.sendError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		s.Logger.Error("Failed to queue SMS", "error", err, "to", req.To)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("SMS queued", "id", id, "to", req.To, "message_length", len(req.Message))

	type QueuedResponse struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}
	s.sendJSON(w, QueuedResponse{Status: "queued", ID: id}, http.StatusAccepted)
}

// handleStatus reports the radio and transport state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Radio.Status(r.Context())
	if err != nil {
		s.Logger.Error("Failed to read radio status", "error", err)
		s.sendError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	type StatusResponse struct {
		modem.Status
		Pending int             `json:"pending"`
		Serial  *serialio.Stats `json:"serial,omitempty"`
	}
	resp := StatusResponse{Status: status, Pending: s.Outbox.Pending()}
	if s.Stats != nil {
		stats := s.Stats()
		resp.Serial = &stats
	}
	s.sendJSON(w, resp, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
