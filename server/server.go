// Package server exposes the scoring core over the Rspamd HTTP check
// protocol. The server owns task setup and reply rendering only; rule
// execution is delegated to the caller through the Scanner interface.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/rspamd/rspamd-filter-go/config"
	"github.com/rspamd/rspamd-filter-go/errors"
	"github.com/rspamd/rspamd-filter-go/filter"
	"github.com/rspamd/rspamd-filter-go/protocol"
)

// Scanner runs the filter rules for a message task, inserting symbol
// results and pass-throughs on it.
type Scanner interface {
	Scan(ctx context.Context, task *filter.Task) error
}

// ScannerFunc adapts a function to the Scanner interface
type ScannerFunc func(ctx context.Context, task *filter.Task) error

// Scan implements Scanner
func (f ScannerFunc) Scan(ctx context.Context, task *filter.Task) error {
	return f(ctx, task)
}

// Server handles check requests against a configuration and scanner
type Server struct {
	cfg     *config.Config
	scanner Scanner
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *zap.Logger
}

// New creates a check server
func New(cfg *config.Config, scanner Scanner) (*Server, error) {
	if scanner == nil {
		return nil, errors.NewConfigError("scanner is required")
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.NewConfigError("failed to create ZSTD encoder: " + err.Error())
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.NewConfigError("failed to create ZSTD decoder: " + err.Error())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		cfg:     cfg,
		scanner: scanner,
		encoder: encoder,
		decoder: decoder,
		logger:  logger,
	}, nil
}

// Close releases compression resources
func (s *Server) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return nil
}

// Handler returns the HTTP handler serving the check endpoints. Requests
// are routed through the protocol command table; learning is not handled
// by the scoring core, so the learn endpoints answer with 501.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		command, ok := protocol.CommandFromPath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch command {
		case protocol.Scan:
			s.handleCheck(w, r)
		case protocol.LearnSpam, protocol.LearnHam:
			http.Error(w, "learning is not implemented", http.StatusNotImplemented)
		default:
			http.NotFound(w, r)
		}
	})
}

// envelopeFromHeaders extracts SMTP envelope data from request headers
func envelopeFromHeaders(h http.Header) *filter.Envelope {
	env := &filter.Envelope{
		From:     h.Get("From"),
		IP:       h.Get("IP"),
		User:     h.Get("User"),
		Helo:     h.Get("Helo"),
		Hostname: h.Get("Hostname"),
	}
	env.Rcpt = append(env.Rcpt, h.Values("Rcpt")...)
	return env
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, errors.NewIOError(err).Error(), http.StatusBadRequest)
		return
	}

	if r.Header.Get("Content-Encoding") == "zstd" || r.Header.Get("Compression") == "zstd" {
		body, err = s.decoder.DecodeAll(body, nil)
		if err != nil {
			http.Error(w, "ZSTD decompression failed", http.StatusBadRequest)
			return
		}
	}

	started := time.Now()

	task := filter.NewTaskFromMessage(s.cfg, body)
	task.Envelope = envelopeFromHeaders(r.Header)
	defer task.Close()

	metricRes := filter.CreateMetricResult(task)

	if err := s.scanner.Scan(r.Context(), task); err != nil {
		s.logger.Error("scan failed",
			zap.String("message_id", task.MessageID),
			zap.Error(err))
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}

	task.SetStage(filter.StageIdempotent)
	action := filter.CheckActionMetric(task, metricRes)

	reply := protocol.BuildScanReply(task, metricRes, action, time.Since(started).Seconds())
	data, err := json.Marshal(reply)
	if err != nil {
		http.Error(w, errors.NewSerdeError(err).Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if acceptsZstd(r.Header) {
		data = s.encoder.EncodeAll(data, nil)
		w.Header().Set("Content-Encoding", "zstd")
		w.Header().Set("Compression", "zstd")
	}

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func acceptsZstd(h http.Header) bool {
	if h.Get("Compression") == "zstd" {
		return true
	}
	for _, v := range h.Values("Accept-Encoding") {
		for _, enc := range strings.Split(v, ",") {
			if strings.TrimSpace(enc) == "zstd" {
				return true
			}
		}
	}
	return false
}
