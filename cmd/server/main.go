// Package main provides the HTTP API server for the customer retention
// engine. The presentation layer (forms, tables, upload widgets) lives in a
// separate frontend; this server exposes the retention pipeline with
// structured inputs and outputs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"

	"customer-retention-engine/internal/config"
	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/catalog"
	"customer-retention-engine/internal/services/composer"
	"customer-retention-engine/internal/services/llm"
	"customer-retention-engine/internal/services/mail"
	"customer-retention-engine/internal/services/matcher"
	"customer-retention-engine/internal/services/notifier"
	"customer-retention-engine/internal/utils"
	"customer-retention-engine/internal/workflow"
)

// Server holds all dependencies
type Server struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	workflow *workflow.Workflow
	runner   *workflow.Runner

	mu      sync.Mutex
	single  *models.WorkflowResult
	session *workflow.Session
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ProcessRequest is the single-record processing input.
type ProcessRequest struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	Reason        string `json:"cancellation_reason"`
	DateCancelled string `json:"date_cancelled"`
}

// BatchSummary reports aggregate counts for a batch session.
type BatchSummary struct {
	SessionID string                   `json:"session_id"`
	Total     int                      `json:"total"`
	Matched   int                      `json:"matched"`
	Unmatched int                      `json:"unmatched"`
	Results   []*models.WorkflowResult `json:"results,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel, cfg.Stage); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	server, err := newServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/offers", server.offersHandler)
	mux.HandleFunc("/api/process", server.processHandler)
	mux.HandleFunc("/api/process/send", server.processSendHandler)
	mux.HandleFunc("/api/batch/upload", server.batchUploadHandler)
	mux.HandleFunc("/api/batch", server.batchHandler)
	mux.HandleFunc("/api/batch/send-emails", server.batchSendHandler)
	mux.HandleFunc("/api/batch/notify-team", server.batchNotifyHandler)
	mux.HandleFunc("/api/batch/export", server.batchExportHandler)
	mux.HandleFunc("/api/reset", server.resetHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)

	log.Printf("Customer Retention Engine API Server")
	log.Printf("Listening on http://localhost:%s", cfg.Port)

	if err := http.ListenAndServe(addr, c.Handler(mux)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newServer wires the pipeline: catalog, matcher, composer, dispatcher and
// notifier. Without an API key the deterministic strategies are used.
func newServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	cat := catalog.Default()
	client := llm.NewClient(cfg.OpenAIAPIKey)

	var matchStrategy matcher.Strategy = matcher.NewKeywordStrategy()
	var generator composer.Generator = composer.NewTemplateGenerator()
	if client.Configured() {
		matchStrategy = matcher.NewLLMStrategy(client)
		generator = composer.NewLLMGenerator(client)
	} else {
		log.Printf("Warning: OPENAI_API_KEY not set, using deterministic keyword matching")
	}

	var dispatcher mail.Dispatcher
	if cfg.MailProvider == "ses" {
		sesDispatcher, err := mail.NewSESDispatcher(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES dispatcher: %w", err)
		}
		dispatcher = sesDispatcher
	} else {
		dispatcher = mail.NewSMTPDispatcher(cfg)
	}

	wf := workflow.New(
		matcher.New(cat, matchStrategy),
		composer.New(cat, generator),
		dispatcher,
		notifier.New(cfg.TeamEmail, dispatcher),
	)

	return &Server{
		cfg:      cfg,
		catalog:  cat,
		workflow: wf,
		runner:   workflow.NewRunner(wf),
	}, nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Customer Retention Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"offers":    len(s.catalog.Offers()),
		},
	})
}

func (s *Server) offersHandler(w http.ResponseWriter, r *http.Request) {
	offers := s.catalog.Offers()
	summaries := make([]models.OfferSummary, len(offers))
	for i := range offers {
		summaries[i] = offers[i].ToSummary()
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: summaries})
}

// processHandler runs the full workflow for one record. Re-submitting the
// same customer starts over: the stored result is replaced and its send
// flags reset.
func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record := models.NewRecord(req.CustomerID, req.CustomerEmail, req.Reason, req.DateCancelled, 0)
	if err := models.ValidateRecord(record); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.workflow.Run(r.Context(), record)

	s.mu.Lock()
	s.single = result
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// processSendHandler is the explicit send action for the last processed
// single record. Composing never auto-sends.
func (s *Server) processSendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	result := s.single
	s.mu.Unlock()

	if result == nil {
		writeError(w, http.StatusConflict, "no processed record; call /api/process first")
		return
	}

	res := s.workflow.SendEmail(r.Context(), result)
	writeJSON(w, http.StatusOK, Response{
		Success: res.Success,
		Message: res.Message,
		Data:    result,
	})
}

// batchUploadHandler accepts a CSV (multipart "file" field or raw body),
// parses it and processes all records into a new session.
func (s *Server) batchUploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	content, err := readCSVBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	parser := utils.NewCSVParser()
	records, parseErrors := parser.ParseRecords(content)
	if len(records) == 0 {
		errMsgs := make([]string, 0, len(parseErrors))
		for _, e := range parseErrors {
			errMsgs = append(errMsgs, e.Error())
		}
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "no valid records found in CSV",
			Data:    errMsgs,
		})
		return
	}

	session := s.runner.Run(r.Context(), records)

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	total, matched, unmatched := session.Counts()
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("processed %d cancellations (%d parse errors)", total, len(parseErrors)),
		Data: BatchSummary{
			SessionID: session.ID,
			Total:     total,
			Matched:   matched,
			Unmatched: unmatched,
		},
	})
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w)
	if !ok {
		return
	}

	total, matched, unmatched := session.Counts()
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: BatchSummary{
			SessionID: session.ID,
			Total:     total,
			Matched:   matched,
			Unmatched: unmatched,
			Results:   session.Results(),
		},
	})
}

func (s *Server) batchSendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session, ok := s.currentSession(w)
	if !ok {
		return
	}

	sent, failed := s.runner.SendAllMatched(r.Context(), session)
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("sent %d emails, %d failed", sent, failed),
		Data:    map[string]int{"sent": sent, "failed": failed},
	})
}

func (s *Server) batchNotifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session, ok := s.currentSession(w)
	if !ok {
		return
	}

	sent, failed := s.runner.NotifyAllUnmatched(r.Context(), session)
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("sent %d team notifications, %d failed", sent, failed),
		Data:    map[string]int{"sent": sent, "failed": failed},
	})
}

func (s *Server) batchExportHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w)
	if !ok {
		return
	}

	csvContent, err := workflow.ExportCSV(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed: "+err.Error())
		return
	}

	filename := fmt.Sprintf("retention_results_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = io.WriteString(w, csvContent)
}

// resetHandler discards the current single result and batch session.
func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	s.single = nil
	s.session = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "session cleared"})
}

func (s *Server) currentSession(w http.ResponseWriter) (*workflow.Session, bool) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		writeError(w, http.StatusConflict, "no batch session; upload a CSV first")
		return nil, false
	}
	return session, true
}

// readCSVBody extracts CSV content from a multipart "file" field or, for
// plain uploads, from the raw request body.
func readCSVBody(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	return string(data), nil
}

func writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}
