package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tracking-dashboard/config"
	"tracking-dashboard/filter"
	"tracking-dashboard/redmine"
	"tracking-dashboard/report"
	"tracking-dashboard/schedule"
	"tracking-dashboard/store"
)

// Server handles HTTP requests
type Server struct {
	Router *chi.Mux
	config config.Config
	store  *store.Store
	logger *zap.Logger
}

// NewServer creates a new web server
func NewServer(cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: cfg,
		store:  store.New(cfg.StorePath, cfg.CacheTTL()),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute)) // 2 minute timeout for API requests

	// Health check endpoint
	r.Get("/health", s.healthCheck)

	// API endpoints
	r.Route("/api", func(r chi.Router) {
		r.Get("/issues", s.getIssues)
		r.Get("/charts", s.getCharts)
		r.Get("/programs", s.getPrograms)
		r.Post("/programs/import", s.importPrograms)
		r.Post("/programs/reconcile", s.reconcilePrograms)
	})

	s.Router = r
}

// healthCheck returns server health status
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "tracking-dashboard-api",
	})
}

// loadIssues serves the issue cache when it is still fresh and refetches
// otherwise. Returns the tagged per-project results alongside the merged
// issue list; results is nil when the cache was used.
func (s *Server) loadIssues(r *http.Request) ([]redmine.Issue, []redmine.ProjectResult) {
	refresh := r.URL.Query().Get("refresh") == "true"
	if !refresh {
		issues, err := s.store.LoadIssues()
		if err == nil {
			return issues, nil
		}
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrExpired) {
			s.logger.Error("issue cache unreadable, refetching", zap.Error(err))
		}
	}

	results := redmine.FetchAll(r.Context(), s.config.Projects, redmine.IssueFilter{}, s.logger)
	issues := redmine.CollectIssues(results)
	if err := s.store.SaveIssues(issues); err != nil {
		s.logger.Error("saving issue cache", zap.Error(err))
	}
	return issues, results
}

// getIssues fetches, filters and sorts issues across all configured projects
func (s *Server) getIssues(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	issues, results := s.loadIssues(r)

	q := r.URL.Query()
	spec := filter.Spec{
		STT:                  q.Get("stt"),
		TicketNo:             q.Get("ticket_no"),
		GeneratedPGID:        q.Get("generated_pg_id"),
		ProjectName:          q.Get("project_name"),
		Author:               q.Get("author"),
		DesiredDeliveryDate:  q.Get("desired_delivery_date"),
		ResponseDeliveryDate: q.Get("response_delivery_date"),
		FJNErrorType:         q.Get("fjn_error_type"),
		UCDErrorType:         q.Get("ucd_error_type"),
		UnitID:               q.Get("unit_id"),
		EditPGID:             q.Get("edit_pg_id"),
	}
	sortBy := filter.Sort{
		Key:        q.Get("sort"),
		Descending: q.Get("order") == "desc",
	}
	filtered := filter.Apply(issues, spec, sortBy)

	failed := []string{}
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res.Project.ProjectID)
		}
	}

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"issues":          filtered,
			"failed_projects": failed,
		},
		"stats": map[string]int{
			"fetched":  len(issues),
			"returned": len(filtered),
		},
		"timestamp": time.Now().UTC(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// getCharts returns the aggregate counts behind the dashboard charts
func (s *Server) getCharts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	issues, _ := s.loadIssues(r)

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"by_project":       report.ProjectCounts(issues),
			"by_priority":      report.PriorityCounts(issues),
			"by_due_date":      report.DueDateCounts(issues, 7),
			"by_project_error": report.ProjectErrorTypeCounts(issues),
		},
		"stats":     map[string]int{"issues": len(issues)},
		"timestamp": time.Now().UTC(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// getPrograms returns the persisted schedule snapshot
func (s *Server) getPrograms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	programs, err := s.store.LoadPrograms()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("loading schedule snapshot", zap.Error(err))
		http.Error(w, "Error loading schedule snapshot", http.StatusInternalServerError)
		return
	}
	if programs == nil {
		programs = []schedule.Program{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"data":      programs,
		"stats":     map[string]int{"programs": len(programs)},
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) findProject(projectID string) (config.Project, bool) {
	for _, p := range s.config.Projects {
		if p.ProjectID == projectID {
			return p, true
		}
	}
	return config.Project{}, false
}

// importPrograms imports the project's schedule workbook and persists
// the fresh programs
func (s *Server) importPrograms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	project, ok := s.findProject(request.ProjectID)
	if !ok {
		http.Error(w, "Unknown project", http.StatusNotFound)
		return
	}

	programs, err := schedule.ImportSchedule(project.ScheduleFile(), s.logger)
	if err != nil {
		s.logger.Error("schedule import failed",
			zap.String("project", project.ProjectID),
			zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, schedule.ErrInvalidFormat) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	if err := s.store.SavePrograms(programs); err != nil {
		s.logger.Error("saving schedule snapshot", zap.Error(err))
		http.Error(w, "Error saving schedule snapshot", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"stats":     map[string]int{"programs": len(programs)},
		"timestamp": time.Now().UTC(),
	})
}

// reconcilePrograms joins fresh tracking issues onto the persisted
// programs and persists the result
func (s *Server) reconcilePrograms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	project, ok := s.findProject(request.ProjectID)
	if !ok {
		http.Error(w, "Unknown project", http.StatusNotFound)
		return
	}

	programs, err := s.store.LoadPrograms()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "No schedule imported yet", http.StatusConflict)
			return
		}
		s.logger.Error("loading schedule snapshot", zap.Error(err))
		http.Error(w, "Error loading schedule snapshot", http.StatusInternalServerError)
		return
	}

	client := redmine.NewClient(project.TrackingURL, project.TrackingAPIKey, s.logger)
	reconciler := schedule.NewReconciler(client, schedule.Options{
		BugTracker:       s.config.BugTracker,
		QATracker:        s.config.QATracker,
		ResolvedStatuses: s.config.ResolvedStatuses,
		ExactMatch:       s.config.ExactModuleMatch,
	}, s.logger)

	updated, err := reconciler.Update(r.Context(), programs, project)
	if err != nil {
		// Previous state is preserved; surface the failure so the UI can
		// warn instead of showing stale data as fresh.
		http.Error(w, "Tracking fetch failed, schedule unchanged", http.StatusBadGateway)
		return
	}
	if err := s.store.SavePrograms(updated); err != nil {
		s.logger.Error("saving schedule snapshot", zap.Error(err))
		http.Error(w, "Error saving schedule snapshot", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"data":      updated,
		"stats":     map[string]int{"programs": len(updated)},
		"timestamp": time.Now().UTC(),
	})
}

// Start starts the web server
func (s *Server) Start(port string) {
	s.logger.Info("🚀 starting tracking dashboard API",
		zap.String("port", port))

	if err := http.ListenAndServe(":"+port, s.Router); err != nil {
		s.logger.Fatal("❌ failed to start server", zap.Error(err))
	}
}
