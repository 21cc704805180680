package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ccsd/internal/daemon"
	"github.com/nerrad567/ccsd/internal/history"
	"github.com/nerrad567/ccsd/internal/infrastructure/logging"
)

// maxHistoryLimit caps ?limit on the history endpoint.
const maxHistoryLimit = 500

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, s.metricsCfg.Path, s.metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Get("/history", s.handleListHistory)
		r.Get("/history/{id}", s.handleGetHistory)

		r.Post("/reload", s.handleReload)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Node             string     `json:"node"`
	Installed        bool       `json:"installed"`
	Cluster          string     `json:"cluster,omitempty"`
	ConfigVersion    int        `json:"config_version"`
	Checksum         string     `json:"checksum,omitempty"`
	SourcePath       string     `json:"source_path,omitempty"`
	LoadedAt         *time.Time `json:"loaded_at,omitempty"`
	Quorate          bool       `json:"quorate"`
	UpdateRequired   bool       `json:"update_required"`
	AnnouncedVersion int        `json:"announced_version"`
	LogFacility      string     `json:"log_facility,omitempty"`
	LogPriority      string     `json:"log_priority,omitempty"`
}

// handleStatus reports the installed master and the daemon flags.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	doc, snap := s.state.Master()
	required, announced := s.state.UpdateRequired()

	resp := StatusResponse{
		Node:             s.nodeName,
		Installed:        doc != nil,
		Quorate:          s.state.Quorate(),
		UpdateRequired:   required,
		AnnouncedVersion: announced,
	}
	if doc != nil {
		loadedAt := snap.LoadedAt
		resp.Cluster = snap.ClusterName
		resp.ConfigVersion = snap.Version
		resp.Checksum = snap.Checksum
		resp.SourcePath = snap.SourcePath
		resp.LoadedAt = &loadedAt
	}
	if s.logSystem != nil {
		resp.LogFacility = logging.FacilityName(s.logSystem.Facility(logging.DefaultSubsystem))
		resp.LogPriority = logging.PriorityName(s.logSystem.Priority())
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleListHistory returns recent loads, newest first.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "history is not recorded")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeBadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing config history failed", "error", err)
		writeInternalError(w, "failed to list history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleGetHistory returns a single load by ID.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "history is not recorded")
		return
	}

	entry, err := s.history.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, history.ErrEntryNotFound) {
			writeNotFound(w, "history entry not found")
			return
		}
		s.logger.Error("reading config history failed", "error", err)
		writeInternalError(w, "failed to read history")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// ReloadResponse is the body of a successful POST /reload.
type ReloadResponse struct {
	Cluster       string `json:"cluster"`
	ConfigVersion int    `json:"config_version"`
	Checksum      string `json:"checksum"`
	Reloaded      bool   `json:"reloaded"`
}

// handleReload loads cluster.conf from disk. A stale document is a conflict;
// any other load failure is reported as a validation error.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeUnavailable(w, "reload is not available")
		return
	}

	result, err := s.reloader.Reload(r.Context())
	if err != nil {
		if errors.Is(err, daemon.ErrStaleVersion) {
			writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ReloadResponse{
		Cluster:       result.Snapshot.ClusterName,
		ConfigVersion: result.Snapshot.Version,
		Checksum:      result.Snapshot.Checksum,
		Reloaded:      result.Reloaded,
	})
}
