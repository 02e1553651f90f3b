package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"samarkand-dashboard/internal/chat"
	"samarkand-dashboard/internal/common/database"
	apperrors "samarkand-dashboard/internal/common/errors"
	"samarkand-dashboard/internal/dataset"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		s.errors.Write(w, r, apperrors.NewInternalError(err), "error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// routeKind maps a "{key}-data" path segment to its dataset.
func routeKind(slug string) (dataset.Kind, bool) {
	kind, err := dataset.ParseKind(slug)
	if err != nil || slug != kind.Slug() {
		return "", false
	}
	return kind, true
}

// handleDataset serves raw rows, or the dashboard payload when any filter
// parameter is present.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	kind, ok := routeKind(slug)
	if !ok {
		s.errors.Write(w, r, apperrors.NewInvalidDatasetError(slug), "error")
		return
	}

	filters, filtered, err := parseFilters(kind, r)
	if err != nil {
		s.errors.Write(w, r, err, "error")
		return
	}

	table, err := s.store.LoadKind(r.Context(), kind)
	if err != nil {
		s.errors.Write(w, r, apperrors.NewDatasetNotFoundError(kind.DisplayName(), err), "error")
		return
	}

	if !filtered {
		if kind == dataset.School {
			table = dataset.FillMissing(table, 0.0)
		}
		apperrors.WriteJSON(w, http.StatusOK, table)
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, dataset.BuildDashboard(kind, dataset.Query(table, filters...)))
}

// parseFilters accepts only region, district and the dataset's entity column.
// filtered reports whether any of them was supplied, even empty.
func parseFilters(kind dataset.Kind, r *http.Request) (filters []dataset.Filter, filtered bool, err error) {
	query := r.URL.Query()
	allowed := kind.FilterColumns()

	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !contains(allowed, name) {
			return nil, false, apperrors.NewInvalidFilterError(name)
		}
	}

	for _, column := range allowed {
		if _, ok := query[column]; !ok {
			continue
		}
		filtered = true
		filters = append(filters, dataset.Filter{Column: column, Value: strings.TrimSpace(query.Get(column))})
	}
	return filters, filtered, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	kind, ok := routeKind(slug)
	if !ok {
		s.errors.Write(w, r, apperrors.NewInvalidDatasetError(slug), "error")
		return
	}

	table, err := s.store.LoadKind(r.Context(), kind)
	if err != nil {
		s.errors.Write(w, r, apperrors.NewDatasetNotFoundError(kind.DisplayName(), err), "error")
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, dataset.FilterOptions(table))
}

func (s *Server) handleHospitalInsights(w http.ResponseWriter, r *http.Request) {
	table, err := s.store.LoadKind(r.Context(), dataset.Hospital)
	if err != nil {
		s.errors.Write(w, r, apperrors.NewDatasetNotFoundError(dataset.Hospital.DisplayName(), err), "error")
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, dataset.HospitalInsights(table))
}

type chatRoute struct {
	replyKey string
	errorKey string
	// blankMessage overrides the default "Message is required" text.
	blankMessage string
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chatHandler(route chatRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.errors.Write(w, r, apperrors.NewRequestTooLargeError(tooLarge.Limit), route.errorKey)
				return
			}
			s.errors.Write(w, r, apperrors.NewInvalidRequestBodyError(err.Error()), route.errorKey)
			return
		}

		if result := s.chatSchema.ValidateJSON(body); !result.Valid {
			s.errors.Write(w, r, apperrors.NewInvalidRequestBodyError(result.Summary()), route.errorKey)
			return
		}

		var req chatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.errors.Write(w, r, apperrors.NewInvalidRequestBodyError(err.Error()), route.errorKey)
			return
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			blank := apperrors.NewMessageRequiredError()
			if route.blankMessage != "" {
				blank.Message = route.blankMessage
			}
			s.errors.Write(w, r, blank, route.errorKey)
			return
		}

		snap, err := s.contexts.Get(r.Context())
		if err != nil {
			s.errors.Write(w, r, apperrors.NewContextUnavailableError(err), route.errorKey)
			return
		}

		result := s.responder.Respond(r.Context(), message, snap.Text)
		if result.Outcome == chat.OutcomeFallback {
			s.logger.Info("chat answered from fallback", map[string]interface{}{
				"requestId": RequestIDFrom(r.Context()),
				"cause":     result.Cause.Error(),
			})
		}

		apperrors.WriteJSON(w, http.StatusOK, map[string]string{route.replyKey: result.Reply})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.info.Name,
		"version": s.info.Version,
	})
}

// handleReady reports ready once every external connection answers and
// every dataset can be loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if failed := database.CheckAll(r.Context(), s.checks); len(failed) > 0 {
		apperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":       "not ready",
			"dependencies": failed,
		})
		return
	}
	if _, err := s.store.LoadAll(r.Context()); err != nil {
		apperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
