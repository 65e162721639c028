package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sw33tLie/roomdesk/internal/utils"
	"github.com/sw33tLie/roomdesk/pkg/cache"
	"github.com/sw33tLie/roomdesk/pkg/dashboard"
	"github.com/sw33tLie/roomdesk/pkg/query"
	"github.com/sw33tLie/roomdesk/pkg/records"
	"github.com/sw33tLie/roomdesk/pkg/report"
	"github.com/sw33tLie/roomdesk/pkg/source"
)

const defaultRoom = "nbot"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: err.Error()})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, dashboard.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, source.ErrWriteRejected):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, source.ErrBackingStoreUnavailable), errors.Is(err, cache.ErrFetchFailed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type dashboardConfig struct {
	PollingIntervalSeconds int `json:"polling_interval_seconds"`
}

type dashboardResponse struct {
	Rooms  []dashboard.Summary `json:"rooms"`
	Config dashboardConfig     `json:"config"`
}

func (s *Server) handleDashboardInit(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.Svc.InitDashboard(r.Context())
	if err != nil {
		utils.Log.Errorf("Dashboard init failed: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Rooms:  rooms,
		Config: dashboardConfig{PollingIntervalSeconds: s.PollInterval},
	})
}

type EnterRequest struct {
	Value        string `json:"value"`
	DateFilter   string `json:"date_filter"`
	StatusFilter string `json:"status_filter"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}

type enterResponse struct {
	RoomID string `json:"room_id"`
	query.Result
}

func (s *Server) handleEnterRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room_id")

	var req EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := query.ParseDate(req.DateFilter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := query.ParseStatus(req.StatusFilter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	utils.Log.Debugf("[%s] Search: %q, Date: %q, Status: %s", roomID, req.Value, req.DateFilter, status)

	res, err := s.Svc.EnterCategory(r.Context(), roomID, query.Query{
		Text:       req.Value,
		DateFilter: date,
		Status:     status,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enterResponse{RoomID: roomID, Result: res})
}

type UpdateRequest struct {
	RoomID   string `json:"room_id"`
	Field    string `json:"field"`
	NewValue string `json:"new_value"`
}

type updateResponse struct {
	Status string `json:"status"`
	RowRef string `json:"row_ref"`
	Reason string `json:"reason"`
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	rowRef := r.PathValue("row_ref")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.RoomID == "" {
		req.RoomID = defaultRoom
	}

	if err := s.Svc.UpdateField(r.Context(), req.RoomID, rowRef, req.Field, req.NewValue); err != nil {
		utils.Log.Warnf("Update of [%s] row %s failed: %v", req.RoomID, rowRef, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{Status: "ok", RowRef: rowRef, Reason: req.NewValue})
}

type recordsResponse struct {
	RoomID  string           `json:"room_id"`
	Records []records.Record `json:"records"`
}

func roomParam(r *http.Request) string {
	if id := r.URL.Query().Get("room_id"); id != "" {
		return id
	}
	return defaultRoom
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	recs, err := s.Svc.ListAllRecords(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{RoomID: roomID, Records: recs})
}

type reportResponse struct {
	RoomID  string          `json:"room_id"`
	Period  report.Period   `json:"period"`
	Buckets []report.Bucket `json:"buckets"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	recs, err := s.Svc.ListAllRecords(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{RoomID: roomID, Period: period, Buckets: report.CountByPeriod(recs, period)})
}
