package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"influence-api/internal/domain"
	apperrors "influence-api/pkg/errors"
	"influence-api/pkg/logger"
	"influence-api/pkg/redis"
)

// DashboardProvider is the analytics surface the HTTP layer consumes
type DashboardProvider interface {
	Summary(ctx context.Context, groupID string) (*domain.SummaryMetrics, error)
	UpcomingElections(ctx context.Context, groupID string, daysAhead int) ([]domain.ElectionInfluence, error)
	ElectionDetail(ctx context.Context, electionID, groupID string) (*domain.ElectionDetail, error)
	JurisdictionInfluence(ctx context.Context, groupID string) ([]domain.JurisdictionInfluence, error)
	GrowthSeries(ctx context.Context, groupID string, period domain.PeriodType) ([]domain.TimeSeriesPoint, error)
	StateDistribution(ctx context.Context, groupID string) ([]domain.StateDistribution, error)
	SupporterCounts(ctx context.Context, groupID string) (*domain.SupporterCounts, error)
	ListGroups(ctx context.Context) ([]domain.ViewpointGroup, error)
	GroupByID(ctx context.Context, id string) (*domain.ViewpointGroup, error)
}

// DashboardHandler handles the dashboard analytics HTTP requests
type DashboardHandler struct {
	dashboard DashboardProvider
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard DashboardProvider, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// DataResponse is the success envelope for every dashboard endpoint
type DataResponse struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GetSummary handles GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")

	summary, err := h.dashboard.Summary(r.Context(), groupID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compose summary")
		h.sendError(w, err, "Failed to compose summary")
		return
	}
	h.sendCachedData(w, summary, redis.TTLSummary)
}

// GetElections handles GET /api/elections
func (h *DashboardHandler) GetElections(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")

	daysAhead := 0
	if raw := r.URL.Query().Get("daysAhead"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.sendValidationError(w, "daysAhead must be a non-negative integer")
			return
		}
		daysAhead = v
	}

	elections, err := h.dashboard.UpcomingElections(r.Context(), groupID, daysAhead)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve upcoming elections")
		h.sendError(w, err, "Failed to resolve upcoming elections")
		return
	}
	h.sendCachedData(w, elections, redis.TTLElections)
}

// GetElectionDetail handles GET /api/elections/{electionId}
func (h *DashboardHandler) GetElectionDetail(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "electionId")
	groupID := r.URL.Query().Get("groupId")

	detail, err := h.dashboard.ElectionDetail(r.Context(), electionID, groupID)
	if err != nil {
		h.logger.WithError(err).WithField("election_id", electionID).Error("Failed to resolve election detail")
		h.sendError(w, err, "Failed to resolve election detail")
		return
	}
	if detail == nil {
		h.sendErrorResponse(w, http.StatusNotFound, "not_found", "Election not found")
		return
	}
	h.sendCachedData(w, detail, redis.TTLElectionDetail)
}

// GetJurisdictions handles GET /api/jurisdictions
func (h *DashboardHandler) GetJurisdictions(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")

	sortBy := r.URL.Query().Get("sortBy")
	if sortBy == "" {
		sortBy = "supporterCount"
	}
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "desc"
	}
	if order != "asc" && order != "desc" {
		h.sendValidationError(w, "order must be asc or desc")
		return
	}

	rows, err := h.dashboard.JurisdictionInfluence(r.Context(), groupID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve jurisdiction influence")
		h.sendError(w, err, "Failed to resolve jurisdiction influence")
		return
	}

	if ok := sortJurisdictions(rows, sortBy, order); !ok {
		h.sendValidationError(w, "sortBy must be one of supporterCount, supporterShare, activeRate, growth30d, name")
		return
	}
	h.sendCachedData(w, rows, redis.TTLJurisdictions)
}

// GetTimeSeries handles GET /api/time-series
func (h *DashboardHandler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")
	period, _ := domain.ParsePeriodType(r.URL.Query().Get("period"))

	points, err := h.dashboard.GrowthSeries(r.Context(), groupID, period)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build growth series")
		h.sendError(w, err, "Failed to build growth series")
		return
	}
	h.sendCachedData(w, domain.TimeSeries{Data: points, PeriodType: period}, redis.TTLTimeSeries)
}

// GetStates handles GET /api/states
func (h *DashboardHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")

	states, err := h.dashboard.StateDistribution(r.Context(), groupID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build state distribution")
		h.sendError(w, err, "Failed to build state distribution")
		return
	}
	h.sendCachedData(w, states, redis.TTLStates)
}

// GetSupporterCounts handles GET /api/supporters/counts
func (h *DashboardHandler) GetSupporterCounts(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")

	counts, err := h.dashboard.SupporterCounts(r.Context(), groupID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count supporters")
		h.sendError(w, err, "Failed to count supporters")
		return
	}
	h.sendCachedData(w, counts, redis.TTLCounts)
}

// ListGroups handles GET /api/viewpoint-groups
func (h *DashboardHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.dashboard.ListGroups(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list viewpoint groups")
		h.sendError(w, err, "Failed to list viewpoint groups")
		return
	}
	h.sendCachedData(w, groups, redis.TTLGroups)
}

// GetGroup handles GET /api/viewpoint-groups/{groupId}
func (h *DashboardHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	group, err := h.dashboard.GroupByID(r.Context(), groupID)
	if err != nil {
		h.logger.WithError(err).WithField("group_id", groupID).Error("Failed to load viewpoint group")
		h.sendError(w, err, "Failed to load viewpoint group")
		return
	}
	if group == nil {
		h.sendErrorResponse(w, http.StatusNotFound, "not_found", "Viewpoint group not found")
		return
	}
	h.sendCachedData(w, group, redis.TTLGroups)
}

// RegisterRoutes registers dashboard handler routes with the router
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.GetSummary)
	r.Get("/elections", h.GetElections)
	r.Get("/elections/{electionId}", h.GetElectionDetail)
	r.Get("/jurisdictions", h.GetJurisdictions)
	r.Get("/time-series", h.GetTimeSeries)
	r.Get("/states", h.GetStates)
	r.Get("/supporters/counts", h.GetSupporterCounts)
	r.Get("/viewpoint-groups", h.ListGroups)
	r.Get("/viewpoint-groups/{groupId}", h.GetGroup)
}

// sortJurisdictions reorders rows in place; reports false on an unknown key
func sortJurisdictions(rows []domain.JurisdictionInfluence, sortBy, order string) bool {
	var less func(i, k int) bool
	switch sortBy {
	case "supporterCount":
		less = func(i, k int) bool { return rows[i].SupporterCount < rows[k].SupporterCount }
	case "supporterShare":
		less = func(i, k int) bool { return deref(rows[i].SupporterShare) < deref(rows[k].SupporterShare) }
	case "activeRate":
		less = func(i, k int) bool { return rows[i].ActiveRate < rows[k].ActiveRate }
	case "growth30d":
		less = func(i, k int) bool { return rows[i].Growth30d < rows[k].Growth30d }
	case "name":
		less = func(i, k int) bool { return rows[i].Name < rows[k].Name }
	default:
		return false
	}
	if order == "desc" {
		sort.SliceStable(rows, func(i, k int) bool { return less(k, i) })
	} else {
		sort.SliceStable(rows, less)
	}
	return true
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// sendCachedData sends the success envelope with a public max-age matching
// the surface's cache TTL
func (h *DashboardHandler) sendCachedData(w http.ResponseWriter, data interface{}, ttl time.Duration) {
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(ttl.Seconds())))
	h.sendData(w, data)
}

func (h *DashboardHandler) sendData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(DataResponse{Success: true, Data: data}); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// sendError maps a service error to its HTTP status
func (h *DashboardHandler) sendError(w http.ResponseWriter, err error, message string) {
	status := apperrors.StatusFor(err)
	errType := "internal_error"
	if status == http.StatusNotFound {
		errType = "not_found"
	} else if status == http.StatusBadGateway {
		errType = "external_error"
	}
	h.sendErrorResponse(w, status, errType, message)
}

func (h *DashboardHandler) sendValidationError(w http.ResponseWriter, message string) {
	h.sendErrorResponse(w, http.StatusBadRequest, "validation_error", message)
}

// sendErrorResponse sends a standardized error response
func (h *DashboardHandler) sendErrorResponse(w http.ResponseWriter, statusCode int, errorType, message string) {
	response := DataResponse{
		Success: false,
		Error: &ErrorResponse{
			Type:    errorType,
			Message: message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}
