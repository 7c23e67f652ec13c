/*
handlers.go - HTTP API handlers for the team rating engine

PURPOSE:
  Exposes the compensation splitter, the attendance aggregator and the
  rating engine via REST API. Handles HTTP request/response and JSON
  serialization, and delegates to the domain packages.

ENDPOINTS:
  Members:
    GET    /api/members                   List members
    POST   /api/members                   Create member
    GET    /api/members/{id}              Get member
    DELETE /api/members/{id}              Delete member and its snapshot
    GET    /api/members/{id}/attendance   Day counts and hours (?from=&to=)
    GET    /api/members/{id}/hours        Hours per day (?from=&to=)
    GET    /api/members/{id}/rating       Recompute and return breakdown (?as_of=)
    GET    /api/members/{id}/snapshot     Stored rating data
    PUT    /api/members/{id}/counters     Replace manual counters, then recompute

  Records (records.go):
    /api/earnings, /api/day-statuses, /api/work-slots  CRUD
    POST   /api/earnings/split            Split preview, nothing stored

  Rating:
    POST   /api/rating/compute            Score ad-hoc inputs
    GET    /api/rating/calibration        Active calibration table
    GET    /api/rating/leaderboard        Stored snapshots by rating

  Rollups:
    GET    /api/rollup/categories         Category breakdown (?from=&to=)
    GET    /api/rollup/contributors       Contributor ranking (?from=&to=&limit=)

  Admin:
    POST   /api/admin/recompute           Recompute every member (?as_of=)

  Scenarios (scenarios.go):
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (store, pipeline, rollups)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate record
  - 500: Internal errors (logged)

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - records.go: Earning, day status and work slot handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/factory"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/dexim234/apevaultteams/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DefaultMaxWindowDays is the longest query window accepted by default.
const DefaultMaxWindowDays = 366

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       store.Store
	Pipeline    *rating.Pipeline
	Calibration factory.Calibration
	Logger      logrus.FieldLogger

	// Now is the clock used for "today"; tests pin it.
	Now func() time.Time

	// MaxWindowDays bounds ?from=&to= windows, both ends included.
	MaxWindowDays int

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires a handler and its recompute pipeline over st.
func NewHandler(st store.Store, cal factory.Calibration, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	pipeline := rating.NewPipeline(st, st, st, st, logger)
	cal.Apply(pipeline)
	return &Handler{
		Store:         st,
		Pipeline:      pipeline,
		Calibration:   cal,
		Logger:        logger,
		Now:           time.Now,
		MaxWindowDays: DefaultMaxWindowDays,
	}
}

func (h *Handler) today() generic.TimePoint {
	if h.Now != nil {
		return generic.FromTime(h.Now())
	}
	return generic.Today()
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// ListMembers returns all members.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.ListMembers(r.Context())
	if err != nil {
		h.handleError(w, "Failed to list members", err)
		return
	}

	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMember adds a member. A missing ID is generated.
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	m := generic.Member{
		ID:        generic.MemberID(req.ID),
		Name:      req.Name,
		Role:      req.Role,
		CreatedAt: h.today(),
	}
	if m.ID == "" {
		m.ID = generic.MemberID(uuid.NewString())
	}
	if req.JoinedAt != "" {
		joined, err := parseRecordDate("joined_at", req.JoinedAt)
		if err != nil {
			h.handleError(w, "Invalid joined_at", err)
			return
		}
		m.JoinedAt = joined
	}

	ctx := r.Context()
	if _, err := h.Store.GetMember(ctx, m.ID); err == nil {
		h.handleError(w, "Member already exists", &generic.RecordError{Kind: "member", ID: string(m.ID), Err: generic.ErrDuplicateRecord})
		return
	} else if !generic.IsNotFound(err) {
		h.handleError(w, "Failed to create member", err)
		return
	}

	if err := h.Store.SaveMember(ctx, m); err != nil {
		h.handleError(w, "Failed to create member", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberDTO(m))
}

// GetMember returns one member.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.Store.GetMember(r.Context(), memberParam(r))
	if err != nil {
		h.handleError(w, "Failed to get member", err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(*m))
}

// DeleteMember removes a member. Their records stay; rollups simply stop
// listing them in the ranking.
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteMember(r.Context(), memberParam(r)); err != nil {
		h.handleError(w, "Failed to delete member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetAttendance returns a member's day counts per status type and hours
// worked. The window defaults to the current week.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := memberParam(r)
	if _, err := h.Store.GetMember(ctx, id); err != nil {
		h.handleError(w, "Failed to get member", err)
		return
	}

	window, err := h.windowOrWeek(r)
	if err != nil {
		h.handleError(w, "Invalid window", err)
		return
	}

	statuses, err := h.Store.DayStatuses(ctx, id)
	if err != nil {
		h.handleError(w, "Failed to load day statuses", err)
		return
	}
	slots, err := h.Store.WorkSlots(ctx, id)
	if err != nil {
		h.handleError(w, "Failed to load work slots", err)
		return
	}

	counts := attendance.CountByType(statuses, id, window)
	days := make(map[string]int, len(attendance.StatusTypes))
	for _, t := range attendance.StatusTypes {
		days[string(t)] = counts.Days(t)
	}

	writeJSON(w, http.StatusOK, AttendanceDTO{
		UserID: string(id),
		From:   window.Start.String(),
		To:     window.End.String(),
		Days:   days,
		Total:  counts.Total(),
		Hours:  attendance.HoursInPeriod(slots, id, window).Display(),
	})
}

// GetHours returns hours worked per day in the window (default current week).
// Days without slots are reported as zero.
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := memberParam(r)
	if _, err := h.Store.GetMember(ctx, id); err != nil {
		h.handleError(w, "Failed to get member", err)
		return
	}

	window, err := h.windowOrWeek(r)
	if err != nil {
		h.handleError(w, "Invalid window", err)
		return
	}

	slots, err := h.Store.WorkSlots(ctx, id)
	if err != nil {
		h.handleError(w, "Failed to load work slots", err)
		return
	}

	out := make(map[string]string, window.NumDays())
	for _, d := range window.Days() {
		out[d.String()] = generic.ZeroAmount(generic.UnitHours).Display()
	}
	for d, hours := range attendance.HoursByDay(slots, id, window) {
		out[d.String()] = hours.Display()
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// RATING HANDLERS
// =============================================================================

// GetMemberRating recomputes a member's snapshot and returns the breakdown.
func (h *Handler) GetMemberRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := memberParam(r)
	if _, err := h.Store.GetMember(ctx, id); err != nil {
		h.handleError(w, "Failed to get member", err)
		return
	}

	asOf, err := h.asOfParam(r)
	if err != nil {
		h.handleError(w, "Invalid as_of", err)
		return
	}

	outcome, err := h.Pipeline.Recompute(ctx, id, asOf)
	if err != nil {
		h.handleError(w, "Failed to compute rating", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecomputeDTO(asOf, outcome))
}

// GetSnapshot returns the stored rating data without recomputing.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := memberParam(r)
	snap, err := h.Store.Snapshot(r.Context(), id)
	if err != nil {
		h.handleError(w, "Failed to get snapshot", err)
		return
	}
	if snap == nil {
		h.handleError(w, "No rating yet", generic.NotFound("snapshot", string(id)))
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(*snap))
}

// UpdateCounters replaces a member's manual counters and recomputes.
func (h *Handler) UpdateCounters(w http.ResponseWriter, r *http.Request) {
	var req CountersDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Messages < 0 || req.Initiatives < 0 || req.Signals < 0 || req.ProfitableSignals < 0 || req.Referrals < 0 {
		writeError(w, http.StatusBadRequest, "counters must not be negative", nil)
		return
	}

	ctx := r.Context()
	id := memberParam(r)
	if _, err := h.Store.GetMember(ctx, id); err != nil {
		h.handleError(w, "Failed to get member", err)
		return
	}

	if err := h.Store.SaveCounters(ctx, id, req.toCounters()); err != nil {
		h.handleError(w, "Failed to save counters", err)
		return
	}

	asOf := h.today()
	outcome, err := h.Pipeline.Recompute(ctx, id, asOf)
	if err != nil {
		h.handleError(w, "Failed to compute rating", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecomputeDTO(asOf, outcome))
}

// ComputeRating scores ad-hoc inputs against the active calibration.
// Nothing is read or stored.
func (h *Handler) ComputeRating(w http.ResponseWriter, r *http.Request) {
	var req ComputeRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result := rating.Compute(rating.Inputs{
		Counters:           req.Counters.toCounters(),
		WeeklyHoursWorked:  req.WeeklyHours,
		WeeklyNetEarnings:  req.WeeklyNetEarnings,
		WeeklyDaysOff:      req.WeeklyDaysOff,
		WeeklySickDays:     req.WeeklySickDays,
		VacationDaysLast90: req.VacationDaysLast90,
	}, h.Pipeline.Config)
	writeJSON(w, http.StatusOK, toRatingResultDTO(result))
}

// GetCalibration returns the active calibration table.
func (h *Handler) GetCalibration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.NewCalibrationFactory().ToJSON(h.Calibration))
}

// GetLeaderboard lists stored snapshots, highest rating first.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Store.ListSnapshots(r.Context())
	if err != nil {
		h.handleError(w, "Failed to list snapshots", err)
		return
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Rating.GreaterThan(snaps[j].Rating)
	})

	dtos := make([]SnapshotDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = toSnapshotDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ROLLUP HANDLERS
// =============================================================================

// GetCategoryRollup returns one row per earning category.
func (h *Handler) GetCategoryRollup(w http.ResponseWriter, r *http.Request) {
	window, err := h.windowParam(r)
	if err != nil {
		h.handleError(w, "Invalid window", err)
		return
	}

	records, err := h.Store.Earnings(r.Context(), windowQuery(window))
	if err != nil {
		h.handleError(w, "Failed to load earnings", err)
		return
	}

	rows := compensation.CategoryBreakdown(records, window, h.Pipeline.Split)
	items := make([]CategoryRollupDTO, len(rows))
	for i, row := range rows {
		items[i] = CategoryRollupDTO{
			Category:        string(row.Category),
			Gross:           row.Gross.Display(),
			Pool:            row.Pool.Display(),
			Net:             row.Net.Display(),
			Count:           row.Count,
			TopParticipants: toContributorDTOs(row.TopParticipants, false),
		}
	}
	writeJSON(w, http.StatusOK, rollupResponse(window, items))
}

// GetContributorRanking ranks every member by net share.
func (h *Handler) GetContributorRanking(w http.ResponseWriter, r *http.Request) {
	window, err := h.windowParam(r)
	if err != nil {
		h.handleError(w, "Invalid window", err)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
	}

	ctx := r.Context()
	members, err := h.Store.ListMembers(ctx)
	if err != nil {
		h.handleError(w, "Failed to list members", err)
		return
	}
	records, err := h.Store.Earnings(ctx, windowQuery(window))
	if err != nil {
		h.handleError(w, "Failed to load earnings", err)
		return
	}

	ranking := compensation.ContributorRanking(memberIDsOf(members), records, window, h.Pipeline.Split)
	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	writeJSON(w, http.StatusOK, rollupResponse(window, toContributorDTOs(ranking, true)))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RecomputeAll recomputes every member's snapshot.
func (h *Handler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		h.handleError(w, "Invalid as_of", err)
		return
	}

	resp, err := h.recomputeAll(r.Context(), asOf)
	if err != nil {
		h.handleError(w, "Failed to recompute", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recomputeAll(ctx context.Context, asOf generic.TimePoint) (RecomputeAllResponse, error) {
	members, err := h.Store.ListMembers(ctx)
	if err != nil {
		return RecomputeAllResponse{}, err
	}

	ids := memberIDsOf(members)
	outcomes, err := h.Pipeline.RecomputeAll(ctx, ids, asOf)
	resp := RecomputeAllResponse{
		AsOf:       asOf.String(),
		Recomputed: len(outcomes),
		Failed:     len(ids) - len(outcomes),
	}
	if err != nil {
		resp.Errors = []string{err.Error()}
	}
	return resp, nil
}

// recomputeMembers refreshes the snapshots a write touched. Failures are
// logged, not returned: the write itself already succeeded.
func (h *Handler) recomputeMembers(ctx context.Context, ids ...generic.MemberID) {
	seen := make(map[generic.MemberID]bool, len(ids))
	asOf := h.today()
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := h.Store.GetMember(ctx, id); err != nil {
			continue
		}
		if _, err := h.Pipeline.Recompute(ctx, id, asOf); err != nil {
			h.Logger.WithError(err).WithField("member", id).Warn("recompute after write failed")
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// handleError maps err onto a status code. Unexpected errors are logged.
func (h *Handler) handleError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrDuplicateRecord):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func memberParam(r *http.Request) generic.MemberID {
	return generic.MemberID(chi.URLParam(r, "id"))
}

func recordParam(r *http.Request) generic.RecordID {
	return generic.RecordID(chi.URLParam(r, "id"))
}

func parseDateParam(name, value string) (generic.TimePoint, error) {
	d, err := generic.ParseDate(value)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("%w: %s %q (use YYYY-MM-DD)", generic.ErrInvalidPeriod, name, value)
	}
	return d, nil
}

func parseRecordDate(name, value string) (generic.TimePoint, error) {
	if value == "" {
		return generic.TimePoint{}, fmt.Errorf("%w: %s is required", generic.ErrInvalidInput, name)
	}
	d, err := generic.ParseDate(value)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("%w: %s %q (use YYYY-MM-DD)", generic.ErrInvalidInput, name, value)
	}
	return d, nil
}

// windowParam reads ?from=&to=. Both absent means all time. A window
// longer than MaxWindowDays is refused.
func (h *Handler) windowParam(r *http.Request) (*generic.Period, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to must be given together", generic.ErrInvalidPeriod)
	}
	start, err := parseDateParam("from", from)
	if err != nil {
		return nil, err
	}
	end, err := parseDateParam("to", to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: to %s is before from %s", generic.ErrInvalidPeriod, end, start)
	}
	p := generic.NewPeriod(start, end)
	if h.MaxWindowDays > 0 && p.NumDays() > h.MaxWindowDays {
		return nil, fmt.Errorf("%w: window of %d days exceeds %d", generic.ErrInvalidPeriod, p.NumDays(), h.MaxWindowDays)
	}
	return &p, nil
}

// windowOrWeek is windowParam defaulting to the current week.
func (h *Handler) windowOrWeek(r *http.Request) (generic.Period, error) {
	window, err := h.windowParam(r)
	if err != nil {
		return generic.Period{}, err
	}
	if window == nil {
		return h.Pipeline.WindowsAt(h.today()).Week, nil
	}
	return *window, nil
}

func (h *Handler) asOfParam(r *http.Request) (generic.TimePoint, error) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return h.today(), nil
	}
	return parseDateParam("as_of", s)
}

func windowQuery(window *generic.Period) generic.Query {
	if window == nil {
		return generic.Query{}
	}
	return generic.InPeriod("", *window)
}

func rollupResponse(window *generic.Period, items any) RollupResponse {
	resp := RollupResponse{Items: items}
	if window != nil {
		resp.From = window.Start.String()
		resp.To = window.End.String()
	}
	return resp
}

func memberIDsOf(members []generic.Member) []generic.MemberID {
	ids := make([]generic.MemberID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}
