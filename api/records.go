package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/google/uuid"
)

// Every write below is followed by a recompute of the members it touched,
// so their snapshots never lag the record set.

// =============================================================================
// EARNING HANDLERS
// =============================================================================

// ListEarnings returns earnings filtered by ?user_id=&from=&to=. A member
// matches as owner or as a participant.
func (h *Handler) ListEarnings(w http.ResponseWriter, r *http.Request) {
	window, err := h.windowParam(r)
	if err != nil {
		h.handleError(w, "Invalid window", err)
		return
	}
	q := windowQuery(window)
	q.UserID = generic.MemberID(r.URL.Query().Get("user_id"))

	records, err := h.Store.Earnings(r.Context(), q)
	if err != nil {
		h.handleError(w, "Failed to list earnings", err)
		return
	}

	dtos := make([]EarningDTO, len(records))
	for i, e := range records {
		dtos[i] = toEarningDTO(e, h.Pipeline.Split)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEarning records a new earning.
func (h *Handler) CreateEarning(w http.ResponseWriter, r *http.Request) {
	var req EarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	e, err := h.earningFromRequest(ctx, req)
	if err != nil {
		h.handleError(w, "Invalid earning", err)
		return
	}
	e.ID = generic.RecordID(uuid.NewString())
	e.CreatedAt = h.today()
	e.UpdatedAt = e.CreatedAt

	if err := h.Store.SaveEarning(ctx, e); err != nil {
		h.handleError(w, "Failed to save earning", err)
		return
	}
	h.recomputeMembers(ctx, compensation.ParticipantsOf(e)...)

	writeJSON(w, http.StatusCreated, toEarningDTO(e, h.Pipeline.Split))
}

// GetEarning returns one earning with its split.
func (h *Handler) GetEarning(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEarning(r.Context(), recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get earning", err)
		return
	}
	writeJSON(w, http.StatusOK, toEarningDTO(*e, h.Pipeline.Split))
}

// UpdateEarning replaces an earning. Members dropped from the participant
// list are recomputed too.
func (h *Handler) UpdateEarning(w http.ResponseWriter, r *http.Request) {
	var req EarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	old, err := h.Store.GetEarning(ctx, recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get earning", err)
		return
	}

	e, err := h.earningFromRequest(ctx, req)
	if err != nil {
		h.handleError(w, "Invalid earning", err)
		return
	}
	e.ID = old.ID
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = h.today()

	if err := h.Store.SaveEarning(ctx, e); err != nil {
		h.handleError(w, "Failed to save earning", err)
		return
	}
	affected := append(compensation.ParticipantsOf(*old), compensation.ParticipantsOf(e)...)
	h.recomputeMembers(ctx, affected...)

	writeJSON(w, http.StatusOK, toEarningDTO(e, h.Pipeline.Split))
}

// DeleteEarning removes an earning from every subsequent aggregate.
func (h *Handler) DeleteEarning(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	old, err := h.Store.GetEarning(ctx, recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get earning", err)
		return
	}
	if err := h.Store.DeleteEarning(ctx, old.ID); err != nil {
		h.handleError(w, "Failed to delete earning", err)
		return
	}
	h.recomputeMembers(ctx, compensation.ParticipantsOf(*old)...)

	w.WriteHeader(http.StatusNoContent)
}

// SplitEarning previews the split of an earning without storing it.
// Date and category are optional here.
func (h *Handler) SplitEarning(w http.ResponseWriter, r *http.Request) {
	var req EarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" {
		h.handleError(w, "Invalid earning", fmt.Errorf("%w: user_id is required", generic.ErrInvalidInput))
		return
	}

	e := compensation.Earning{
		UserID:       generic.MemberID(req.UserID),
		Amount:       req.Amount,
		PoolAmount:   req.PoolAmount,
		Participants: memberIDs(req.Participants),
	}
	writeJSON(w, http.StatusOK, toSplitDTO(compensation.SplitEarning(e, h.Pipeline.Split)))
}

func (h *Handler) earningFromRequest(ctx context.Context, req EarningRequest) (compensation.Earning, error) {
	owner, err := h.requireMember(ctx, req.UserID)
	if err != nil {
		return compensation.Earning{}, err
	}
	date, err := parseRecordDate("date", req.Date)
	if err != nil {
		return compensation.Earning{}, err
	}
	category, err := compensation.ParseCategory(req.Category)
	if err != nil {
		return compensation.Earning{}, err
	}
	return compensation.Earning{
		UserID:       owner,
		Date:         date,
		Category:     category,
		Amount:       req.Amount,
		PoolAmount:   req.PoolAmount,
		Participants: memberIDs(req.Participants),
		Note:         req.Note,
	}, nil
}

// =============================================================================
// DAY STATUS HANDLERS
// =============================================================================

// ListDayStatuses returns day statuses, optionally for one ?user_id=.
func (h *Handler) ListDayStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Store.DayStatuses(r.Context(), generic.MemberID(r.URL.Query().Get("user_id")))
	if err != nil {
		h.handleError(w, "Failed to list day statuses", err)
		return
	}

	dtos := make([]DayStatusDTO, len(statuses))
	for i, s := range statuses {
		dtos[i] = toDayStatusDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDayStatus records a new day status interval.
func (h *Handler) CreateDayStatus(w http.ResponseWriter, r *http.Request) {
	var req DayStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	s, err := h.dayStatusFromRequest(ctx, req)
	if err != nil {
		h.handleError(w, "Invalid day status", err)
		return
	}
	s.ID = generic.RecordID(uuid.NewString())

	if err := h.Store.SaveDayStatus(ctx, s); err != nil {
		h.handleError(w, "Failed to save day status", err)
		return
	}
	h.recomputeMembers(ctx, s.UserID)

	writeJSON(w, http.StatusCreated, toDayStatusDTO(s))
}

// UpdateDayStatus replaces a day status.
func (h *Handler) UpdateDayStatus(w http.ResponseWriter, r *http.Request) {
	var req DayStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	old, err := h.findDayStatus(ctx, recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get day status", err)
		return
	}
	s, err := h.dayStatusFromRequest(ctx, req)
	if err != nil {
		h.handleError(w, "Invalid day status", err)
		return
	}
	s.ID = old.ID

	if err := h.Store.SaveDayStatus(ctx, s); err != nil {
		h.handleError(w, "Failed to save day status", err)
		return
	}
	h.recomputeMembers(ctx, old.UserID, s.UserID)

	writeJSON(w, http.StatusOK, toDayStatusDTO(s))
}

// DeleteDayStatus removes a day status.
func (h *Handler) DeleteDayStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	old, err := h.findDayStatus(ctx, recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get day status", err)
		return
	}
	if err := h.Store.DeleteDayStatus(ctx, old.ID); err != nil {
		h.handleError(w, "Failed to delete day status", err)
		return
	}
	h.recomputeMembers(ctx, old.UserID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dayStatusFromRequest(ctx context.Context, req DayStatusRequest) (attendance.DayStatus, error) {
	owner, err := h.requireMember(ctx, req.UserID)
	if err != nil {
		return attendance.DayStatus{}, err
	}
	statusType, err := attendance.ParseStatusType(req.Type)
	if err != nil {
		return attendance.DayStatus{}, err
	}
	date, err := parseRecordDate("date", req.Date)
	if err != nil {
		return attendance.DayStatus{}, err
	}
	s := attendance.DayStatus{UserID: owner, Type: statusType, Date: date, Comment: req.Comment}
	if req.EndDate != "" {
		end, err := parseRecordDate("end_date", req.EndDate)
		if err != nil {
			return attendance.DayStatus{}, err
		}
		s.EndDate = &end
	}
	return s, nil
}

// findDayStatus looks a status up by ID. The status store is keyed by
// member, so this scans every record.
func (h *Handler) findDayStatus(ctx context.Context, id generic.RecordID) (*attendance.DayStatus, error) {
	statuses, err := h.Store.DayStatuses(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, s := range statuses {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, generic.NotFound("day_status", string(id))
}

// =============================================================================
// WORK SLOT HANDLERS
// =============================================================================

// ListWorkSlots returns work slot records, optionally for one ?user_id=.
func (h *Handler) ListWorkSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Store.WorkSlots(r.Context(), generic.MemberID(r.URL.Query().Get("user_id")))
	if err != nil {
		h.handleError(w, "Failed to list work slots", err)
		return
	}

	dtos := make([]WorkSlotDTO, len(slots))
	for i, s := range slots {
		dtos[i] = toWorkSlotDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorkSlot records the slots of one member-day.
func (h *Handler) CreateWorkSlot(w http.ResponseWriter, r *http.Request) {
	var req WorkSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	ws, err := h.workSlotFromRequest(ctx, req)
	if err != nil {
		h.handleError(w, "Invalid work slot", err)
		return
	}
	ws.ID = generic.RecordID(uuid.NewString())

	if err := h.Store.SaveWorkSlot(ctx, ws); err != nil {
		h.handleError(w, "Failed to save work slot", err)
		return
	}
	h.recomputeMembers(ctx, ws.UserID)

	writeJSON(w, http.StatusCreated, toWorkSlotDTO(ws))
}

// UpdateWorkSlot replaces a work slot record.
func (h *Handler) UpdateWorkSlot(w http.ResponseWriter, r *http.Request) {
	var req WorkSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	old, err := h.findWorkSlot(ctx, recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get work slot", err)
		return
	}
	ws, err := h.workSlotFromRequest(ctx, req)
	if err != nil {
		h.handleError(w, "Invalid work slot", err)
		return
	}
	ws.ID = old.ID

	if err := h.Store.SaveWorkSlot(ctx, ws); err != nil {
		h.handleError(w, "Failed to save work slot", err)
		return
	}
	h.recomputeMembers(ctx, old.UserID, ws.UserID)

	writeJSON(w, http.StatusOK, toWorkSlotDTO(ws))
}

// DeleteWorkSlot removes a work slot record.
func (h *Handler) DeleteWorkSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	old, err := h.findWorkSlot(ctx, recordParam(r))
	if err != nil {
		h.handleError(w, "Failed to get work slot", err)
		return
	}
	if err := h.Store.DeleteWorkSlot(ctx, old.ID); err != nil {
		h.handleError(w, "Failed to delete work slot", err)
		return
	}
	h.recomputeMembers(ctx, old.UserID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) workSlotFromRequest(ctx context.Context, req WorkSlotRequest) (attendance.WorkSlot, error) {
	owner, err := h.requireMember(ctx, req.UserID)
	if err != nil {
		return attendance.WorkSlot{}, err
	}
	date, err := parseRecordDate("date", req.Date)
	if err != nil {
		return attendance.WorkSlot{}, err
	}
	return attendance.WorkSlot{UserID: owner, Date: date, Slots: req.Slots}, nil
}

func (h *Handler) findWorkSlot(ctx context.Context, id generic.RecordID) (*attendance.WorkSlot, error) {
	slots, err := h.Store.WorkSlots(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, generic.NotFound("work_slot", string(id))
}

// =============================================================================
// HELPERS
// =============================================================================

// requireMember checks that a record owner is a known member. An unknown
// owner is a client error, not a missing resource.
func (h *Handler) requireMember(ctx context.Context, id string) (generic.MemberID, error) {
	if id == "" {
		return "", fmt.Errorf("%w: user_id is required", generic.ErrInvalidInput)
	}
	memberID := generic.MemberID(id)
	if _, err := h.Store.GetMember(ctx, memberID); err != nil {
		if generic.IsNotFound(err) {
			return "", fmt.Errorf("%w: user_id %q is not a member", generic.ErrInvalidInput, id)
		}
		return "", err
	}
	return memberID, nil
}
