/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with a realistic
	team: members, earnings across categories, day statuses, work slots and
	manual counters. Dates are relative to today, so the current week and
	the 30/90-day windows always have something in them.

AVAILABLE SCENARIOS:

	split-basics:  One shared earning and one with an explicit pool cut
	sick-week:     A sick interval straddling the start of the week
	solo-streak:   Three solo earnings adding up for one member
	full-team:     Four members across every category, status and counter

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Build the scenario's records
 3. Save them in one transaction (manual counters through SaveCounters)
 4. Recompute every member as of today

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "full-team"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create builder function: buildXxx(today, week) scenarioData
 3. Add it to scenarioBuilders

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Recompute helpers
  - store/store.go: WithTx and Reset
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/dexim234/apevaultteams/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "split-basics",
		Name:        "Split Basics",
		Description: "A 1000 earning shared by two members at the default pool rate, plus an explicit pool cut",
		Category:    "compensation",
	},
	{
		ID:          "sick-week",
		Name:        "Sick Week",
		Description: "A sick interval that starts before the week and ends inside it",
		Category:    "attendance",
	},
	{
		ID:          "solo-streak",
		Name:        "Solo Streak",
		Description: "Three solo earnings of 100, 200 and 300 net for one member",
		Category:    "compensation",
	},
	{
		ID:          "full-team",
		Name:        "Full Team",
		Description: "Four members with earnings in every category, statuses, work slots and counters",
		Category:    "rating",
	},
}

// scenarioData is everything one scenario writes.
type scenarioData struct {
	members  []generic.Member
	earnings []compensation.Earning
	statuses []attendance.DayStatus
	slots    []attendance.WorkSlot
	counters map[generic.MemberID]rating.ManualCounters
}

type scenarioBuilder func(today generic.TimePoint, week generic.Period) scenarioData

var scenarioBuilders = map[string]scenarioBuilder{
	"split-basics": buildSplitBasics,
	"sick-week":    buildSickWeek,
	"solo-streak":  buildSoloStreak,
	"full-team":    buildFullTeam,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	build, ok := scenarioBuilders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	resp, err := h.loadScenario(r.Context(), req.ScenarioID, build)
	if err != nil {
		h.handleError(w, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "loaded",
		"scenario":   req.ScenarioID,
		"recomputed": resp.Recomputed,
	})
}

// ResetDatabase clears every record.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.handleError(w, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) loadScenario(ctx context.Context, id string, build scenarioBuilder) (RecomputeAllResponse, error) {
	if err := h.Store.Reset(ctx); err != nil {
		return RecomputeAllResponse{}, fmt.Errorf("failed to reset store: %w", err)
	}
	h.setCurrentScenario("")

	today := h.today()
	data := build(today, h.Pipeline.WindowsAt(today).Week)

	err := h.Store.WithTx(ctx, func(tx store.Store) error {
		for _, m := range data.members {
			if err := tx.SaveMember(ctx, m); err != nil {
				return err
			}
		}
		for _, e := range data.earnings {
			if err := tx.SaveEarning(ctx, e); err != nil {
				return err
			}
		}
		for _, s := range data.statuses {
			if err := tx.SaveDayStatus(ctx, s); err != nil {
				return err
			}
		}
		for _, ws := range data.slots {
			if err := tx.SaveWorkSlot(ctx, ws); err != nil {
				return err
			}
		}
		for id, c := range data.counters {
			if err := tx.SaveCounters(ctx, id, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RecomputeAllResponse{}, fmt.Errorf("failed to save scenario records: %w", err)
	}

	resp, err := h.recomputeAll(ctx, today)
	if err != nil {
		return resp, err
	}
	h.setCurrentScenario(id)
	h.Logger.WithField("scenario", id).WithField("recomputed", resp.Recomputed).Info("scenario loaded")
	return resp, nil
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func buildSplitBasics(today generic.TimePoint, week generic.Period) scenarioData {
	pool := decimal.NewFromInt(100)
	return scenarioData{
		members: []generic.Member{
			member("alice", "Alice", "trader", today),
			member("bob", "Bob", "analyst", today),
		},
		earnings: []compensation.Earning{
			earning("alice", week.Start, compensation.CategoryMemecoins, 1000, nil, "alice", "bob"),
			earning("bob", week.Start, compensation.CategoryFutures, 500, &pool),
		},
	}
}

func buildSickWeek(today generic.TimePoint, week generic.Period) scenarioData {
	end := week.Start.AddDays(1)
	return scenarioData{
		members: []generic.Member{member("carol", "Carol", "trader", today)},
		statuses: []attendance.DayStatus{{
			ID:      newRecordID(),
			UserID:  "carol",
			Type:    attendance.StatusSick,
			Date:    week.Start.AddDays(-3),
			EndDate: &end,
			Comment: "flu",
		}},
		slots: []attendance.WorkSlot{
			workSlot("carol", week.Start.AddDays(2), "10:00", "14:00"),
		},
	}
}

func buildSoloStreak(today generic.TimePoint, week generic.Period) scenarioData {
	zero := decimal.Zero
	return scenarioData{
		members: []generic.Member{member("mike", "Mike", "trader", today)},
		earnings: []compensation.Earning{
			earning("mike", today.AddDays(-10), compensation.CategorySpot, 100, &zero),
			earning("mike", today.AddDays(-5), compensation.CategorySpot, 200, &zero),
			earning("mike", today, compensation.CategoryStaking, 300, &zero),
		},
	}
}

func buildFullTeam(today generic.TimePoint, week generic.Period) scenarioData {
	vacationEnd := today.AddDays(-40)
	dayOffEnd := week.Start

	data := scenarioData{
		members: []generic.Member{
			member("xena", "Xena", "lead", today.AddDays(-200)),
			member("yuri", "Yuri", "trader", today.AddDays(-120)),
			member("zara", "Zara", "analyst", today.AddDays(-60)),
			member("omar", "Omar", "intern", today.AddDays(-14)),
		},
		statuses: []attendance.DayStatus{
			{ID: newRecordID(), UserID: "yuri", Type: attendance.StatusSick, Date: week.Start},
			{ID: newRecordID(), UserID: "yuri", Type: attendance.StatusDayOff, Date: week.Start.AddDays(-1), EndDate: &dayOffEnd},
			{ID: newRecordID(), UserID: "zara", Type: attendance.StatusVacation, Date: today.AddDays(-50), EndDate: &vacationEnd},
			{ID: newRecordID(), UserID: "omar", Type: attendance.StatusInternship, Date: today.AddDays(-14)},
			{ID: newRecordID(), UserID: "omar", Type: attendance.StatusAbsence, Date: today.AddDays(-3)},
		},
		counters: map[generic.MemberID]rating.ManualCounters{
			"xena": {Messages: 120, Initiatives: 3, Signals: 10, ProfitableSignals: 7, Referrals: 2},
			"yuri": {Messages: 40, Signals: 4, ProfitableSignals: 1},
			"zara": {Messages: 80, Initiatives: 1, Referrals: 1},
		},
	}

	for i, c := range compensation.Categories {
		date := today.AddDays(-i * 3)
		data.earnings = append(data.earnings, earning("xena", date, c, int64(400+100*i), nil, "xena", "zara"))
	}
	data.earnings = append(data.earnings,
		earning("yuri", week.Start, compensation.CategoryFutures, 250, nil),
		earning("omar", today, compensation.CategoryAirdrop, 60, nil, "omar", "xena", "yuri"),
	)

	for i := 0; i < 5; i++ {
		d := week.Start.AddDays(i)
		if d.After(today) {
			break
		}
		data.slots = append(data.slots,
			workSlot("xena", d, "09:00", "13:00", "14:00", "18:00"),
			workSlot("zara", d, "10:00", "16:00"),
		)
	}
	return data
}

// =============================================================================
// BUILDER HELPERS
// =============================================================================

func newRecordID() generic.RecordID {
	return generic.RecordID(uuid.NewString())
}

func member(id, name, role string, joined generic.TimePoint) generic.Member {
	return generic.Member{ID: generic.MemberID(id), Name: name, Role: role, JoinedAt: joined, CreatedAt: joined}
}

func earning(owner string, date generic.TimePoint, c compensation.Category, amount int64, pool *decimal.Decimal, participants ...string) compensation.Earning {
	return compensation.Earning{
		ID:           newRecordID(),
		UserID:       generic.MemberID(owner),
		Date:         date,
		Category:     c,
		Amount:       decimal.NewFromInt(amount),
		PoolAmount:   pool,
		Participants: memberIDs(participants),
		CreatedAt:    date,
		UpdatedAt:    date,
	}
}

// workSlot pairs up bounds as start, end, start, end...
func workSlot(owner string, date generic.TimePoint, bounds ...string) attendance.WorkSlot {
	ws := attendance.WorkSlot{ID: newRecordID(), UserID: generic.MemberID(owner), Date: date}
	for i := 0; i+1 < len(bounds); i += 2 {
		ws.Slots = append(ws.Slots, attendance.Slot{
			Start: attendance.MustClockTime(bounds[i]),
			End:   attendance.MustClockTime(bounds[i+1]),
		})
	}
	return ws
}
