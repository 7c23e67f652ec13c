package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenario_SplitBasics(t *testing.T) {
	_, router := newTestHandler(t)

	// WHEN: Loading the split scenario
	loadScenario(t, router, "split-basics")

	// THEN: alice keeps her half of 550, bob adds the 400 net of his own earning
	assert.Equal(t, "275", getSnapshot(t, router, "alice").Earnings)
	bob := getSnapshot(t, router, "bob")
	assert.Equal(t, "675", bob.Earnings)
	assert.Equal(t, "325", bob.PoolAmount)
}

func TestScenario_SickWeek(t *testing.T) {
	_, router := newTestHandler(t)
	loadScenario(t, router, "sick-week")

	// THEN: Two of the five sick days fall in the week
	week := decode[AttendanceDTO](t, do(t, router, http.MethodGet, "/api/members/carol/attendance", nil))
	assert.Equal(t, 2, week.Days["sick"])
	assert.Equal(t, "4.00", week.Hours)

	snap := getSnapshot(t, router, "carol")
	assert.Equal(t, 5, snap.SickDays)
	assert.Equal(t, "48.00", snap.Rating)
}

func TestScenario_SoloStreak(t *testing.T) {
	_, router := newTestHandler(t)
	loadScenario(t, router, "solo-streak")

	// THEN: 100 + 200 + 300 in the base window, only today's 300 in the week
	snap := getSnapshot(t, router, "mike")
	assert.Equal(t, "600", snap.Earnings)
	assert.Equal(t, "0", snap.PoolAmount)
	assert.Equal(t, "53.00", snap.Rating)
}

func TestScenario_FullTeam(t *testing.T) {
	h, router := newTestHandler(t)
	loadScenario(t, router, "full-team")

	snaps, err := h.Store.ListSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 4)
	for _, s := range snaps {
		assert.True(t, s.Rating.GreaterThanOrEqual(decimal.Zero), s.UserID)
		assert.True(t, s.Rating.LessThanOrEqual(decimal.NewFromInt(100)), s.UserID)
		assert.True(t, s.Breakdown.Sum().Equal(s.Rating), s.UserID)
	}

	// Seeded counters survive the load-time recompute
	xena := getSnapshot(t, router, "xena")
	assert.Equal(t, 120, xena.Counters.Messages)

	current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "full-team", current.ID)

	cats := decode[categoryRollupResponse](t, do(t, router, http.MethodGet, "/api/rollup/categories", nil))
	for _, row := range cats.Items {
		assert.GreaterOrEqual(t, row.Count, 1, row.Category)
	}
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	_, router := newTestHandler(t)

	listed := decode[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	require.Len(t, listed, len(scenarioBuilders))

	for _, s := range listed {
		t.Run(s.ID, func(t *testing.T) {
			loadScenario(t, router, s.ID)
			members := decode[[]MemberDTO](t, do(t, router, http.MethodGet, "/api/members", nil))
			assert.NotEmpty(t, members)
		})
	}
}

func TestScenario_UnknownAndReset(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loadScenario(t, router, "split-basics")
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/reset", nil).Code)

	members := decode[[]MemberDTO](t, do(t, router, http.MethodGet, "/api/members", nil))
	assert.Empty(t, members)
	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())
}
