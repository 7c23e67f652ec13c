package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/dexim234/apevaultteams/store"
	"github.com/dexim234/apevaultteams/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(d int) generic.TimePoint {
	return generic.NewTimePoint(2025, time.January, d)
}

func TestMemory_EarningsMatchOwnerOrParticipant(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	require.NoError(t, m.SaveEarning(ctx, compensation.Earning{ID: "e2", UserID: "a", Date: date(12), Amount: decimal.NewFromInt(10)}))
	require.NoError(t, m.SaveEarning(ctx, compensation.Earning{ID: "e1", UserID: "b", Date: date(10), Amount: decimal.NewFromInt(10), Participants: []generic.MemberID{"b", "a"}}))
	require.NoError(t, m.SaveEarning(ctx, compensation.Earning{ID: "e3", UserID: "c", Date: date(11), Amount: decimal.NewFromInt(10)}))

	got, err := m.Earnings(ctx, generic.ForMember("a"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, generic.RecordID("e1"), got[0].ID, "ordered by date")
	assert.Equal(t, generic.RecordID("e2"), got[1].ID)

	window := generic.NewPeriod(date(11), date(31))
	got, err = m.Earnings(ctx, generic.InPeriod("", window))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	e := compensation.Earning{ID: "e1", UserID: "a", Date: date(10), Participants: []generic.MemberID{"a", "b"}}
	require.NoError(t, m.SaveEarning(ctx, e))

	e.Participants[1] = "zzz"
	got, err := m.GetEarning(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, generic.MemberID("b"), got.Participants[1])
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	_, err := m.GetMember(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrMemberNotFound)
	assert.ErrorIs(t, m.DeleteEarning(ctx, "nope"), generic.ErrRecordNotFound)
	assert.ErrorIs(t, m.DeleteDayStatus(ctx, "nope"), generic.ErrRecordNotFound)
	assert.ErrorIs(t, m.DeleteWorkSlot(ctx, "nope"), generic.ErrRecordNotFound)

	snap, err := m.Snapshot(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestMemory_SnapshotIsReplaced(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	first := rating.NewSnapshot("a")
	first.Rating = decimal.NewFromInt(40)
	require.NoError(t, m.SaveSnapshot(ctx, first))

	second := rating.NewSnapshot("a")
	second.Rating = decimal.NewFromInt(70)
	require.NoError(t, m.SaveSnapshot(ctx, second))

	all, err := m.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Rating.Equal(decimal.NewFromInt(70)))
}

func TestMemory_SaveSnapshotKeepsCounters(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	counters := rating.ManualCounters{Messages: 30, Signals: 4}
	require.NoError(t, m.SaveCounters(ctx, "a", counters))

	created, err := m.Snapshot(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, counters, created.Counters)
	assert.True(t, created.Rating.IsZero())

	recomputed := rating.NewSnapshot("a")
	recomputed.Rating = decimal.NewFromInt(61)
	recomputed.Counters = rating.ManualCounters{Messages: 1}
	require.NoError(t, m.SaveSnapshot(ctx, recomputed))

	got, err := m.Snapshot(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, counters, got.Counters, "counters change only through SaveCounters")
	assert.True(t, got.Rating.Equal(decimal.NewFromInt(61)))
}

func TestMemory_UpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveMember(ctx, generic.Member{ID: "a", Name: "Ann"}))
	require.NoError(t, m.SaveMember(ctx, generic.Member{ID: "b", Name: "Ben"}))
	require.NoError(t, m.SaveMember(ctx, generic.Member{ID: "a", Name: "Anna"}))

	members, err := m.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Anna", members[0].Name)
	assert.Equal(t, "Ben", members[1].Name)
}

func TestMemory_WithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	boom := errors.New("boom")

	err := m.WithTx(ctx, func(s store.Store) error {
		require.NoError(t, s.SaveDayStatus(ctx, attendance.DayStatus{ID: "s1", UserID: "a", Type: attendance.StatusSick, Date: date(10)}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	statuses, err := m.DayStatuses(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, statuses)

	require.NoError(t, m.WithTx(ctx, func(s store.Store) error {
		return s.SaveWorkSlot(ctx, attendance.WorkSlot{ID: "w1", UserID: "a", Date: date(10)})
	}))
	slots, err := m.WorkSlots(ctx, "")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveMember(ctx, generic.Member{ID: "a"}))
	require.NoError(t, m.Reset(ctx))

	members, err := m.ListMembers(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}
