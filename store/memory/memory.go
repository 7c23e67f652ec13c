// Package memory provides an in-memory Store (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/dexim234/apevaultteams/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory keeps every record in maps guarded by one RWMutex. Lists come back
// ordered by date, then by first insertion.
type Memory struct {
	mu sync.RWMutex
	state
}

type state struct {
	seq       int
	members   map[generic.MemberID]entry[generic.Member]
	earnings  map[generic.RecordID]entry[compensation.Earning]
	statuses  map[generic.RecordID]entry[attendance.DayStatus]
	slots     map[generic.RecordID]entry[attendance.WorkSlot]
	snapshots map[generic.MemberID]rating.Snapshot
}

type entry[T any] struct {
	seq   int
	value T
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{state: newState()}
}

func newState() state {
	return state{
		members:   make(map[generic.MemberID]entry[generic.Member]),
		earnings:  make(map[generic.RecordID]entry[compensation.Earning]),
		statuses:  make(map[generic.RecordID]entry[attendance.DayStatus]),
		slots:     make(map[generic.RecordID]entry[attendance.WorkSlot]),
		snapshots: make(map[generic.MemberID]rating.Snapshot),
	}
}

// nextSeq keeps the original position of a record on update.
func nextSeq[K comparable, T any](s *state, m map[K]entry[T], k K) int {
	if e, ok := m[k]; ok {
		return e.seq
	}
	s.seq++
	return s.seq
}

// =============================================================================
// MEMBERS
// =============================================================================

func (m *Memory) SaveMember(_ context.Context, member generic.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = entry[generic.Member]{seq: nextSeq(&m.state, m.members, member.ID), value: member}
	return nil
}

func (m *Memory) GetMember(_ context.Context, id generic.MemberID) (*generic.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.members[id]
	if !ok {
		return nil, generic.NotFound("member", string(id))
	}
	member := e.value
	return &member, nil
}

func (m *Memory) ListMembers(_ context.Context) ([]generic.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := sortedEntries(m.members, nil)
	out := make([]generic.Member, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out, nil
}

func (m *Memory) DeleteMember(_ context.Context, id generic.MemberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[id]; !ok {
		return generic.NotFound("member", string(id))
	}
	delete(m.members, id)
	delete(m.snapshots, id)
	return nil
}

// =============================================================================
// EARNINGS
// =============================================================================

func (m *Memory) SaveEarning(_ context.Context, e compensation.Earning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.earnings[e.ID] = entry[compensation.Earning]{seq: nextSeq(&m.state, m.earnings, e.ID), value: cloneEarning(e)}
	return nil
}

func (m *Memory) GetEarning(_ context.Context, id generic.RecordID) (*compensation.Earning, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.earnings[id]
	if !ok {
		return nil, generic.NotFound("earning", string(id))
	}
	out := cloneEarning(e.value)
	return &out, nil
}

func (m *Memory) DeleteEarning(_ context.Context, id generic.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.earnings[id]; !ok {
		return generic.NotFound("earning", string(id))
	}
	delete(m.earnings, id)
	return nil
}

// Earnings matches the member as owner or participant.
func (m *Memory) Earnings(_ context.Context, q generic.Query) ([]compensation.Earning, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := sortedEntries(m.earnings, func(e compensation.Earning) generic.TimePoint { return e.Date })
	var out []compensation.Earning
	for _, e := range entries {
		if !q.MatchesDate(e.value.Date) {
			continue
		}
		if q.UserID != "" && e.value.UserID != q.UserID && !compensation.IsParticipant(e.value, q.UserID) {
			continue
		}
		out = append(out, cloneEarning(e.value))
	}
	return out, nil
}

// =============================================================================
// DAY STATUSES
// =============================================================================

func (m *Memory) SaveDayStatus(_ context.Context, s attendance.DayStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.EndDate != nil {
		end := *s.EndDate
		s.EndDate = &end
	}
	m.statuses[s.ID] = entry[attendance.DayStatus]{seq: nextSeq(&m.state, m.statuses, s.ID), value: s}
	return nil
}

func (m *Memory) DeleteDayStatus(_ context.Context, id generic.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.statuses[id]; !ok {
		return generic.NotFound("day_status", string(id))
	}
	delete(m.statuses, id)
	return nil
}

func (m *Memory) DayStatuses(_ context.Context, userID generic.MemberID) ([]attendance.DayStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := sortedEntries(m.statuses, func(s attendance.DayStatus) generic.TimePoint { return s.Date })
	var out []attendance.DayStatus
	for _, e := range entries {
		if userID == "" || e.value.UserID == userID {
			out = append(out, e.value)
		}
	}
	return out, nil
}

// =============================================================================
// WORK SLOTS
// =============================================================================

func (m *Memory) SaveWorkSlot(_ context.Context, w attendance.WorkSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.Slots = append([]attendance.Slot(nil), w.Slots...)
	m.slots[w.ID] = entry[attendance.WorkSlot]{seq: nextSeq(&m.state, m.slots, w.ID), value: w}
	return nil
}

func (m *Memory) DeleteWorkSlot(_ context.Context, id generic.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[id]; !ok {
		return generic.NotFound("work_slot", string(id))
	}
	delete(m.slots, id)
	return nil
}

func (m *Memory) WorkSlots(_ context.Context, userID generic.MemberID) ([]attendance.WorkSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := sortedEntries(m.slots, func(w attendance.WorkSlot) generic.TimePoint { return w.Date })
	var out []attendance.WorkSlot
	for _, e := range entries {
		if userID == "" || e.value.UserID == userID {
			w := e.value
			w.Slots = append([]attendance.Slot(nil), w.Slots...)
			out = append(out, w)
		}
	}
	return out, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (m *Memory) Snapshot(_ context.Context, userID generic.MemberID) (*rating.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[userID]
	if !ok {
		return nil, nil
	}
	s.Breakdown = append(rating.Breakdown(nil), s.Breakdown...)
	return &s, nil
}

// SaveSnapshot replaces the member's snapshot. An existing snapshot keeps
// its manual counters.
func (m *Memory) SaveSnapshot(_ context.Context, s rating.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.snapshots[s.UserID]; ok {
		s.Counters = prev.Counters
	}
	s.Breakdown = append(rating.Breakdown(nil), s.Breakdown...)
	m.snapshots[s.UserID] = s
	return nil
}

// SaveCounters sets the member's manual counters only.
func (m *Memory) SaveCounters(_ context.Context, userID generic.MemberID, c rating.ManualCounters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[userID]
	if !ok {
		s = rating.NewSnapshot(userID)
	}
	s.Counters = c
	m.snapshots[userID] = s
	return nil
}

func (m *Memory) ListSnapshots(_ context.Context) ([]rating.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rating.Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// WithTx snapshots the state and runs fn. On error the snapshot is restored.
// Concurrent writers are not isolated from fn.
func (m *Memory) WithTx(ctx context.Context, fn func(store.Store) error) error {
	m.mu.Lock()
	saved := m.state.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.state = saved
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = newState()
	return nil
}

func (m *Memory) Close() error { return nil }

func (s state) clone() state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.earnings {
		v.value = cloneEarning(v.value)
		c.earnings[k] = v
	}
	for k, v := range s.statuses {
		c.statuses[k] = v
	}
	for k, v := range s.slots {
		v.value.Slots = append([]attendance.Slot(nil), v.value.Slots...)
		c.slots[k] = v
	}
	for k, v := range s.snapshots {
		v.Breakdown = append(rating.Breakdown(nil), v.Breakdown...)
		c.snapshots[k] = v
	}
	return c
}

// =============================================================================
// HELPERS
// =============================================================================

// sortedEntries orders by date (when dateOf is set), then insertion order.
func sortedEntries[K comparable, T any](m map[K]entry[T], dateOf func(T) generic.TimePoint) []entry[T] {
	out := make([]entry[T], 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if dateOf != nil {
			di, dj := dateOf(out[i].value), dateOf(out[j].value)
			if !di.Equal(dj) {
				return di.Before(dj)
			}
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func cloneEarning(e compensation.Earning) compensation.Earning {
	if e.PoolAmount != nil {
		pool := *e.PoolAmount
		e.PoolAmount = &pool
	}
	e.Participants = append([]generic.MemberID(nil), e.Participants...)
	return e
}
