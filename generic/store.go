/*
store.go - Shared persistence vocabulary

PURPOSE:
  The scoring core reads already-fetched, in-memory records. Fetching is the
  job of external collaborators. Each domain package declares the narrow
  source interface it needs (compensation.Source, attendance.StatusSource,
  attendance.SlotSource, rating.SnapshotStore). This file holds the pieces
  those interfaces share: the record query and the member directory.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: In-memory for tests and demos

SEE ALSO:
  - rating/pipeline.go: Consumes all sources together
*/
package generic

import "context"

// =============================================================================
// QUERY - Optional user and date filters
// =============================================================================

// Query narrows a fetch. Zero values mean "no filter". For earnings a
// member matches as owner or as a listed participant.
type Query struct {
	UserID MemberID
	From   *TimePoint
	To     *TimePoint
}

// ForMember is a Query for one member across all dates.
func ForMember(id MemberID) Query {
	return Query{UserID: id}
}

// InPeriod is a Query for one member (or everyone when id is empty) in p.
func InPeriod(id MemberID, p Period) Query {
	start, end := p.Start, p.End
	return Query{UserID: id, From: &start, To: &end}
}

// MatchesDate applies the From/To bounds.
func (q Query) MatchesDate(d TimePoint) bool {
	if q.From != nil && d.Before(*q.From) {
		return false
	}
	if q.To != nil && d.After(*q.To) {
		return false
	}
	return true
}

// MatchesUser applies the member filter.
func (q Query) MatchesUser(id MemberID) bool {
	return q.UserID == "" || q.UserID == id
}

// =============================================================================
// MEMBERS
// =============================================================================

// Member is a team member. Ratings and rankings are keyed by ID.
type Member struct {
	ID        MemberID
	Name      string
	Role      string
	JoinedAt  TimePoint
	CreatedAt TimePoint
}

// MemberStore is the member directory.
type MemberStore interface {
	SaveMember(ctx context.Context, m Member) error
	GetMember(ctx context.Context, id MemberID) (*Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	DeleteMember(ctx context.Context, id MemberID) error
}
