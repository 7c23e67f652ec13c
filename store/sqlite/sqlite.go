/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements store.Store (members, earnings, day statuses, work slots and
  rating snapshots) using SQLite. In production the same patterns apply to
  PostgreSQL with minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  generic.MemberStore:     Member directory
  compensation.Store:      Earnings
  attendance.StatusStore:  Day statuses
  attendance.SlotStore:    Work slots
  rating.SnapshotStore:    One rating snapshot per member

KEY TABLES:
  members:           Team members
  earnings:          Gross inflows; participants kept as a JSON array
  day_statuses:      Status intervals; end_date NULL means single day
  work_slots:        One row per member-day; slots kept as a JSON array
  rating_snapshots:  Overwritten on every recompute (upsert on user_id)

STORAGE CONVENTIONS:
  - Calendar dates are TEXT "YYYY-MM-DD" so they sort and compare as strings
  - Money and points are decimal strings, never REAL
  - Lists come back ordered by date, then by insertion (rowid)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers do not block each other.

USAGE:
  st, err := sqlite.New("./data/apevault.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: The Store contract
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/dexim234/apevaultteams/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements all storage interfaces using SQLite.
type Store struct {
	conn *sql.DB // nil inside a transaction
	db   dbtx
	mu   sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise open its own empty database.
		conn.SetMaxOpenConns(1)
	}

	s := &Store{conn: conn, db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT,
		joined_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS earnings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		amount TEXT NOT NULL,
		pool_amount TEXT,
		participants_json TEXT NOT NULL DEFAULT '[]',
		note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_earnings_date ON earnings(date);
	CREATE INDEX IF NOT EXISTS idx_earnings_user_date ON earnings(user_id, date);

	CREATE TABLE IF NOT EXISTS day_statuses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		end_date TEXT,
		comment TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_day_statuses_user ON day_statuses(user_id, date);

	CREATE TABLE IF NOT EXISTS work_slots (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		slots_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_work_slots_user ON work_slots(user_id, date);

	CREATE TABLE IF NOT EXISTS rating_snapshots (
		user_id TEXT PRIMARY KEY,
		window_start TEXT,
		window_end TEXT,
		earnings TEXT NOT NULL,
		pool_amount TEXT NOT NULL,
		messages INTEGER NOT NULL DEFAULT 0,
		initiatives INTEGER NOT NULL DEFAULT 0,
		signals INTEGER NOT NULL DEFAULT 0,
		profitable_signals INTEGER NOT NULL DEFAULT 0,
		referrals INTEGER NOT NULL DEFAULT 0,
		days_off INTEGER NOT NULL DEFAULT 0,
		sick_days INTEGER NOT NULL DEFAULT 0,
		vacation_days INTEGER NOT NULL DEFAULT 0,
		absence_days INTEGER NOT NULL DEFAULT 0,
		truancy_days INTEGER NOT NULL DEFAULT 0,
		internship_days INTEGER NOT NULL DEFAULT 0,
		rating TEXT NOT NULL,
		breakdown_json TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn within a database transaction. The Store handed to fn
// writes through the transaction; it is committed when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(store.Store) error) error {
	if s.conn == nil {
		// Already inside a transaction
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Store{db: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"rating_snapshots", "work_slots", "day_statuses", "earnings", "members"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// MEMBER STORE (generic.MemberStore interface)
// =============================================================================

// SaveMember inserts or updates a member. created_at is kept on update.
func (s *Store) SaveMember(ctx context.Context, m generic.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = generic.Today()
	}

	query := `
		INSERT INTO members (id, name, role, joined_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			joined_at = excluded.joined_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(m.ID), m.Name, nullString(m.Role), nullDate(m.JoinedAt), formatDate(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save member %s: %w", m.ID, err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id generic.MemberID) (*generic.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, role, joined_at, created_at FROM members WHERE id = ?",
		string(id),
	)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, generic.NotFound("member", string(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", id, err)
	}
	return &m, nil
}

// ListMembers returns all members in insertion order.
func (s *Store) ListMembers(ctx context.Context) ([]generic.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, joined_at, created_at FROM members ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []generic.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// DeleteMember removes a member and their snapshot. Records stay.
func (s *Store) DeleteMember(ctx context.Context, id generic.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteByID(ctx, "members", "id", "member", string(id)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM rating_snapshots WHERE user_id = ?", string(id))
	return err
}

// =============================================================================
// EARNING STORE (compensation.Store interface)
// =============================================================================

const earningColumns = `id, user_id, date, category, amount, pool_amount, participants_json, note, created_at, updated_at`

// SaveEarning inserts or updates an earning.
func (s *Store) SaveEarning(ctx context.Context, e compensation.Earning) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	participants := e.Participants
	if participants == nil {
		participants = []generic.MemberID{}
	}
	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	var pool sql.NullString
	if e.PoolAmount != nil {
		pool = sql.NullString{String: e.PoolAmount.String(), Valid: true}
	}

	today := generic.Today()
	createdAt, updatedAt := e.CreatedAt, e.UpdatedAt
	if createdAt.IsZero() {
		createdAt = today
	}
	if updatedAt.IsZero() {
		updatedAt = today
	}

	query := `
		INSERT INTO earnings (` + earningColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			date = excluded.date,
			category = excluded.category,
			amount = excluded.amount,
			pool_amount = excluded.pool_amount,
			participants_json = excluded.participants_json,
			note = excluded.note,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		string(e.ID), string(e.UserID), formatDate(e.Date), string(e.Category),
		e.Amount.String(), pool, string(participantsJSON), nullString(e.Note),
		formatDate(createdAt), formatDate(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save earning %s: %w", e.ID, err)
	}
	return nil
}

// GetEarning retrieves an earning by ID.
func (s *Store) GetEarning(ctx context.Context, id generic.RecordID) (*compensation.Earning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+earningColumns+" FROM earnings WHERE id = ?", string(id))
	e, err := scanEarning(row)
	if err == sql.ErrNoRows {
		return nil, generic.NotFound("earning", string(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get earning %s: %w", id, err)
	}
	return &e, nil
}

// DeleteEarning removes an earning.
func (s *Store) DeleteEarning(ctx context.Context, id generic.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "earnings", "id", "earning", string(id))
}

// Earnings returns earnings matching q. A member matches as owner or as a
// listed participant.
func (s *Store) Earnings(ctx context.Context, q generic.Query) ([]compensation.Earning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if q.UserID != "" {
		where = append(where, `(user_id = ? OR EXISTS (
			SELECT 1 FROM json_each(earnings.participants_json) WHERE json_each.value = ?))`)
		args = append(args, string(q.UserID), string(q.UserID))
	}
	if q.From != nil {
		where = append(where, "date >= ?")
		args = append(args, formatDate(*q.From))
	}
	if q.To != nil {
		where = append(where, "date <= ?")
		args = append(args, formatDate(*q.To))
	}

	query := "SELECT " + earningColumns + " FROM earnings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	var earnings []compensation.Earning
	for rows.Next() {
		e, err := scanEarning(rows)
		if err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}
	return earnings, rows.Err()
}

// =============================================================================
// DAY STATUS STORE (attendance.StatusStore interface)
// =============================================================================

// SaveDayStatus inserts or updates a day status.
func (s *Store) SaveDayStatus(ctx context.Context, d attendance.DayStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var end sql.NullString
	if d.EndDate != nil {
		end = sql.NullString{String: formatDate(*d.EndDate), Valid: true}
	}

	query := `
		INSERT INTO day_statuses (id, user_id, type, date, end_date, comment)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			type = excluded.type,
			date = excluded.date,
			end_date = excluded.end_date,
			comment = excluded.comment
	`

	_, err := s.db.ExecContext(ctx, query,
		string(d.ID), string(d.UserID), string(d.Type), formatDate(d.Date), end, nullString(d.Comment),
	)
	if err != nil {
		return fmt.Errorf("failed to save day status %s: %w", d.ID, err)
	}
	return nil
}

// DeleteDayStatus removes a day status.
func (s *Store) DeleteDayStatus(ctx context.Context, id generic.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "day_statuses", "id", "day_status", string(id))
}

// DayStatuses returns a member's statuses, or everyone's for an empty userID.
func (s *Store) DayStatuses(ctx context.Context, userID generic.MemberID) ([]attendance.DayStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, user_id, type, date, end_date, comment FROM day_statuses"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, string(userID))
	}
	query += " ORDER BY date, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query day statuses: %w", err)
	}
	defer rows.Close()

	var statuses []attendance.DayStatus
	for rows.Next() {
		var d attendance.DayStatus
		var id, user, typ, date string
		var end, comment sql.NullString
		if err := rows.Scan(&id, &user, &typ, &date, &end, &comment); err != nil {
			return nil, err
		}
		d.ID = generic.RecordID(id)
		d.UserID = generic.MemberID(user)
		d.Type = attendance.StatusType(typ)
		d.Date = parseDate(date)
		if end.Valid {
			e := parseDate(end.String)
			d.EndDate = &e
		}
		d.Comment = comment.String
		statuses = append(statuses, d)
	}
	return statuses, rows.Err()
}

// =============================================================================
// WORK SLOT STORE (attendance.SlotStore interface)
// =============================================================================

// SaveWorkSlot inserts or updates a work slot record.
func (s *Store) SaveWorkSlot(ctx context.Context, w attendance.WorkSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := w.Slots
	if slots == nil {
		slots = []attendance.Slot{}
	}
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}

	query := `
		INSERT INTO work_slots (id, user_id, date, slots_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			date = excluded.date,
			slots_json = excluded.slots_json
	`

	_, err = s.db.ExecContext(ctx, query, string(w.ID), string(w.UserID), formatDate(w.Date), string(slotsJSON))
	if err != nil {
		return fmt.Errorf("failed to save work slot %s: %w", w.ID, err)
	}
	return nil
}

// DeleteWorkSlot removes a work slot record.
func (s *Store) DeleteWorkSlot(ctx context.Context, id generic.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "work_slots", "id", "work_slot", string(id))
}

// WorkSlots returns a member's work slots, or everyone's for an empty userID.
func (s *Store) WorkSlots(ctx context.Context, userID generic.MemberID) ([]attendance.WorkSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, user_id, date, slots_json FROM work_slots"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, string(userID))
	}
	query += " ORDER BY date, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work slots: %w", err)
	}
	defer rows.Close()

	var records []attendance.WorkSlot
	for rows.Next() {
		var id, user, date, slotsJSON string
		if err := rows.Scan(&id, &user, &date, &slotsJSON); err != nil {
			return nil, err
		}
		w := attendance.WorkSlot{
			ID:     generic.RecordID(id),
			UserID: generic.MemberID(user),
			Date:   parseDate(date),
		}
		if err := json.Unmarshal([]byte(slotsJSON), &w.Slots); err != nil {
			return nil, fmt.Errorf("failed to decode slots of %s: %w", id, err)
		}
		records = append(records, w)
	}
	return records, rows.Err()
}

// =============================================================================
// SNAPSHOT STORE (rating.SnapshotStore interface)
// =============================================================================

// breakdownLine is the stored form of a rating.Line.
type breakdownLine struct {
	Factor string          `json:"factor"`
	Input  decimal.Decimal `json:"input"`
	Points decimal.Decimal `json:"points"`
}

const snapshotColumns = `user_id, window_start, window_end, earnings, pool_amount,
	messages, initiatives, signals, profitable_signals, referrals,
	days_off, sick_days, vacation_days, absence_days, truancy_days, internship_days,
	rating, breakdown_json, updated_at`

// SaveSnapshot replaces the member's snapshot. The manual counter columns
// are written on insert only; an existing row keeps its counters.
func (s *Store) SaveSnapshot(ctx context.Context, snap rating.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]breakdownLine, len(snap.Breakdown))
	for i, l := range snap.Breakdown {
		lines[i] = breakdownLine{Factor: string(l.Factor), Input: l.Input, Points: l.Points.Value}
	}
	breakdownJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		INSERT INTO rating_snapshots (` + snapshotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			window_start = excluded.window_start,
			window_end = excluded.window_end,
			earnings = excluded.earnings,
			pool_amount = excluded.pool_amount,
			days_off = excluded.days_off,
			sick_days = excluded.sick_days,
			vacation_days = excluded.vacation_days,
			absence_days = excluded.absence_days,
			truancy_days = excluded.truancy_days,
			internship_days = excluded.internship_days,
			rating = excluded.rating,
			breakdown_json = excluded.breakdown_json,
			updated_at = excluded.updated_at
	`

	c := snap.Counters
	_, err = s.db.ExecContext(ctx, query,
		string(snap.UserID), nullDate(snap.Window.Start), nullDate(snap.Window.End),
		snap.Earnings.String(), snap.PoolAmount.String(),
		c.Messages, c.Initiatives, c.Signals, c.ProfitableSignals, c.Referrals,
		snap.DaysOff, snap.SickDays, snap.VacationDays, snap.AbsenceDays, snap.TruancyDays, snap.InternshipDays,
		snap.Rating.String(), string(breakdownJSON),
		updatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", snap.UserID, err)
	}
	return nil
}

// SaveCounters writes the member's manual counters and nothing else,
// creating an empty snapshot row when there is none.
func (s *Store) SaveCounters(ctx context.Context, userID generic.MemberID, c rating.ManualCounters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rating_snapshots (user_id, earnings, pool_amount,
			messages, initiatives, signals, profitable_signals, referrals, rating, updated_at)
		VALUES (?, '0', '0', ?, ?, ?, ?, ?, '0', ?)
		ON CONFLICT(user_id) DO UPDATE SET
			messages = excluded.messages,
			initiatives = excluded.initiatives,
			signals = excluded.signals,
			profitable_signals = excluded.profitable_signals,
			referrals = excluded.referrals
	`
	_, err := s.db.ExecContext(ctx, query,
		string(userID),
		c.Messages, c.Initiatives, c.Signals, c.ProfitableSignals, c.Referrals,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save counters for %s: %w", userID, err)
	}
	return nil
}

// Snapshot returns the member's snapshot, or nil when there is none yet.
func (s *Store) Snapshot(ctx context.Context, userID generic.MemberID) (*rating.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+snapshotColumns+" FROM rating_snapshots WHERE user_id = ?", string(userID))
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", userID, err)
	}
	return &snap, nil
}

// ListSnapshots returns every snapshot ordered by member ID.
func (s *Store) ListSnapshots(ctx context.Context) ([]rating.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+snapshotColumns+" FROM rating_snapshots ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []rating.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (generic.Member, error) {
	var m generic.Member
	var id, name, createdAt string
	var role, joinedAt sql.NullString
	if err := row.Scan(&id, &name, &role, &joinedAt, &createdAt); err != nil {
		return generic.Member{}, err
	}
	m.ID = generic.MemberID(id)
	m.Name = name
	m.Role = role.String
	if joinedAt.Valid {
		m.JoinedAt = parseDate(joinedAt.String)
	}
	m.CreatedAt = parseDate(createdAt)
	return m, nil
}

func scanEarning(row scanner) (compensation.Earning, error) {
	var e compensation.Earning
	var id, user, date, category, amount, participantsJSON, createdAt, updatedAt string
	var pool, note sql.NullString
	if err := row.Scan(&id, &user, &date, &category, &amount, &pool, &participantsJSON, &note, &createdAt, &updatedAt); err != nil {
		return compensation.Earning{}, err
	}

	e.ID = generic.RecordID(id)
	e.UserID = generic.MemberID(user)
	e.Date = parseDate(date)
	e.Category = compensation.Category(category)
	e.Amount = parseDecimal(amount)
	if pool.Valid {
		p := parseDecimal(pool.String)
		e.PoolAmount = &p
	}
	if err := json.Unmarshal([]byte(participantsJSON), &e.Participants); err != nil {
		return compensation.Earning{}, fmt.Errorf("failed to decode participants of %s: %w", id, err)
	}
	if len(e.Participants) == 0 {
		e.Participants = nil
	}
	e.Note = note.String
	e.CreatedAt = parseDate(createdAt)
	e.UpdatedAt = parseDate(updatedAt)
	return e, nil
}

func scanSnapshot(row scanner) (rating.Snapshot, error) {
	var snap rating.Snapshot
	var user, earnings, pool, score, breakdownJSON, updatedAt string
	var windowStart, windowEnd sql.NullString
	c := &snap.Counters
	err := row.Scan(
		&user, &windowStart, &windowEnd, &earnings, &pool,
		&c.Messages, &c.Initiatives, &c.Signals, &c.ProfitableSignals, &c.Referrals,
		&snap.DaysOff, &snap.SickDays, &snap.VacationDays, &snap.AbsenceDays, &snap.TruancyDays, &snap.InternshipDays,
		&score, &breakdownJSON, &updatedAt,
	)
	if err != nil {
		return rating.Snapshot{}, err
	}

	snap.UserID = generic.MemberID(user)
	if windowStart.Valid && windowEnd.Valid {
		snap.Window = generic.NewPeriod(parseDate(windowStart.String), parseDate(windowEnd.String))
	}
	snap.Earnings = parseDecimal(earnings)
	snap.PoolAmount = parseDecimal(pool)
	snap.Rating = parseDecimal(score)
	snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	var lines []breakdownLine
	if err := json.Unmarshal([]byte(breakdownJSON), &lines); err != nil {
		return rating.Snapshot{}, fmt.Errorf("failed to decode breakdown of %s: %w", user, err)
	}
	for _, l := range lines {
		snap.Breakdown = append(snap.Breakdown, rating.Line{
			Factor: rating.Factor(l.Factor),
			Input:  l.Input,
			Points: generic.NewAmountFromDecimal(l.Points, generic.UnitPoints),
		})
	}
	return snap, nil
}

// deleteByID deletes one row and reports a missing row as not found.
func (s *Store) deleteByID(ctx context.Context, table, column, kind, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.NotFound(kind, id)
	}
	return nil
}

func formatDate(tp generic.TimePoint) string {
	return tp.String()
}

func nullDate(tp generic.TimePoint) sql.NullString {
	if tp.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(tp), Valid: true}
}

func parseDate(s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
