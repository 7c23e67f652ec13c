/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY AND POINTS:
  Responses carry decimals as strings so no precision is lost. Requests
  accept either a JSON number or a string (shopspring/decimal decodes both).

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/calibration.go: CalibrationJSON type
*/
package api

import (
	"sort"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MEMBERS
// =============================================================================

// MemberDTO represents a team member in API responses.
type MemberDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	JoinedAt  string `json:"joined_at,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateMemberRequest is the request to create a member. An empty ID is
// generated.
type CreateMemberRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

func toMemberDTO(m generic.Member) MemberDTO {
	return MemberDTO{
		ID:        string(m.ID),
		Name:      m.Name,
		Role:      m.Role,
		JoinedAt:  dateString(m.JoinedAt),
		CreatedAt: dateString(m.CreatedAt),
	}
}

// =============================================================================
// EARNINGS
// =============================================================================

// EarningRequest creates or replaces an earning.
type EarningRequest struct {
	UserID       string           `json:"user_id"`
	Date         string           `json:"date"`
	Category     string           `json:"category"`
	Amount       decimal.Decimal  `json:"amount"`
	PoolAmount   *decimal.Decimal `json:"pool_amount,omitempty"`
	Participants []string         `json:"participants,omitempty"`
	Note         string           `json:"note,omitempty"`
}

// EarningDTO is a stored earning with its split.
type EarningDTO struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	Date         string   `json:"date"`
	Category     string   `json:"category"`
	Amount       string   `json:"amount"`
	PoolAmount   *string  `json:"pool_amount,omitempty"`
	Participants []string `json:"participants"`
	Note         string   `json:"note,omitempty"`
	Split        SplitDTO `json:"split"`
}

// SplitDTO is the allocation of one earning.
type SplitDTO struct {
	Gross          string            `json:"gross"`
	Pool           string            `json:"pool"`
	Net            string            `json:"net"`
	PerParticipant string            `json:"per_participant"`
	Participants   []string          `json:"participants"`
	Shares         map[string]string `json:"shares"`
	PoolShares     map[string]string `json:"pool_shares"`
}

func toSplitDTO(s compensation.Split) SplitDTO {
	return SplitDTO{
		Gross:          s.Gross.String(),
		Pool:           s.Pool.String(),
		Net:            s.Net.String(),
		PerParticipant: s.PerParticipant.String(),
		Participants:   memberStrings(s.Participants),
		Shares:         decimalMap(s.Shares),
		PoolShares:     decimalMap(s.PoolShares),
	}
}

func toEarningDTO(e compensation.Earning, cfg compensation.Config) EarningDTO {
	dto := EarningDTO{
		ID:           string(e.ID),
		UserID:       string(e.UserID),
		Date:         e.Date.String(),
		Category:     string(e.Category),
		Amount:       e.Amount.String(),
		Participants: memberStrings(e.Participants),
		Note:         e.Note,
		Split:        toSplitDTO(compensation.SplitEarning(e, cfg)),
	}
	if e.PoolAmount != nil {
		pool := e.PoolAmount.String()
		dto.PoolAmount = &pool
	}
	return dto
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// DayStatusRequest creates or replaces a day status.
type DayStatusRequest struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Date    string `json:"date"`
	EndDate string `json:"end_date,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// DayStatusDTO is a stored day status.
type DayStatusDTO struct {
	ID      string  `json:"id"`
	UserID  string  `json:"user_id"`
	Type    string  `json:"type"`
	Date    string  `json:"date"`
	EndDate *string `json:"end_date,omitempty"`
	Comment string  `json:"comment,omitempty"`
	Days    int     `json:"days"`
}

func toDayStatusDTO(s attendance.DayStatus) DayStatusDTO {
	dto := DayStatusDTO{
		ID:      string(s.ID),
		UserID:  string(s.UserID),
		Type:    string(s.Type),
		Date:    s.Date.String(),
		Comment: s.Comment,
		Days:    s.Interval().NumDays(),
	}
	if s.EndDate != nil {
		end := s.EndDate.String()
		dto.EndDate = &end
	}
	return dto
}

// WorkSlotRequest creates or replaces a work slot record.
type WorkSlotRequest struct {
	UserID string            `json:"user_id"`
	Date   string            `json:"date"`
	Slots  []attendance.Slot `json:"slots"`
}

// WorkSlotDTO is a stored work slot record.
type WorkSlotDTO struct {
	ID     string            `json:"id"`
	UserID string            `json:"user_id"`
	Date   string            `json:"date"`
	Slots  []attendance.Slot `json:"slots"`
	Hours  string            `json:"hours"`
}

func toWorkSlotDTO(w attendance.WorkSlot) WorkSlotDTO {
	slots := w.Slots
	if slots == nil {
		slots = []attendance.Slot{}
	}
	return WorkSlotDTO{
		ID:     string(w.ID),
		UserID: string(w.UserID),
		Date:   w.Date.String(),
		Slots:  slots,
		Hours:  w.Hours().Display(),
	}
}

// AttendanceDTO summarizes a member's attendance in a window.
type AttendanceDTO struct {
	UserID string         `json:"user_id"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Days   map[string]int `json:"days"`
	Total  int            `json:"total"`
	Hours  string         `json:"hours"`
}

// =============================================================================
// RATING
// =============================================================================

// CountersDTO carries the manual counters.
type CountersDTO struct {
	Messages          int `json:"messages"`
	Initiatives       int `json:"initiatives"`
	Signals           int `json:"signals"`
	ProfitableSignals int `json:"profitable_signals"`
	Referrals         int `json:"referrals"`
}

func (c CountersDTO) toCounters() rating.ManualCounters {
	return rating.ManualCounters{
		Messages:          c.Messages,
		Initiatives:       c.Initiatives,
		Signals:           c.Signals,
		ProfitableSignals: c.ProfitableSignals,
		Referrals:         c.Referrals,
	}
}

func toCountersDTO(c rating.ManualCounters) CountersDTO {
	return CountersDTO{
		Messages:          c.Messages,
		Initiatives:       c.Initiatives,
		Signals:           c.Signals,
		ProfitableSignals: c.ProfitableSignals,
		Referrals:         c.Referrals,
	}
}

// ComputeRatingRequest scores ad-hoc inputs without touching storage.
type ComputeRatingRequest struct {
	WeeklyHours        decimal.Decimal `json:"weekly_hours"`
	WeeklyNetEarnings  decimal.Decimal `json:"weekly_net_earnings"`
	WeeklyDaysOff      int             `json:"weekly_days_off"`
	WeeklySickDays     int             `json:"weekly_sick_days"`
	VacationDaysLast90 int             `json:"vacation_days_90"`
	Counters           CountersDTO     `json:"counters"`
}

// BreakdownLineDTO is one factor's contribution.
type BreakdownLineDTO struct {
	Factor string `json:"factor"`
	Input  string `json:"input"`
	Points string `json:"points"`
}

// InputsDTO shows the scalars the engine scored.
type InputsDTO struct {
	Counters           CountersDTO `json:"counters"`
	WeeklyHours        string      `json:"weekly_hours"`
	WeeklyNetEarnings  string      `json:"weekly_net_earnings"`
	WeeklyDaysOff      int         `json:"weekly_days_off"`
	WeeklySickDays     int         `json:"weekly_sick_days"`
	VacationDaysLast90 int         `json:"vacation_days_90"`
}

// WindowsDTO names each window a recompute looked at.
type WindowsDTO struct {
	Week     PeriodDTO `json:"week"`
	Base     PeriodDTO `json:"base"`
	Vacation PeriodDTO `json:"vacation"`
}

// PeriodDTO is an inclusive date range.
type PeriodDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RatingResultDTO is a scored result.
type RatingResultDTO struct {
	Rating    string             `json:"rating"`
	Raw       string             `json:"raw"`
	Breakdown []BreakdownLineDTO `json:"breakdown"`
}

func toRatingResultDTO(r rating.Result) RatingResultDTO {
	lines := make([]BreakdownLineDTO, len(r.Breakdown))
	for i, l := range r.Breakdown {
		lines[i] = BreakdownLineDTO{Factor: string(l.Factor), Input: l.Input.String(), Points: l.Points.Display()}
	}
	return RatingResultDTO{Rating: r.Rating.StringFixed(2), Raw: r.Raw.String(), Breakdown: lines}
}

// SnapshotDTO is a member's stored rating data.
type SnapshotDTO struct {
	UserID         string             `json:"user_id"`
	Window         *PeriodDTO         `json:"window,omitempty"`
	Earnings       string             `json:"earnings"`
	PoolAmount     string             `json:"pool_amount"`
	Counters       CountersDTO        `json:"counters"`
	DaysOff        int                `json:"days_off"`
	SickDays       int                `json:"sick_days"`
	VacationDays   int                `json:"vacation_days"`
	AbsenceDays    int                `json:"absence_days"`
	TruancyDays    int                `json:"truancy_days"`
	InternshipDays int                `json:"internship_days"`
	Rating         string             `json:"rating"`
	Breakdown      []BreakdownLineDTO `json:"breakdown"`
	UpdatedAt      string             `json:"updated_at,omitempty"`
}

func toSnapshotDTO(s rating.Snapshot) SnapshotDTO {
	result := toRatingResultDTO(rating.Result{Rating: s.Rating, Breakdown: s.Breakdown})
	dto := SnapshotDTO{
		UserID:         string(s.UserID),
		Earnings:       s.Earnings.String(),
		PoolAmount:     s.PoolAmount.String(),
		Counters:       toCountersDTO(s.Counters),
		DaysOff:        s.DaysOff,
		SickDays:       s.SickDays,
		VacationDays:   s.VacationDays,
		AbsenceDays:    s.AbsenceDays,
		TruancyDays:    s.TruancyDays,
		InternshipDays: s.InternshipDays,
		Rating:         result.Rating,
		Breakdown:      result.Breakdown,
	}
	if !s.Window.Start.IsZero() {
		w := toPeriodDTO(s.Window)
		dto.Window = &w
	}
	if !s.UpdatedAt.IsZero() {
		dto.UpdatedAt = s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

// RecomputeDTO is the response of a member recompute.
type RecomputeDTO struct {
	AsOf     string          `json:"as_of"`
	Result   RatingResultDTO `json:"result"`
	Inputs   InputsDTO       `json:"inputs"`
	Windows  WindowsDTO      `json:"windows"`
	Snapshot SnapshotDTO     `json:"snapshot"`
}

func toRecomputeDTO(asOf generic.TimePoint, o rating.Outcome) RecomputeDTO {
	return RecomputeDTO{
		AsOf:   asOf.String(),
		Result: toRatingResultDTO(o.Result),
		Inputs: InputsDTO{
			Counters:           toCountersDTO(o.Inputs.Counters),
			WeeklyHours:        o.Inputs.WeeklyHoursWorked.String(),
			WeeklyNetEarnings:  o.Inputs.WeeklyNetEarnings.String(),
			WeeklyDaysOff:      o.Inputs.WeeklyDaysOff,
			WeeklySickDays:     o.Inputs.WeeklySickDays,
			VacationDaysLast90: o.Inputs.VacationDaysLast90,
		},
		Windows: WindowsDTO{
			Week:     toPeriodDTO(o.Windows.Week),
			Base:     toPeriodDTO(o.Windows.Base),
			Vacation: toPeriodDTO(o.Windows.Vacation),
		},
		Snapshot: toSnapshotDTO(o.Snapshot),
	}
}

// RecomputeAllResponse summarizes an admin or scheduled recompute.
type RecomputeAllResponse struct {
	AsOf       string   `json:"as_of"`
	Recomputed int      `json:"recomputed"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// =============================================================================
// ROLLUPS
// =============================================================================

// ContributorDTO is one member's accumulated split output.
type ContributorDTO struct {
	Rank      int    `json:"rank,omitempty"`
	Member    string `json:"member"`
	Net       string `json:"net"`
	PoolShare string `json:"pool_share"`
}

func toContributorDTOs(cs []compensation.Contributor, ranked bool) []ContributorDTO {
	out := make([]ContributorDTO, len(cs))
	for i, c := range cs {
		out[i] = ContributorDTO{Member: string(c.Member), Net: c.Net.Display(), PoolShare: c.PoolShare.Display()}
		if ranked {
			out[i].Rank = i + 1
		}
	}
	return out
}

// CategoryRollupDTO is the rollup of one earning category.
type CategoryRollupDTO struct {
	Category        string           `json:"category"`
	Gross           string           `json:"gross"`
	Pool            string           `json:"pool"`
	Net             string           `json:"net"`
	Count           int              `json:"count"`
	TopParticipants []ContributorDTO `json:"top_participants"`
}

// RollupResponse wraps a rollup with its window.
type RollupResponse struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Items any    `json:"items"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPeriodDTO(p generic.Period) PeriodDTO {
	return PeriodDTO{From: p.Start.String(), To: p.End.String()}
}

func dateString(tp generic.TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.String()
}

func memberStrings(ids []generic.MemberID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func memberIDs(ids []string) []generic.MemberID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]generic.MemberID, len(ids))
	for i, id := range ids {
		out[i] = generic.MemberID(id)
	}
	return out
}

func decimalMap(m map[generic.MemberID]decimal.Decimal) map[string]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	out := make(map[string]string, len(m))
	for _, k := range keys {
		out[k] = m[generic.MemberID(k)].String()
	}
	return out
}
