/*
Package factory converts calibration files into engine configuration.

PURPOSE:
  The rating weights, caps, pool rate and window lengths are a calibration
  table, not code. The factory reads that table from JSON or TOML and
  produces rating.Config and compensation.Config values, so operators can
  retune scoring without a rebuild.

FILE SCHEMA (TOML shown, JSON uses the same keys):
  base                 = 50.0
  pool_rate            = 0.45
  share_scale          = 8
  week_start           = "monday"
  base_window_days     = 30
  vacation_window_days = 90

  [factors.weekly_hours]
  points_per_unit = 0.5
  cap             = 20.0

  [factors.weekly_sick_days]
  points_per_unit = 2.0
  cap             = 10.0

  Weights and caps are floats; write them with a decimal point.

KEY FEATURES:
  - Every key is optional; missing keys keep the built-in default
  - Unknown factor names are rejected, not ignored
  - The result is validated; failures wrap generic.ErrInvalidCalibration

USAGE:
  cal, err := factory.LoadCalibration("calibration.toml")
  if err != nil {
      log.Fatal(err)
  }
  cal.Apply(pipeline)

SEE ALSO:
  - rating/config.go: The calibration table and its defaults
  - compensation/types.go: Split parameters
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

// CalibrationJSON is the file representation of a calibration table.
type CalibrationJSON struct {
	Base               *float64              `json:"base,omitempty" toml:"base,omitempty"`
	PoolRate           *float64              `json:"pool_rate,omitempty" toml:"pool_rate,omitempty"`
	ShareScale         *int32                `json:"share_scale,omitempty" toml:"share_scale,omitempty"`
	WeekStart          string                `json:"week_start,omitempty" toml:"week_start,omitempty"`
	BaseWindowDays     *int                  `json:"base_window_days,omitempty" toml:"base_window_days,omitempty"`
	VacationWindowDays *int                  `json:"vacation_window_days,omitempty" toml:"vacation_window_days,omitempty"`
	Factors            map[string]FactorJSON `json:"factors,omitempty" toml:"factors,omitempty"`
}

// FactorJSON overrides one factor. Omitted fields keep the default.
type FactorJSON struct {
	PointsPerUnit *float64 `json:"points_per_unit,omitempty" toml:"points_per_unit,omitempty"`
	Cap           *float64 `json:"cap,omitempty" toml:"cap,omitempty"`
}

// =============================================================================
// CALIBRATION
// =============================================================================

// Calibration is everything the pipeline reads from the table.
type Calibration struct {
	Rating             rating.Config
	Split              compensation.Config
	WeekStart          time.Weekday
	BaseWindowDays     int
	VacationWindowDays int
}

// DefaultCalibration is the built-in table.
func DefaultCalibration() Calibration {
	return Calibration{
		Rating:             rating.DefaultConfig(),
		Split:              compensation.DefaultConfig(),
		WeekStart:          generic.DefaultWeekStart,
		BaseWindowDays:     rating.DefaultBaseWindowDays,
		VacationWindowDays: rating.DefaultVacationWindowDays,
	}
}

// Apply installs the calibration on a pipeline.
func (c Calibration) Apply(p *rating.Pipeline) {
	p.Config = c.Rating
	p.Split = c.Split
	p.WeekStart = c.WeekStart
	p.BaseWindowDays = c.BaseWindowDays
	p.VacationWindowDays = c.VacationWindowDays
}

// Validate checks every parameter.
func (c Calibration) Validate() error {
	if err := c.Rating.Validate(); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidCalibration, err)
	}
	if c.Split.PoolRate.IsNegative() || c.Split.PoolRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: pool_rate %s outside [0, 1]", generic.ErrInvalidCalibration, c.Split.PoolRate)
	}
	if c.Split.ShareScale < 0 {
		return fmt.Errorf("%w: negative share_scale %d", generic.ErrInvalidCalibration, c.Split.ShareScale)
	}
	if c.BaseWindowDays < 1 || c.VacationWindowDays < 1 {
		return fmt.Errorf("%w: window lengths must be at least one day", generic.ErrInvalidCalibration)
	}
	return nil
}

// =============================================================================
// FACTORY
// =============================================================================

// CalibrationFactory builds calibrations from their file forms.
type CalibrationFactory struct{}

// NewCalibrationFactory creates a new calibration factory.
func NewCalibrationFactory() *CalibrationFactory {
	return &CalibrationFactory{}
}

// ParseJSON parses a JSON calibration table.
func (f *CalibrationFactory) ParseJSON(data []byte) (Calibration, error) {
	var cj CalibrationJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return Calibration{}, fmt.Errorf("%w: parse JSON: %v", generic.ErrInvalidCalibration, err)
	}
	return f.FromJSON(cj)
}

// ParseTOML parses a TOML calibration table.
func (f *CalibrationFactory) ParseTOML(data []byte) (Calibration, error) {
	var cj CalibrationJSON
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cj); err != nil {
		return Calibration{}, fmt.Errorf("%w: parse TOML: %v", generic.ErrInvalidCalibration, err)
	}
	return f.FromJSON(cj)
}

// FromJSON overlays cj on the defaults and validates the result.
func (f *CalibrationFactory) FromJSON(cj CalibrationJSON) (Calibration, error) {
	cal := DefaultCalibration()

	if cj.Base != nil {
		cal.Rating.Base = decimal.NewFromFloat(*cj.Base)
	}
	if cj.PoolRate != nil {
		cal.Split.PoolRate = decimal.NewFromFloat(*cj.PoolRate)
	}
	if cj.ShareScale != nil {
		cal.Split.ShareScale = *cj.ShareScale
	}
	if cj.WeekStart != "" {
		wd, err := parseWeekday(cj.WeekStart)
		if err != nil {
			return Calibration{}, err
		}
		cal.WeekStart = wd
	}
	if cj.BaseWindowDays != nil {
		cal.BaseWindowDays = *cj.BaseWindowDays
	}
	if cj.VacationWindowDays != nil {
		cal.VacationWindowDays = *cj.VacationWindowDays
	}

	for name, fj := range cj.Factors {
		factor := rating.Factor(name)
		current, ok := cal.Rating.FactorConfigFor(factor)
		if !ok {
			return Calibration{}, fmt.Errorf("%w: unknown factor %q", generic.ErrInvalidCalibration, name)
		}
		if fj.PointsPerUnit != nil {
			current.PointsPerUnit = decimal.NewFromFloat(*fj.PointsPerUnit)
		}
		if fj.Cap != nil {
			current.Cap = decimal.NewFromFloat(*fj.Cap)
		}
		cal.Rating.SetFactor(factor, current)
	}

	if err := cal.Validate(); err != nil {
		return Calibration{}, err
	}
	return cal, nil
}

// ToJSON renders a calibration with every key filled in.
func (f *CalibrationFactory) ToJSON(c Calibration) CalibrationJSON {
	base, _ := c.Rating.Base.Float64()
	poolRate, _ := c.Split.PoolRate.Float64()
	scale := c.Split.ShareScale
	baseDays, vacDays := c.BaseWindowDays, c.VacationWindowDays

	cj := CalibrationJSON{
		Base:               &base,
		PoolRate:           &poolRate,
		ShareScale:         &scale,
		WeekStart:          strings.ToLower(c.WeekStart.String()),
		BaseWindowDays:     &baseDays,
		VacationWindowDays: &vacDays,
		Factors:            make(map[string]FactorJSON),
	}
	for _, factor := range c.Rating.ScoredFactors() {
		fc, _ := c.Rating.FactorConfigFor(factor)
		perUnit, _ := fc.PointsPerUnit.Float64()
		limit, _ := fc.Cap.Float64()
		cj.Factors[string(factor)] = FactorJSON{PointsPerUnit: &perUnit, Cap: &limit}
	}
	return cj
}

// LoadCalibration reads a calibration file. ".toml" files are read as TOML,
// anything else as JSON. An empty path yields the defaults.
func LoadCalibration(path string) (Calibration, error) {
	if path == "" {
		return DefaultCalibration(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("failed to read calibration: %w", err)
	}

	f := NewCalibrationFactory()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return f.ParseTOML(data)
	}
	return f.ParseJSON(data)
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) || strings.EqualFold(d.String()[:3], s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown week_start %q", generic.ErrInvalidCalibration, s)
}
