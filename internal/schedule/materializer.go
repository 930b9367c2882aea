// Package schedule turns declarative availability (recurring rules minus
// exceptions, plus one-off custom slots) into the concrete slot list for a
// month. Materialization is a pure projection: it never writes, and calling it
// twice over the same inputs yields identical output.
package schedule

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/consultahub/consulta-scheduler/internal/calendar"
	"github.com/consultahub/consulta-scheduler/internal/models"
)

type Origin string

const (
	OriginRecurring Origin = "recurring"
	OriginCustom    Origin = "custom"
)

// Slot is one bookable (provider, date, time) instant.
type Slot struct {
	ProviderID uint   `json:"provider_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Origin     Origin `json:"origin"`
	Available  bool   `json:"available"`
}

type Input struct {
	ProviderID   uint
	Rules        []models.AvailabilityRule
	CustomSlots  []models.CustomSlot
	Reservations []models.Reservation

	Year  int
	Month time.Month

	// Now anchors the "strictly past days are skipped" check; Loc is the
	// provider's timezone.
	Now time.Time
	Loc *time.Location
}

type Materializer struct {
	logger zerolog.Logger
}

func NewMaterializer(logger zerolog.Logger) *Materializer {
	return &Materializer{logger: logger}
}

// Materialize expands rules and custom slots into the month's slot list,
// ordered by (date, time). Custom slots win over rule-derived ones on the same
// instant; reserved slots stay in the list flagged unavailable so calendars can
// still render them. One malformed rule is skipped with a warning, never fatal.
func (m *Materializer) Materialize(in Input) []Slot {
	monthStart, monthEnd := calendar.MonthBounds(in.Year, in.Month, in.Loc)

	byKey := make(map[string]Slot)

	for i := range in.Rules {
		m.expandRule(&in.Rules[i], in, monthStart, monthEnd, byKey)
	}

	for _, cs := range in.CustomSlots {
		day, err := calendar.ParseDate(cs.Date, in.Loc)
		if err != nil || !calendar.IsBookableTime(cs.Time) {
			m.logger.Warn().
				Uint("slot_id", cs.ID).
				Uint("provider_id", in.ProviderID).
				Msg("skipping malformed custom slot")
			continue
		}
		if day.Before(monthStart) || !day.Before(monthEnd) {
			continue
		}
		if calendar.DayIsBefore(day, in.Now) {
			continue
		}

		// Custom overrides recurring on the same instant.
		byKey[cs.Date+" "+cs.Time] = Slot{
			ProviderID: in.ProviderID,
			Date:       cs.Date,
			Time:       cs.Time,
			Origin:     OriginCustom,
			Available:  true,
		}
	}

	for _, res := range in.Reservations {
		key := res.Date + " " + res.Time
		if s, ok := byKey[key]; ok {
			s.Available = false
			byKey[key] = s
		}
	}

	out := make([]Slot, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})

	return out
}

func (m *Materializer) expandRule(
	r *models.AvailabilityRule,
	in Input,
	monthStart time.Time,
	monthEnd time.Time,
	byKey map[string]Slot,
) {

	if err := ValidateRule(r); err != nil {
		m.logger.Warn().
			Uint("rule_id", r.ID).
			Uint("provider_id", in.ProviderID).
			Str("time_of_day", r.TimeOfDay).
			Msg("skipping invalid availability rule")
		return
	}

	days, _ := RuleDays(r)
	exceptions, _ := RuleExceptions(r)

	ruleStart, _ := calendar.ParseDate(r.StartDate, in.Loc)
	ruleEnd, _ := calendar.ParseDate(r.EndDate, in.Loc)

	for day := monthStart; day.Before(monthEnd); day = day.AddDate(0, 0, 1) {
		if day.Before(ruleStart) || day.After(ruleEnd) {
			continue
		}
		if !days[day.Weekday()] {
			continue
		}
		if calendar.DayIsBefore(day, in.Now) {
			continue
		}

		date := day.Format(calendar.DateLayout)
		if exceptions[date] {
			continue
		}

		byKey[date+" "+r.TimeOfDay] = Slot{
			ProviderID: in.ProviderID,
			Date:       date,
			Time:       r.TimeOfDay,
			Origin:     OriginRecurring,
			Available:  true,
		}
	}
}
