package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/consultahub/consulta-scheduler/internal/calendar"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/models"
)

// RuleDays parses the comma-separated weekday set ("1,3" -> Monday, Wednesday).
func RuleDays(r *models.AvailabilityRule) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(r.DaysOfWeek, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			return nil, httperr.ErrBusiness(httperr.CodeInvalidRule)
		}
		days[time.Weekday(d)] = true
	}
	if len(days) == 0 {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRule)
	}
	return days, nil
}

// RuleExceptions parses the comma-separated exception dates.
func RuleExceptions(r *models.AvailabilityRule) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, part := range strings.Split(r.Exceptions, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := time.Parse(calendar.DateLayout, part); err != nil {
			return nil, httperr.ErrBusiness(httperr.CodeInvalidRule)
		}
		out[part] = true
	}
	return out, nil
}

// ValidateRule checks everything a provider-submitted rule must satisfy before
// it is persisted: a well-formed weekday set, an enumerated time of day and an
// ordered date range.
func ValidateRule(r *models.AvailabilityRule) error {
	if _, err := RuleDays(r); err != nil {
		return err
	}
	if _, err := RuleExceptions(r); err != nil {
		return err
	}

	if !calendar.IsBookableTime(r.TimeOfDay) {
		return httperr.ErrBusiness(httperr.CodeInvalidSlotTime)
	}

	start, err := time.Parse(calendar.DateLayout, r.StartDate)
	if err != nil {
		return httperr.ErrBusiness(httperr.CodeInvalidRule)
	}
	end, err := time.Parse(calendar.DateLayout, r.EndDate)
	if err != nil {
		return httperr.ErrBusiness(httperr.CodeInvalidRule)
	}
	if start.After(end) {
		return httperr.ErrBusiness(httperr.CodeInvalidRule)
	}

	return nil
}
