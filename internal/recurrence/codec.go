package recurrence

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// EncodeRule returns the tagged document form of rule:
// {"type": ..., "customDays": [...]}, customDays only for custom weekdays.
func EncodeRule(rule models.Rule) map[string]any {
	if rule == nil {
		rule = models.Daily{}
	}
	out := map[string]any{constants.FieldRuleType: string(rule.Type())}
	if custom, ok := rule.(models.CustomWeekdays); ok {
		out[constants.FieldCustomDays] = custom.Days.Ordinals()
	}
	return out
}

// DecodeRule rebuilds a rule from its document form. It never fails: an
// unknown or missing type is Daily, and invalid day ordinals are dropped.
func DecodeRule(v any) models.Rule {
	m, ok := v.(map[string]any)
	if !ok {
		return models.Daily{}
	}
	typ, _ := m[constants.FieldRuleType].(string)
	switch models.RuleType(typ) {
	case models.RuleDaily:
		return models.Daily{}
	case models.RuleWeekdays:
		return models.Weekdays{}
	case models.RuleWeekends:
		return models.Weekends{}
	case models.RuleWeekly:
		return models.Weekly{}
	case models.RuleOneTime:
		return models.OneTime{}
	case models.RuleCustomWeekdays:
		return models.CustomWeekdays{Days: decodeDays(m[constants.FieldCustomDays])}
	default:
		return models.Daily{}
	}
}

func decodeDays(v any) models.WeekdaySet {
	var set models.WeekdaySet
	switch days := v.(type) {
	case []any:
		for _, d := range days {
			if n, ok := ordinal(d); ok {
				set = set.Add(models.Weekday(n))
			}
		}
	case []int:
		for _, n := range days {
			set = set.Add(models.Weekday(n))
		}
	}
	return set
}

func ordinal(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// ParseRule parses the command line form of a rule: daily, weekdays,
// weekends, weekly, once, or custom:<day>[,<day>...].
func ParseRule(s string) (models.Rule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "daily":
		return models.Daily{}, nil
	case "weekdays":
		return models.Weekdays{}, nil
	case "weekends":
		return models.Weekends{}, nil
	case "weekly":
		return models.Weekly{}, nil
	case "once", "one-time", "onetime":
		return models.OneTime{}, nil
	}

	list, ok := strings.CutPrefix(s, "custom:")
	if !ok {
		return nil, fmt.Errorf("unknown repeat rule %q", s)
	}
	var set models.WeekdaySet
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		wd, ok := models.ParseWeekday(part)
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		set = set.Add(wd)
	}
	return models.CustomWeekdays{Days: set}, nil
}

// FormatRule renders rule in the form accepted by ParseRule.
func FormatRule(rule models.Rule) string {
	switch r := rule.(type) {
	case nil, models.Daily:
		return "daily"
	case models.Weekdays:
		return "weekdays"
	case models.Weekends:
		return "weekends"
	case models.Weekly:
		return "weekly"
	case models.OneTime:
		return "once"
	case models.CustomWeekdays:
		names := make([]string, 0, r.Days.Len())
		for _, d := range r.Days.Days() {
			names = append(names, strings.ToLower(d.Short()))
		}
		return "custom:" + strings.Join(names, ",")
	default:
		return "unknown"
	}
}

// DescribeRule returns a human readable description, e.g. "every Mon, Fri".
func DescribeRule(rule models.Rule) string {
	switch r := rule.(type) {
	case nil, models.Daily:
		return "every day"
	case models.Weekdays:
		return "every weekday"
	case models.Weekends:
		return "every weekend"
	case models.Weekly:
		return "every week"
	case models.OneTime:
		return "once"
	case models.CustomWeekdays:
		if r.Days.Empty() {
			return "never"
		}
		names := make([]string, 0, r.Days.Len())
		for _, d := range r.Days.Days() {
			names = append(names, d.Short())
		}
		return "every " + strings.Join(names, ", ")
	default:
		return "unknown"
	}
}
