package habits

import (
	"math"
	"time"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/recurrence"
	"github.com/julianstephens/habitual/internal/storage"
)

// EncodeHabit returns the stored document form of h.
func EncodeHabit(h models.Habit, cal calendar.Calendar) map[string]any {
	return map[string]any{
		constants.FieldID:         h.ID,
		constants.FieldName:       h.Name,
		constants.FieldLabel:      h.Label,
		constants.FieldColorIndex: h.ColorIndex,
		constants.FieldProgress:   h.Progress,
		constants.FieldGoal:       h.Goal,
		constants.FieldUnit:       h.Unit,
		constants.FieldStartDate:  cal.FormatDate(h.StartDate),
		constants.FieldRepeatRule: recurrence.EncodeRule(h.HabitRule()),
		constants.FieldIsWeekly:   h.IsWeekly,
	}
}

// DecodeHabit rebuilds a habit from a stored document. The document id is
// authoritative over any id field. An unknown repeat rule decodes as Daily;
// every other malformed field is a *errors.DecodeError.
func DecodeHabit(doc storage.Document, cal calendar.Calendar) (models.Habit, error) {
	f := fieldReader{path: doc.Path, fields: doc.Fields}

	h := models.Habit{ID: doc.ID}
	h.Name = f.str(constants.FieldName, true)
	h.Label = f.str(constants.FieldLabel, false)
	h.Unit = f.str(constants.FieldUnit, false)
	h.ColorIndex = f.count(constants.FieldColorIndex)
	h.Progress = f.count(constants.FieldProgress)
	h.Goal = f.count(constants.FieldGoal)
	h.IsWeekly = f.boolean(constants.FieldIsWeekly)
	h.Rule = recurrence.DecodeRule(doc.Fields[constants.FieldRepeatRule])

	if raw := f.str(constants.FieldStartDate, true); f.err == nil {
		start, err := parseStartDate(raw, cal)
		if err != nil {
			f.fail("startDate %q is not a date", raw)
		}
		h.StartDate = start
	}

	if f.err == nil && h.ColorIndex >= constants.PaletteSize {
		f.fail("colorIndex %d is outside the palette", h.ColorIndex)
	}
	if f.err != nil {
		return models.Habit{}, f.err
	}
	return h, nil
}

// DecodeUser builds a user from a profile document. Missing fields are empty.
func DecodeUser(uid string, doc storage.Document) models.User {
	name, _ := doc.Fields[constants.FieldName].(string)
	email, _ := doc.Fields[constants.FieldEmail].(string)
	return models.User{ID: uid, Name: name, Email: email}
}

func parseStartDate(raw string, cal calendar.Calendar) (time.Time, error) {
	if t, err := cal.ParseDate(raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return cal.StartOfDay(t), nil
}

// fieldReader records the first decode failure and turns later reads into
// no-ops.
type fieldReader struct {
	path   string
	fields map[string]any
	err    error
}

func (r *fieldReader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = apperrors.Decodef(r.path, format, args...)
	}
}

func (r *fieldReader) str(key string, required bool) string {
	v, ok := r.fields[key]
	if !ok || v == nil {
		if required {
			r.fail("missing %s", key)
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail("%s has type %T, want string", key, v)
		return ""
	}
	if required && s == "" {
		r.fail("empty %s", key)
	}
	return s
}

// count reads a non-negative integer. Missing means zero.
func (r *fieldReader) count(key string) int {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return 0
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		r.fail("%s has type %T, want number", key, v)
		return 0
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		r.fail("%s must be a non-negative integer, got %v", key, n)
		return 0
	}
	return int(n)
}

func (r *fieldReader) boolean(key string) bool {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail("%s has type %T, want bool", key, v)
	}
	return b
}
