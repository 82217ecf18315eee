package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingName        ConflictType = "missing_name"
	ConflictNegativeGoal       ConflictType = "negative_goal"
	ConflictNegativeProgress   ConflictType = "negative_progress"
	ConflictInvalidColor       ConflictType = "invalid_color"
	ConflictMissingStartDate   ConflictType = "missing_start_date"
	ConflictEmptyCustomDays    ConflictType = "empty_custom_days"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
)

// Conflict represents a problem found in one or more habits
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit names involved
	HabitIDs    []string
	// Warning conflicts are reported but never block a write.
	Warning bool
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Errors returns the conflicts that must block a write.
func (vr ValidationResult) Errors() []Conflict {
	var out []Conflict
	for _, c := range vr.Conflicts {
		if !c.Warning {
			out = append(out, c)
		}
	}
	return out
}

// Err returns a *ValidationError for the blocking conflicts, or nil.
func (vr ValidationResult) Err() error {
	errs := vr.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Conflicts: errs}
}

// FormatReport returns a human-readable report of all conflicts
func (vr ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		prefix := "-"
		if conflict.Warning {
			prefix = "- warning:"
		}
		fmt.Fprintf(&b, "%s %s\n", prefix, conflict.Description)
	}
	return b.String()
}

// ValidationError is returned when a habit payload cannot be written.
type ValidationError struct {
	Conflicts []Conflict
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.Description)
	}
	return "invalid habit: " + strings.Join(parts, "; ")
}

// Validator validates habit payloads
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabit checks a single habit payload.
func (v *Validator) ValidateHabit(h models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	name := displayName(h)

	add := func(t ConflictType, warning bool, format string, args ...interface{}) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        t,
			Description: fmt.Sprintf(format, args...),
			Items:       []string{name},
			HabitIDs:    idList(h),
			Warning:     warning,
		})
	}

	if strings.TrimSpace(h.Name) == "" {
		add(ConflictMissingName, false, "Habit name is required")
	}
	if h.Goal < 0 {
		add(ConflictNegativeGoal, false, "Habit %q has a negative goal: %d", name, h.Goal)
	}
	if h.Progress < 0 {
		add(ConflictNegativeProgress, false, "Habit %q has negative progress: %d", name, h.Progress)
	}
	if h.ColorIndex < 0 || h.ColorIndex >= constants.PaletteSize {
		add(ConflictInvalidColor, false, "Habit %q has color index %d (must be 0-%d)", name, h.ColorIndex, constants.PaletteSize-1)
	}
	if h.StartDate.IsZero() {
		add(ConflictMissingStartDate, false, "Habit %q has no start date", name)
	}
	if rule, ok := h.Rule.(models.CustomWeekdays); ok && rule.Days.Empty() {
		add(ConflictEmptyCustomDays, true, "Habit %q repeats on no weekdays and will never be due", name)
	}

	return result
}

// ValidateProgress checks a progress value before it is logged.
func (v *Validator) ValidateProgress(value int) error {
	if value < 0 {
		return &ValidationError{Conflicts: []Conflict{{
			Type:        ConflictNegativeProgress,
			Description: fmt.Sprintf("progress must not be negative: %d", value),
		}}}
	}
	return nil
}

// ValidateHabits checks a user's habit list as a whole. Duplicate names are
// reported as warnings.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, h := range habits {
		result.Conflicts = append(result.Conflicts, v.ValidateHabit(h).Conflicts...)
	}

	byName := make(map[string][]string)
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key == "" {
			continue
		}
		byName[key] = append(byName[key], h.ID)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids := byName[name]
		if len(ids) < 2 {
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", name, ids),
			Items:       []string{name},
			HabitIDs:    ids,
			Warning:     true,
		})
	}

	return result
}

func displayName(h models.Habit) string {
	if h.Name != "" {
		return h.Name
	}
	if h.ID != "" {
		return h.ID
	}
	return "(unnamed)"
}

func idList(h models.Habit) []string {
	if h.ID == "" {
		return nil
	}
	return []string{h.ID}
}
