package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/constants"
)

// ErrInvalidPath is returned for malformed document or collection paths.
var ErrInvalidPath = errors.New("invalid document path")

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func segments(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}
	return parts, nil
}

// SplitDocument splits a document path into its collection path and id.
// Document paths have an even number of segments.
func SplitDocument(path string) (collection, id string, err error) {
	parts, err := segments(path)
	if err != nil {
		return "", "", err
	}
	if len(parts)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q is a collection, not a document", ErrInvalidPath, path)
	}
	return Join(parts[:len(parts)-1]...), parts[len(parts)-1], nil
}

// ValidateCollection checks that path names a collection (odd segments).
func ValidateCollection(path string) error {
	parts, err := segments(path)
	if err != nil {
		return err
	}
	if len(parts)%2 != 1 {
		return fmt.Errorf("%w: %q is a document, not a collection", ErrInvalidPath, path)
	}
	return nil
}

// UserPath is the profile document of a user.
func UserPath(uid string) string {
	return Join(constants.CollectionUsers, uid)
}

// HabitsPath is the collection of a user's habits.
func HabitsPath(uid string) string {
	return Join(constants.CollectionUsers, uid, constants.CollectionHabits)
}

// HabitPath is a single habit document.
func HabitPath(uid, habitID string) string {
	return Join(HabitsPath(uid), habitID)
}

// AccountPath is the credentials document for an email address.
func AccountPath(email string) string {
	return Join(constants.CollectionAccounts, AccountKey(email))
}

// AccountKey normalizes an email into a document id.
func AccountKey(email string) string {
	key := strings.ToLower(strings.TrimSpace(email))
	return strings.ReplaceAll(key, "/", "_")
}

// normalize round-trips fields through JSON so every backend stores and
// returns the same value shapes.
func normalize(fields map[string]any) (map[string]any, error) {
	data, err := MarshalFields(fields)
	if err != nil {
		return nil, err
	}
	return UnmarshalFields(data)
}

// MarshalFields encodes fields for storage.
func MarshalFields(fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("fields are not JSON-compatible: %w", err)
	}
	return data, nil
}

// UnmarshalFields decodes fields stored by MarshalFields.
func UnmarshalFields(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode stored fields: %w", err)
	}
	return out, nil
}
