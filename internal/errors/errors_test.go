package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "missing identifier",
			err:      ErrMissingIdentifier,
			expected: "Error: habit has no identifier; it has not been saved yet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "habits")
	if got != "Error: failed to load habits" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestRemoteError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Remote("set", "users/u1/habits/h1", cause)

	if !stderrors.Is(err, cause) {
		t.Error("RemoteError should unwrap to its cause")
	}
	if !IsRemote(fmt.Errorf("add habit: %w", err)) {
		t.Error("IsRemote should see through wrapping")
	}
	want := "set users/u1/habits/h1: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if Remote("query", "", nil) != nil {
		t.Error("Remote(nil) should be nil")
	}
	if got := Remote("query", "", cause).Error(); got != "query: connection refused" {
		t.Errorf("Error() without path = %q", got)
	}
}

func TestDecodeError(t *testing.T) {
	err := Decodef("users/u1/habits/h2", "goal %d is negative", -1)
	if !IsDecode(err) {
		t.Fatal("IsDecode() = false")
	}
	if IsRemote(err) {
		t.Error("decode error reported as remote")
	}
	if err.Error() != "decode users/u1/habits/h2: goal -1 is negative" {
		t.Errorf("Error() = %q", err.Error())
	}
}
