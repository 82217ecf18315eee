package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitual/internal/keyring"
)

// TestEndToEndWorkflow builds the binary and drives a full session against a
// SQLite store under a temporary home. The session token lives in the OS
// keyring, so the test needs one.
func TestEndToEndWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	if !keyring.IsAvailable() {
		t.Skip("OS keyring unavailable; sessions cannot persist between commands")
	}

	tempDir := t.TempDir()
	cliPath := filepath.Join(tempDir, "habitual")
	build := exec.Command("go", "build", "-o", cliPath, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\nOutput: %s", err, out)
	}

	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "HABITUAL_") {
			env = append(env, e)
		}
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		"HABITUAL_TIMEZONE=UTC",
		"HABITUAL_PASSWORD=correct-horse",
	)

	runCmd(t, cliPath, env, "init")
	out := runCmd(t, cliPath, env, "signup", "Ada", "e2e-ada@example.com")
	assertContains(t, out, "Signed up as")
	t.Cleanup(func() {
		cmd := exec.Command(cliPath, "signout")
		cmd.Env = env
		_ = cmd.Run()
	})

	runCmd(t, cliPath, env, "habit", "add", "Water", "--goal", "8", "--unit", "glasses")
	runCmd(t, cliPath, env, "habit", "add", "Long run", "--weekly", "--repeat", "weekly")

	out = runCmd(t, cliPath, env, "log", "water", "3")
	assertContains(t, out, "Logged Water: 3/8 (38%)")

	out = runCmd(t, cliPath, env, "due")
	assertContains(t, out, "Water")
	assertContains(t, out, "Long run")

	out = runCmd(t, cliPath, env, "stats")
	assertContains(t, out, "Completed: 0/2 (0%)")

	runCmd(t, cliPath, env, "backup", "create")
	out = runCmd(t, cliPath, env, "doctor")
	assertContains(t, out, "All diagnostics passed!")

	out = runCmd(t, cliPath, env, "signout")
	assertContains(t, out, "Signed out")
	out = runCmd(t, cliPath, env, "whoami")
	assertContains(t, out, "Not signed in.")

	out = runCmd(t, cliPath, env, "signin", "e2e-ada@example.com")
	assertContains(t, out, "(2 habits)")
	runCmd(t, cliPath, env, "signout")
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}
