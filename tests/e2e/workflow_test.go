package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type logOutput struct {
	Date        string `json:"date"`
	Submissions []struct {
		ID      string `json:"id"`
		StoreID string `json:"store_id"`
		TaskID  string `json:"task_id"`
		Status  string `json:"status"`
		Points  int    `json:"points"`
	} `json:"submissions"`
}

type trailOutput []struct {
	Action      string `json:"action"`
	DeltaPoints int    `json:"delta_points"`
	Actor       string `json:"actor"`
}

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("STOREDUTY_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "storeduty")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it with: go build -o bin/storeduty ./cmd/storeduty", cliPath)
	}

	// Create temp home for isolation
	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "STOREDUTY_") {
			env = append(env, e)
		}
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("STOREDUTY_CONFIG=%s", filepath.Join(tempDir, "storeduty", "storeduty.db")),
		fmt.Sprintf("STOREDUTY_EVIDENCE=%s", filepath.Join(tempDir, "evidence")),
		"STOREDUTY_ACTOR=e2e",
	)

	// 2. Initialize
	runCmd(t, cliPath, env, "init")

	// 3. Submit from two stores
	runCmd(t, cliPath, env, "submit", "--no-input", "--store=tainan-main", "--employee=Alice", "--task=open-cleaning", "--confirm")
	runCmd(t, cliPath, env, "submit", "--no-input", "--store=yongkang", "--employee=Bob", "--task=floor-spot-count", "--confirm")

	// A task without confirmation is rejected
	cmd := exec.Command(cliPath, "submit", "--no-input", "--store=ximen", "--employee=Carol", "--task=open-cleaning")
	cmd.Env = env
	if out, err := cmd.CombinedOutput(); err == nil {
		t.Fatalf("Unconfirmed submission should fail.\nOutput: %s", out)
	}

	// 4. Read back the log
	var log logOutput
	runJSON(t, cliPath, env, &log, "log", "--json")
	if len(log.Submissions) != 2 {
		t.Fatalf("Expected 2 submissions, got %d", len(log.Submissions))
	}

	var target string
	for _, s := range log.Submissions {
		if s.StoreID == "tainan-main" {
			target = s.ID
		}
	}
	if target == "" {
		t.Fatal("Submission for tainan-main not found in log")
	}

	// 5. Audit it twice and check the trail
	runCmd(t, cliPath, env, "audit", target, "major-fault")
	runCmd(t, cliPath, env, "audit", target, "minor-fault", "--note=photo blurry")

	var trail trailOutput
	runJSON(t, cliPath, env, &trail, "trail", target, "--json")
	if len(trail) != 2 {
		t.Fatalf("Expected 2 adjustments, got %d", len(trail))
	}
	if trail[0].Actor != "e2e" {
		t.Errorf("Expected actor e2e, got %q", trail[0].Actor)
	}

	runJSON(t, cliPath, env, &log, "log", "--json")
	for _, s := range log.Submissions {
		if s.ID == target && s.Points != -3 {
			t.Errorf("Expected -3 points after audits, got %d", s.Points)
		}
	}

	// 6. Reports and export
	runCmd(t, cliPath, env, "board")
	runCmd(t, cliPath, env, "penalties")
	runCmd(t, cliPath, env, "ranking")
	exportPath := filepath.Join(tempDir, "report.xlsx")
	runCmd(t, cliPath, env, "export", exportPath)
	if _, err := os.Stat(exportPath); err != nil {
		t.Errorf("Export workbook not written: %v", err)
	}

	// 7. Backups
	runCmd(t, cliPath, env, "backup", "create")
	runCmd(t, cliPath, env, "backup", "list")
	runCmd(t, cliPath, env, "doctor")
}

func runCmd(t *testing.T, path string, env []string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return out
}

func runJSON(t *testing.T, path string, env []string, v interface{}, args ...string) {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v", path, args, err)
	}
	if err := json.Unmarshal(out, v); err != nil {
		t.Fatalf("Failed to parse output of %v: %v\nOutput: %s", args, err, out)
	}
}
