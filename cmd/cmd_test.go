package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgPath, layoutDay, layoutFormat, availFormat, availDays = "", "", "text", "", nil
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLayoutCommand(t *testing.T) {
	feed := writeTemp(t, "feed.json", `[{"day": "Monday", "hours": [
		{"time": "09:00", "roles": {"Server": ["Alice", "Bob"]}},
		{"time": "10:00", "roles": {"Server": ["Alice"]}}]}]`)
	out, err := execute(t, "layout", "--feed", feed, "--day", "Monday", "--format", "csv")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 csv lines, got %q", out)
	}
	if lines[1] != "Monday,Server,0,Alice,09:00,11:00" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestAvailabilityNormalizeCommand(t *testing.T) {
	doc := writeTemp(t, "alice.yaml", "mon:\n  unavailable: [\"08:00-09:00\", \"09:00-10:00\"]\n")
	out, err := execute(t, "availability", "normalize", "--file", doc, "--format", "json")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !strings.Contains(out, `"Monday"`) || !strings.Contains(out, `"08:00-10:00"`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAvailabilityGridCommand(t *testing.T) {
	doc := writeTemp(t, "alice.json", `{"Friday": {"preferred": ["08:00-08:30"]}}`)
	out, err := execute(t, "availability", "grid", "--file", doc, "--day", "Fri")
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if !strings.Contains(out, "08:00   + ") || !strings.Contains(out, "08:30   . ") {
		t.Fatalf("unexpected grid %q", out)
	}
}
