package cmd

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/tracker"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"scan", "locate", "position", "placement", "watch", "capture", "transform", "preview", "trust", "serve", "apps", "config"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_RejectsBadFlags(t *testing.T) {
	cfg := writeTestConfig(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--config", cfg, "--format", "xml", "config", "path"}, "unsupported format"},
		{"log level", []string{"--config", cfg, "--log-level", "loud", "config", "path"}, "unsupported log level"},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "config", "path"}, "no such file"},
	}
	for _, tt := range tests {
		_, err := runCLI(t, tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want %q", tt.name, err, tt.want)
		}
	}
}

func TestScanCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "--format", "json",
		"scan", "teams", "--roles", "text-area,text-field")
	if err != nil {
		t.Fatal(err)
	}
	var res output.ScanResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if res.Count != 8 || len(res.Elements) != 2 {
		t.Errorf("count = %d, elements = %d; want 8 and 2", res.Count, len(res.Elements))
	}
	if res.Located == nil || res.Located.Element.Identifier != "ckeditor-compose" {
		t.Errorf("located = %+v", res.Located)
	}
}

func TestLocateCommand_Fallback(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "locate", "--app", "notes")
	if err != nil {
		t.Fatal(err)
	}
	var res tracker.Result
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Located.Strategy != "fallback-scroll-area" {
		t.Errorf("result = %+v", res)
	}
}

func TestLocateCommand_UnknownApp(t *testing.T) {
	_, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "locate", "slack")
	if err == nil || !strings.Contains(err.Error(), "add it to the apps registry") {
		t.Errorf("err = %v", err)
	}
}

func TestPositionCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "position")
	if err != nil {
		t.Fatal(err)
	}
	var res output.PositionResult
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.App != "teams" || res.Source != "scan" || res.Point.X != 1310 || res.Point.Y != 270 {
		t.Errorf("result = %+v", res)
	}
	if res.Screen == nil || res.Screen.Height != 1080 {
		t.Errorf("screen = %+v", res.Screen)
	}
}

func TestPlacementCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	if _, err := runCLI(t, "--config", cfg, "placement", "get", "teams"); err == nil {
		t.Error("expected error for missing placement")
	}
	if _, err := runCLI(t, "--config", cfg, "placement", "set", "teams", "x", "1"); err == nil {
		t.Error("expected error for non-numeric x")
	}
	if _, err := runCLI(t, "--config", cfg, "placement", "set", "teams", "1310", "270"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "--config", cfg, "placement", "set", "notes", "5", "6.5"); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfg, "placement", "get", "teams")
	if err != nil {
		t.Fatal(err)
	}
	var p output.Placement
	if err := yaml.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Point.X != 1310 || p.Point.Y != 270 {
		t.Errorf("placement = %+v", p)
	}

	out, err = runCLI(t, "--config", cfg, "placement", "list")
	if err != nil {
		t.Fatal(err)
	}
	var list output.PlacementList
	if err := yaml.Unmarshal([]byte(out), &list); err != nil {
		t.Fatal(err)
	}
	if list.Backend != "file" || len(list.Placements) != 2 || list.Placements[0].App != "notes" {
		t.Errorf("list = %+v", list)
	}
}

func TestCaptureCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "capture", "teams")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "i has went to the meeting yesterday") {
		t.Errorf("capture output:\n%s", out)
	}
}

func TestTransformCommand(t *testing.T) {
	useStubTransformer(t)
	cfg := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfg, "--fixture", "sample:desktop", "--format", "json",
		"transform", "teams", "--apply")
	if err != nil {
		t.Fatal(err)
	}
	var res TransformResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if res.App != "teams" || !res.Applied || res.ProcessedText != "I HAS WENT TO THE MEETING YESTERDAY" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Changes) == 0 {
		t.Error("expected changes")
	}

	out, err = runCLI(t, "--config", cfg, "--fixture", "sample:desktop", "--format", "json",
		"transform", "--text", "ok", "--mode", "translate")
	if err != nil {
		t.Fatal(err)
	}
	res = TransformResult{}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.App != "" || res.Input != "ok" || res.Mode != "translate" || res.ProcessedText != "OK" {
		t.Errorf("text result = %+v", res)
	}

	if _, err := runCLI(t, "--config", cfg, "--fixture", "sample:desktop", "transform", "--text", "ok", "--mode", "shout"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestAppsCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "--format", "json", "apps")
	if err != nil {
		t.Fatal(err)
	}
	var entries []appEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Name != "teams" || entries[0].Running != "com.microsoft.teams2" || !entries[0].Frontmost {
		t.Errorf("teams = %+v", entries[0])
	}
	if entries[1].Name != "notes" || entries[1].Frontmost || !entries[1].Fallback {
		t.Errorf("notes = %+v", entries[1])
	}
}

func TestTrustCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop", "trust")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "trusted: true" {
		t.Errorf("trust output = %q", out)
	}
}

func TestPreviewCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.png")
	_, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop",
		"preview", "teams", "-o", path, "--scale", "0.25", "--labels", "roles")
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 480 || img.Bounds().Dy() != 270 {
		t.Errorf("size = %v, want 480x270", img.Bounds().Size())
	}
}

func TestWatchCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "--fixture", "sample:desktop",
		"watch", "teams", "--duration", (500 * time.Millisecond).String(), "--no-workspace")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var first tracker.Update
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSONL %q: %v", lines[0], err)
	}
	if first.Kind != tracker.UpdatePosition || first.App != "teams" || first.Source != tracker.SourceScan {
		t.Errorf("first update = %+v", first)
	}
	if first.Point == nil || first.Point.X != 1310 {
		t.Errorf("point = %+v", first.Point)
	}
}

func TestConfigShowCommand(t *testing.T) {
	out, err := runCLI(t, "--config", writeTestConfig(t), "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains([]byte(out), []byte("name: teams")) || !strings.Contains(out, "poll_interval: 1h0m0s") {
		t.Errorf("config show:\n%s", out)
	}
}
