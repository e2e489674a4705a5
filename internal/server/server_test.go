package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/platform/fixture"
	"github.com/mj1618/composebox/internal/tracker"
	"github.com/mj1618/composebox/internal/transform"
)

// upperTransformer upper-cases its input.
type upperTransformer struct {
	last transform.Request
	err  error
}

func (u *upperTransformer) Transform(_ context.Context, req transform.Request) (transform.Result, error) {
	u.last = req
	if u.err != nil {
		return transform.Result{}, u.err
	}
	out := strings.ToUpper(req.Text)
	return transform.Result{ProcessedText: out, Changes: transform.Changes(req.Text, out)}, nil
}

func newTestServer(t *testing.T, tr transform.Transformer) (*Server, *fixture.Host) {
	t.Helper()
	h, err := fixture.Sample("desktop")
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Placement.Backend = "memory"
	svc := tracker.NewService(h, cfg, nil)
	return New(svc, tr), h
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleScan(t *testing.T) {
	s, _ := newTestServer(t, nil)
	res, err := s.handleScan(context.Background(), call("scan", map[string]interface{}{
		"app":   "teams",
		"roles": "text-area, button",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("scan error: %s", resultText(t, res))
	}
	var out output.ScanResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 8 {
		t.Errorf("count = %d, want 8", out.Count)
	}
	if len(out.Elements) != 2 {
		t.Errorf("filtered elements = %d, want 2", len(out.Elements))
	}
	if out.Located == nil || out.Located.Element.Identifier != "ckeditor-compose" {
		t.Errorf("located = %+v", out.Located)
	}
}

func TestHandleScan_MissingApp(t *testing.T) {
	s, _ := newTestServer(t, nil)
	res, err := s.handleScan(context.Background(), call("scan", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error without app")
	}
}

func TestHandleLocate_Errors(t *testing.T) {
	s, h := newTestServer(t, nil)
	ctx := context.Background()

	res, _ := s.handleLocate(ctx, call("locate", map[string]interface{}{"app": "slack"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "unknown application") {
		t.Errorf("unknown app: %s", resultText(t, res))
	}

	h.SetTrusted(false)
	res, _ = s.handleLocate(ctx, call("locate", map[string]interface{}{"app": "teams"}))
	if !res.IsError || !strings.HasPrefix(resultText(t, res), "accessibility permission required") {
		t.Errorf("untrusted: %s", resultText(t, res))
	}
}

func TestHandlePosition_SavesPlacement(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	res, err := s.handlePosition(ctx, call("position", map[string]interface{}{"app": "teams"}))
	if err != nil {
		t.Fatal(err)
	}
	var out output.PositionResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Point.X != 1310 || out.Point.Y != 270 {
		t.Errorf("point = %+v, want (1310, 270)", out.Point)
	}

	res, _ = s.handlePlacement(ctx, call("placement", map[string]interface{}{"app": "teams"}))
	var p output.Placement
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &p); err != nil {
		t.Fatal(err)
	}
	if p.Point != out.Point {
		t.Errorf("saved = %+v, want %+v", p.Point, out.Point)
	}
}

func TestHandlePlacement(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	res, _ := s.handlePlacement(ctx, call("placement", map[string]interface{}{"app": "notes"}))
	if !res.IsError {
		t.Error("expected error for missing placement")
	}

	res, _ = s.handlePlacement(ctx, call("placement", map[string]interface{}{"app": "notes", "x": 10.0}))
	if !res.IsError {
		t.Error("expected error when only x is given")
	}

	for _, app := range []string{"teams", "notes"} {
		res, _ = s.handlePlacement(ctx, call("placement", map[string]interface{}{"app": app, "x": 5.0, "y": 7.0}))
		if res.IsError {
			t.Fatalf("set %s: %s", app, resultText(t, res))
		}
	}

	res, _ = s.handlePlacement(ctx, call("placement", nil))
	var list output.PlacementList
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Placements) != 2 || list.Placements[0].App != "notes" || list.Placements[1].App != "teams" {
		t.Errorf("list = %+v", list.Placements)
	}
}

func TestHandleCapture(t *testing.T) {
	s, _ := newTestServer(t, nil)
	res, _ := s.handleCapture(context.Background(), call("capture", map[string]interface{}{"app": "teams"}))
	if res.IsError {
		t.Fatal(resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "i has went to the meeting yesterday") {
		t.Errorf("capture = %s", resultText(t, res))
	}
}

func TestHandleTransform_Apply(t *testing.T) {
	tr := &upperTransformer{}
	s, _ := newTestServer(t, tr)
	ctx := context.Background()

	res, _ := s.handleTransform(ctx, call("transform", map[string]interface{}{
		"app":   "teams",
		"mode":  "grammar",
		"apply": true,
	}))
	if res.IsError {
		t.Fatal(resultText(t, res))
	}
	if tr.last.Text != "i has went to the meeting yesterday" || tr.last.Mode != transform.ModeGrammar {
		t.Errorf("request = %+v", tr.last)
	}

	res, _ = s.handleCapture(ctx, call("capture", map[string]interface{}{"app": "teams"}))
	if !strings.Contains(resultText(t, res), "I HAS WENT TO THE MEETING YESTERDAY") {
		t.Errorf("text not applied: %s", resultText(t, res))
	}
}

func TestHandleTransform_Validation(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestServer(t, nil)
	res, _ := s.handleTransform(ctx, call("transform", map[string]interface{}{"text": "hi"}))
	if !res.IsError || resultText(t, res) != ErrNoTransformer.Error() {
		t.Errorf("no transformer: %s", resultText(t, res))
	}

	tr := &upperTransformer{}
	s, _ = newTestServer(t, tr)
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no input", map[string]interface{}{}},
		{"bad mode", map[string]interface{}{"text": "hi", "mode": "summarize"}},
		{"apply without app", map[string]interface{}{"text": "hi", "apply": true}},
	}
	for _, tt := range tests {
		res, _ := s.handleTransform(ctx, call("transform", tt.args))
		if !res.IsError {
			t.Errorf("%s: expected tool error", tt.name)
		}
	}

	tr.err = errors.New("rate limited")
	res, _ = s.handleTransform(ctx, call("transform", map[string]interface{}{"text": "hi"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "rate limited") {
		t.Errorf("provider error: %s", resultText(t, res))
	}
}

func TestServe_UnsupportedTransport(t *testing.T) {
	s, _ := newTestServer(t, nil)
	if err := s.Serve(context.Background(), Config{Transport: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unsupported transport")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" text-area, ,button,")
	if len(got) != 2 || got[0] != "text-area" || got[1] != "button" {
		t.Errorf("splitList = %q", got)
	}
}
