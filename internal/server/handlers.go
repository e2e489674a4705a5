package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/tracker"
	"github.com/mj1618/composebox/internal/transform"
)

// ErrNoTransformer is returned by the transform tool when no LLM provider
// could be configured.
var ErrNoTransformer = errors.New("no LLM provider configured")

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("yaml encode: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

// toError reports err as a tool error. Permission and not-running errors are
// user-visible as they are; anything else is prefixed with the tool name.
func toError(tool string, err error) *mcp.CallToolResult {
	if platform.IsUserVisible(err) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", tool, err))
}

func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	app, err := request.RequireString("app")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ScanAndLocate(ctx, app)
	if err != nil {
		return toError("scan", err), nil
	}

	elements := res.Snapshot().Elements
	if roles := splitList(request.GetString("roles", "")); len(roles) > 0 {
		elements = model.FilterByRoles(elements, roles)
	}
	if text := request.GetString("text", ""); text != "" {
		elements = model.FilterByText(elements, text)
	}
	if request.GetBool("focused", false) {
		elements = model.FilterByFocused(elements)
	}
	if elements == nil {
		elements = []model.ElementDescriptor{}
	}

	out := output.ScanResult{
		App:      res.App,
		BundleID: res.BundleID,
		ScanID:   res.ScanID,
		TS:       res.Snapshot().CapturedAt.Unix(),
		Count:    res.Elements,
		Elements: elements,
	}
	if res.Found {
		out.Located = &res.Located
	}
	return toText(out), nil
}

func (s *Server) handleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	app, err := request.RequireString("app")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ScanAndLocate(ctx, app)
	if err != nil {
		return toError("locate", err), nil
	}
	return toText(res), nil
}

func (s *Server) handlePosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	app, err := request.RequireString("app")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ScanAndLocate(ctx, app)
	if err != nil {
		return toError("position", err), nil
	}
	if !res.Found {
		return mcp.NewToolResultError(fmt.Sprintf("position: %s: %v", res.App, tracker.ErrNoComposeBox)), nil
	}
	pt, err := s.svc.PositionOverlay(ctx, res.App, res.Located)
	if err != nil {
		return toError("position", err), nil
	}
	out := output.PositionResult{
		App:      res.App,
		Source:   string(tracker.SourceScan),
		Strategy: res.Located.Strategy,
		Element:  res.Located.Element.ID,
		Point:    pt,
	}
	if screen, err := s.svc.Host().MainScreenSize(); err == nil {
		out.Screen = &screen
	}
	return toText(out), nil
}

func (s *Server) handleCapture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	app, err := request.RequireString("app")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Capture(ctx, app)
	if err != nil {
		return toError("capture", err), nil
	}
	return toText(c), nil
}

// transformResult is the output of the transform tool.
type transformResult struct {
	App     string `yaml:"app,omitempty"`
	Mode    string `yaml:"mode"`
	Input   string `yaml:"input"`
	Applied bool   `yaml:"applied"`

	transform.Result `yaml:",inline"`
}

func (s *Server) handleTransform(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.transformer == nil {
		return mcp.NewToolResultError(ErrNoTransformer.Error()), nil
	}
	app := request.GetString("app", "")
	text := request.GetString("text", "")
	apply := request.GetBool("apply", false)
	mode := transform.Mode(request.GetString("mode", string(transform.ModeGrammar)))
	if !mode.IsValid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown mode %q (use grammar or translate)", mode)), nil
	}
	if apply && app == "" {
		return mcp.NewToolResultError("apply requires app"), nil
	}

	if text == "" {
		if app == "" {
			return mcp.NewToolResultError("text or app is required"), nil
		}
		c, err := s.svc.Capture(ctx, app)
		if err != nil {
			return toError("transform", err), nil
		}
		text = c.Text
	}

	res, err := s.transformer.Transform(ctx, transform.Request{
		Text:        text,
		Instruction: request.GetString("instruction", ""),
		Mode:        mode,
		Language:    request.GetString("language", ""),
	})
	if err != nil {
		return toError("transform", err), nil
	}

	out := transformResult{App: app, Mode: string(mode), Input: text, Result: res}
	if apply {
		if err := s.svc.Apply(ctx, app, res.ProcessedText); err != nil {
			return toError("apply", err), nil
		}
		out.Applied = true
	}
	return toText(out), nil
}

func (s *Server) handlePlacement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	app := request.GetString("app", "")
	args := request.GetArguments()
	_, hasX := args["x"]
	_, hasY := args["y"]

	if app == "" {
		all, err := s.svc.Store().List(ctx)
		if err != nil {
			return toError("placement", err), nil
		}
		return toText(output.NewPlacementList(s.svc.Config().Placement.Backend, all)), nil
	}

	if hasX || hasY {
		if !hasX || !hasY {
			return mcp.NewToolResultError("placement: both x and y are required to set"), nil
		}
		pt := model.Point{X: request.GetFloat("x", 0), Y: request.GetFloat("y", 0)}
		if err := s.svc.Store().Save(ctx, app, pt); err != nil {
			return toError("placement", err), nil
		}
		return toText(output.Placement{App: app, Point: pt}), nil
	}

	pt, ok, err := s.svc.SavedPlacement(ctx, app)
	if err != nil {
		return toError("placement", err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("placement: no saved placement for %q", app)), nil
	}
	return toText(output.Placement{App: app, Point: pt}), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
