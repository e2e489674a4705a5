package server

import "github.com/mark3labs/mcp-go/mcp"

func (s *Server) registerTools() {
	// scan
	s.mcp.AddTool(
		mcp.NewTool("scan",
			mcp.WithDescription("Scan the accessibility tree of a registered application. Returns a flat list of elements with IDs, roles, text and geometry, plus the located compose box."),
			mcp.WithString("app", mcp.Required(), mcp.Description("Registered application name (e.g. 'teams', 'notes')")),
			mcp.WithString("roles", mcp.Description("Comma-separated role tags to include (e.g. 'text-area,scroll-area')")),
			mcp.WithString("text", mcp.Description("Only include elements whose text contains this substring")),
			mcp.WithBoolean("focused", mcp.Description("Only include the focused element")),
		),
		s.handleScan,
	)

	// locate
	s.mcp.AddTool(
		mcp.NewTool("locate",
			mcp.WithDescription("Locate the compose box of an application and report which strategy found it"),
			mcp.WithString("app", mcp.Required(), mcp.Description("Registered application name")),
		),
		s.handleLocate,
	)

	// position
	s.mcp.AddTool(
		mcp.NewTool("position",
			mcp.WithDescription("Compute the overlay icon point (bottom-left origin) for an application's compose box and save it as the app's placement"),
			mcp.WithString("app", mcp.Required(), mcp.Description("Registered application name")),
		),
		s.handlePosition,
	)

	// capture
	s.mcp.AddTool(
		mcp.NewTool("capture",
			mcp.WithDescription("Read the current text of an application's compose box"),
			mcp.WithString("app", mcp.Required(), mcp.Description("Registered application name")),
		),
		s.handleCapture,
	)

	// transform
	s.mcp.AddTool(
		mcp.NewTool("transform",
			mcp.WithDescription("Correct grammar or translate text with the configured LLM. Text comes from the 'text' argument or is captured from 'app'."),
			mcp.WithString("text", mcp.Description("Text to transform")),
			mcp.WithString("app", mcp.Description("Capture the text from this application's compose box")),
			mcp.WithString("mode", mcp.Enum("grammar", "translate"), mcp.Description("Built-in instruction (default grammar)")),
			mcp.WithString("language", mcp.Description("Target language for translate")),
			mcp.WithString("instruction", mcp.Description("Custom system prompt; overrides mode")),
			mcp.WithBoolean("apply", mcp.Description("Write the result back into the compose box (requires app)")),
		),
		s.handleTransform,
	)

	// placement
	s.mcp.AddTool(
		mcp.NewTool("placement",
			mcp.WithDescription("Get, set or list saved overlay placements. With app only: get. With app, x and y: set. Without app: list."),
			mcp.WithString("app", mcp.Description("Application key")),
			mcp.WithNumber("x", mcp.Description("Overlay x (bottom-left origin)")),
			mcp.WithNumber("y", mcp.Description("Overlay y (bottom-left origin)")),
		),
		s.handlePlacement,
	)
}
