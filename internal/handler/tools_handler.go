package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolLister exposes the registered tool table.
type ToolLister interface {
	Tools() []mcp.Tool
}

// ToolsHandler lists the tool table outside the JSON-RPC protocol.
type ToolsHandler struct {
	tools ToolLister
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(tools ToolLister) *ToolsHandler {
	return &ToolsHandler{tools: tools}
}

// Register sets up the listing route.
func (h *ToolsHandler) Register(router fiber.Router) {
	router.Get("/tools", h.List)
}

// List returns every tool with its description and input schema.
func (h *ToolsHandler) List(c fiber.Ctx) error {
	tools := h.tools.Tools()
	return c.JSON(fiber.Map{
		"tools": tools,
		"count": len(tools),
	})
}
