package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arturoeanton/go-module-pack/internal/service"
)

// toolHandler adapts ModuleQueryService to tool calls. Bad arguments become
// error results; store and encoder failures are returned as errors.
type toolHandler struct {
	svc *service.ModuleQueryService
}

func (h *toolHandler) summary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := h.svc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func (h *toolHandler) searchDocstring(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
		Limit *int   `json:"limit"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := service.DefaultSearchLimit
	if args.Limit != nil {
		if *args.Limit < 1 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = *args.Limit
	}

	entries, err := h.svc.SearchDocstrings(ctx, args.Query, limit)
	if err != nil {
		return nil, err
	}
	return textList(entries), nil
}

func (h *toolHandler) sourceCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := requiredString(request, "name")
	if errResult != nil {
		return errResult, nil
	}
	text, err := h.svc.SourceCode(ctx, name)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func (h *toolHandler) docstring(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := requiredString(request, "name")
	if errResult != nil {
		return errResult, nil
	}
	text, err := h.svc.Docstring(ctx, name)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func (h *toolHandler) searchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, errResult := requiredString(request, "topic")
	if errResult != nil {
		return errResult, nil
	}
	doc, err := h.svc.SearchDocs(ctx, topic)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultStructuredOnly(doc), nil
}

func (h *toolHandler) liveDocstring(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	object, errResult := requiredString(request, "obj_name")
	if errResult != nil {
		return errResult, nil
	}
	module := request.GetString("module_name", "")

	doc, err := h.svc.LiveDocstring(ctx, module, object)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return mcp.NewToolResultStructured(map[string]any{"result": nil}, "None"), nil
	}
	return mcp.NewToolResultStructured(map[string]any{"result": *doc}, *doc), nil
}

func (h *toolHandler) functions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := h.svc.Functions(ctx)
	if err != nil {
		return nil, err
	}
	return textList(names), nil
}

func requiredString(request mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v, err := request.RequireString(key)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	if strings.TrimSpace(v) == "" {
		return "", mcp.NewToolResultError(key + " must not be empty")
	}
	return v, nil
}

// textList renders a list result as one text block per item plus the list
// as structured content under "result".
func textList(items []string) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(items))
	for _, item := range items {
		content = append(content, mcp.NewTextContent(item))
	}
	return &mcp.CallToolResult{
		Content:           content,
		StructuredContent: map[string]any{"result": items},
	}
}
