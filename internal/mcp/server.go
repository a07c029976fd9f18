package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"guestbook/internal/guestbook"
)

// EntryGetter reads a single entry straight from the backend.
type EntryGetter interface {
	GetEntry(ctx context.Context, id guestbook.EntryID) (guestbook.Entry, error)
}

// NewServer creates an MCP server with tools for guestbook operations. All
// tools share ctl, so they behave like a single UI instance.
func NewServer(ctl *guestbook.Controller, getter EntryGetter, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Guestbook",
		version,
		server.WithToolCapabilities(true),
	)

	// Tool: list_entries - Refresh and list all entries
	s.AddTool(
		mcp.NewTool("list_entries",
			mcp.WithDescription("List every guestbook message, newest first as the server orders them. Use this to read the guestbook."),
		),
		handleListEntries(ctl),
	)

	// Tool: get_entry - Get a specific entry by ID
	s.AddTool(
		mcp.NewTool("get_entry",
			mcp.WithDescription("Get a single guestbook message by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The message ID"),
			),
		),
		handleGetEntry(getter),
	)

	// Tool: create_entry - Post a message
	s.AddTool(
		mcp.NewTool("create_entry",
			mcp.WithDescription("Post a message to the guestbook. Name and content are trimmed; both must be non-empty."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description(fmt.Sprintf("Author name (up to %d characters)", guestbook.MaxNameLength)),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description(fmt.Sprintf("Message text (up to %d characters)", guestbook.MaxContentLength)),
			),
		),
		handleCreateEntry(ctl),
	)

	// Tool: delete_entry - Delete a message
	s.AddTool(
		mcp.NewTool("delete_entry",
			mcp.WithDescription("Delete a guestbook message. This cannot be undone: nothing is deleted unless confirm is true."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The message ID"),
			),
			mcp.WithBoolean("confirm",
				mcp.Description("Must be true to actually delete the message"),
			),
		),
		handleDeleteEntry(ctl),
	)

	return s
}

// EntryResult represents an entry in tool responses
type EntryResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// StateResult is what the list, create and delete tools answer with.
type StateResult struct {
	Entries []EntryResult `json:"entries"`
	Error   string        `json:"error,omitempty"`
}

func handleListEntries(ctl *guestbook.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctl.Refresh(ctx)
		return stateResult(ctl.Snapshot()), nil
	}
}

func handleGetEntry(getter EntryGetter) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		entry, err := getter.GetEntry(ctx, guestbook.EntryID(id))
		var netErr *guestbook.NetworkError
		if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("entry %s not found", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get entry: %v", err)), nil
		}

		data, _ := json.MarshalIndent(entryToResult(entry), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCreateEntry(ctl *guestbook.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		err := ctl.SubmitDraft(ctx, req.GetString("name", ""), req.GetString("content", ""))
		if errors.Is(err, guestbook.ErrSubmitPending) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return stateResult(ctl.Snapshot()), nil
	}
}

func handleDeleteEntry(ctl *guestbook.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		confirm := req.GetBool("confirm", false)
		ctl.Delete(ctx, guestbook.EntryID(id), guestbook.Answer(confirm))
		if !confirm {
			return mcp.NewToolResultError("not deleted: set confirm to true to delete this message"), nil
		}
		return stateResult(ctl.Snapshot()), nil
	}
}

// Helper functions

func stateResult(s guestbook.State) *mcp.CallToolResult {
	result := StateResult{
		Entries: make([]EntryResult, len(s.Entries)),
		Error:   s.Error,
	}
	for i, e := range s.Entries {
		result.Entries[i] = entryToResult(e)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	if s.Error != "" {
		return mcp.NewToolResultError(string(data))
	}
	return mcp.NewToolResultText(string(data))
}

func entryToResult(e guestbook.Entry) EntryResult {
	return EntryResult{
		ID:        e.ID.String(),
		Name:      e.Name,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}
