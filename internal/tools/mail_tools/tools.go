package mail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/server"
	"github.com/teemow/meetsched/internal/tools/common"
)

// DefaultCriteria is the search used when a request names none.
const DefaultCriteria = "UNSEEN"

// DefaultMaxResults caps search results when a request names no limit.
const DefaultMaxResults = 10

// RegisterMailTools registers the email search tools with the MCP server.
func RegisterMailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchEmailsTool := mcp.NewTool("search_emails",
		mcp.WithDescription("Search emails in a mailbox via IMAP. Returns subject, sender, threading headers, and the plain-text body for each match."),
		mcp.WithString("mailbox",
			mcp.Description("Mailbox to search (default: INBOX)"),
		),
		mcp.WithString("criteria",
			mcp.Description(`IMAP search criteria, e.g. 'UNSEEN', 'FROM "jane@example.com"', 'SUBJECT "meeting" SINCE 01-Jan-2026' (default: UNSEEN)`),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandlerWithService(
		"search_emails", instrumentation.ServiceIMAP, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	return nil
}

func handleSearchEmails(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	mailbox := common.GetMailboxFromArgs(args)

	criteria := DefaultCriteria
	if criteriaVal, ok := args["criteria"].(string); ok && criteriaVal != "" {
		criteria = criteriaVal
	}

	maxResults := DefaultMaxResults
	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		maxResults = int(maxResultsVal)
	}

	client, err := sc.DialMail()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to connect to mail server: %v", err)), nil
	}
	defer func() { _ = client.Close() }()

	records, err := client.SearchEmails(mailbox, criteria, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal emails: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
