package scheduling_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/mail"
	"github.com/teemow/meetsched/internal/server"
	"github.com/teemow/meetsched/internal/tools/common"
)

// draftBlockResult is the save_draft_and_block_slot response. DraftError is
// set when the slot was blocked but saving the confirmation draft failed.
type draftBlockResult struct {
	OK         bool        `json:"ok"`
	Blocked    blockedSlot `json:"blocked"`
	MessageID  string      `json:"message_id,omitempty"`
	DraftSaved bool        `json:"draft_saved"`
	DraftError string      `json:"draft_error,omitempty"`
}

// RegisterDraftTools registers the combined block-and-draft tool.
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	saveDraftTool := mcp.NewTool("save_draft_and_block_slot",
		mcp.WithDescription("Block a free slot and save a confirmation reply draft in the drafts folder. The calendar is updated first; a draft failure afterwards is reported as a partial result."),
		mcp.WithNumber("slot_index",
			mcp.Required(),
			mcp.Description("Index of the slot within the listing"),
		),
		mcp.WithString("list_id",
			mcp.Description("Listing token from get_free_slots (default: the most recent listing)"),
		),
		mcp.WithString("reason",
			mcp.Description("Free-form reason stored with the blocked slot, e.g. the meeting topic"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Draft subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Draft body text"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address"),
		),
		mcp.WithString("in_reply_to",
			mcp.Description("Message-ID of the email being answered; sets In-Reply-To and References for threading"),
		),
	)

	s.AddTool(saveDraftTool, common.InstrumentedToolHandlerWithService(
		"save_draft_and_block_slot", instrumentation.ServiceIMAP, instrumentation.OperationAppend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveDraftAndBlockSlot(ctx, request, sc)
		}))

	return nil
}

func handleSaveDraftAndBlockSlot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	subject, ok := args["subject"].(string)
	if !ok || subject == "" {
		return mcp.NewToolResultError("subject is required"), nil
	}
	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}
	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}
	inReplyTo := ""
	if inReplyToVal, ok := args["in_reply_to"].(string); ok {
		inReplyTo = inReplyToVal
	}
	reason := ""
	if reasonVal, ok := args["reason"].(string); ok {
		reason = reasonVal
	}

	slot, err := resolveSlotArgs(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Block first. If the slot cannot be blocked there is nothing to draft.
	if _, err := sc.Calendar().BlockSlot(slot.Date, slot.Start, slot.End, reason); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to block slot: %v", err)), nil
	}
	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordSlotBlocked(ctx)
	}

	result := draftBlockResult{
		OK: true,
		Blocked: blockedSlot{
			Date:  slot.Date.String(),
			Start: slot.Start.String(),
			End:   slot.End.String(),
		},
	}

	messageID, err := saveDraft(sc, mail.Draft{
		Subject:   subject,
		Body:      body,
		To:        to,
		InReplyTo: inReplyTo,
	})
	if err != nil {
		// Partial result: the calendar mutation already happened and stays.
		result.DraftError = err.Error()
	} else {
		result.DraftSaved = true
		result.MessageID = messageID
		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordDraftSaved(ctx)
		}
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func saveDraft(sc *server.ServerContext, draft mail.Draft) (string, error) {
	client, err := sc.DialMail()
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return client.SaveDraft(draft)
}
