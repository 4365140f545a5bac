package scheduling_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/server"
	"github.com/teemow/meetsched/internal/tools/common"
)

// slotEntry is one free slot in a listing, addressable by index.
type slotEntry struct {
	Index    int    `json:"index"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

// freeSlotsResult is the get_free_slots response. ListID identifies this
// listing for later block_slot calls.
type freeSlotsResult struct {
	ListID string      `json:"list_id"`
	Count  int         `json:"count"`
	Slots  []slotEntry `json:"slots"`
}

// blockedSlot describes the interval that was written to the calendar.
type blockedSlot struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// blockResult is the block_slot response.
type blockResult struct {
	OK      bool        `json:"ok"`
	Blocked blockedSlot `json:"blocked"`
}

// RegisterSchedulingTools registers the calendar scheduling tools with the
// MCP server. Write tools (block_slot, save_draft_and_block_slot) are
// skipped in read-only mode.
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getFreeSlotsTool := mcp.NewTool("get_free_slots",
		mcp.WithDescription("List free meeting slots from the calendar. Returns an indexed slot list plus a list_id token; pass both to block_slot to book a slot."),
		mcp.WithString("from",
			mcp.Description("Start date of the search range (YYYY-MM-DD, default: today)"),
		),
		mcp.WithString("to",
			mcp.Description("End date of the search range, inclusive (YYYY-MM-DD, default: from plus the configured horizon)"),
		),
	)

	s.AddTool(getFreeSlotsTool, common.InstrumentedToolHandlerWithService(
		"get_free_slots", instrumentation.ServiceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFreeSlots(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	blockSlotTool := mcp.NewTool("block_slot",
		mcp.WithDescription("Block a free slot from a previous get_free_slots listing so it is no longer offered"),
		mcp.WithNumber("slot_index",
			mcp.Required(),
			mcp.Description("Index of the slot within the listing"),
		),
		mcp.WithString("list_id",
			mcp.Description("Listing token from get_free_slots (default: the most recent listing)"),
		),
		mcp.WithString("reason",
			mcp.Description("Free-form reason stored with the blocked slot"),
		),
	)

	s.AddTool(blockSlotTool, common.InstrumentedToolHandlerWithService(
		"block_slot", instrumentation.ServiceCalendar, instrumentation.OperationBlock, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBlockSlot(ctx, request, sc)
		}))

	if err := RegisterDraftTools(s, sc); err != nil {
		return fmt.Errorf("failed to register draft tools: %w", err)
	}

	return nil
}

func handleGetFreeSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var from, to calendar.Date
	var err error
	if fromVal, ok := args["from"].(string); ok && fromVal != "" {
		from, err = calendar.ParseDate(fromVal)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid from date: %v", err)), nil
		}
	}
	if toVal, ok := args["to"].(string); ok && toVal != "" {
		to, err = calendar.ParseDate(toVal)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid to date: %v", err)), nil
		}
	}

	slots, err := sc.Calendar().FreeSlots(from, to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute free slots: %v", err)), nil
	}

	listID := sc.Sessions().Publish(slots)
	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordFreeSlotsReturned(ctx, len(slots))
	}

	result := freeSlotsResult{
		ListID: listID,
		Count:  len(slots),
		Slots:  make([]slotEntry, 0, len(slots)),
	}
	for i, slot := range slots {
		result.Slots = append(result.Slots, slotEntry{
			Index:    i,
			Date:     slot.Date.String(),
			Start:    slot.Start.String(),
			End:      slot.End.String(),
			Timezone: slot.Timezone,
		})
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal slots: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// resolveSlotArgs resolves slot_index and list_id arguments into the
// concrete slot they address.
func resolveSlotArgs(args map[string]interface{}, sc *server.ServerContext) (calendar.FreeSlot, error) {
	indexVal, ok := args["slot_index"].(float64)
	if !ok {
		return calendar.FreeSlot{}, fmt.Errorf("slot_index is required")
	}

	listID := ""
	if listVal, ok := args["list_id"].(string); ok {
		listID = listVal
	}

	return sc.Sessions().Resolve(listID, int(indexVal))
}

func handleBlockSlot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	slot, err := resolveSlotArgs(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reason := ""
	if reasonVal, ok := args["reason"].(string); ok {
		reason = reasonVal
	}

	if _, err := sc.Calendar().BlockSlot(slot.Date, slot.Start, slot.End, reason); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to block slot: %v", err)), nil
	}
	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordSlotBlocked(ctx)
	}

	result := blockResult{
		OK: true,
		Blocked: blockedSlot{
			Date:  slot.Date.String(),
			Start: slot.Start.String(),
			End:   slot.End.String(),
		},
	}
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
