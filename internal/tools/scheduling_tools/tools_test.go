package scheduling_tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/config"
	"github.com/teemow/meetsched/internal/mail"
	"github.com/teemow/meetsched/internal/server"
)

type fakeMailClient struct {
	savedDrafts []mail.Draft
	saveErr     error
	closed      bool
}

func (f *fakeMailClient) SearchEmails(mailbox, criteria string, limit int) ([]mail.EmailRecord, error) {
	return nil, nil
}

func (f *fakeMailClient) SaveDraft(draft mail.Draft) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedDrafts = append(f.savedDrafts, draft)
	return "<draft-1@example.com>", nil
}

func (f *fakeMailClient) Close() error {
	f.closed = true
	return nil
}

// testNow is a Monday; the test calendar offers slots on the following
// Tuesday, 2026-09-01.
func testNow(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return time.Date(2026, time.August, 31, 8, 0, 0, 0, loc)
}

func newToolTestContext(t *testing.T, client *fakeMailClient) *server.ServerContext {
	t.Helper()

	cfg := config.Config{
		IMAP: config.IMAPConfig{
			Host:     "mail.example.com",
			Port:     993,
			User:     "scheduler@example.com",
			Password: "secret",
		},
		Calendar: config.CalendarConfig{
			Path: filepath.Join(t.TempDir(), "calendar.yaml"),
		},
	}
	sc, err := server.NewServerContext(context.Background(), cfg, func() (mail.Client, error) {
		return client, nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	doc := &calendar.Document{
		Schedule: calendar.ScheduleConfig{
			Timezone:     "Europe/Berlin",
			SlotDuration: 30,
			Weekly: []calendar.WeeklyRule{
				{
					Days:  []calendar.Weekday{calendar.Tuesday},
					Slots: []calendar.TimeRange{{Start: calendar.TimeOfDay{Hour: 9}, End: calendar.TimeOfDay{Hour: 10}}},
				},
			},
		},
	}
	require.NoError(t, sc.Calendar().Store().Save(doc))
	sc.Calendar().SetClock(func() time.Time { return testNow(t) })

	return sc
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func listFreeSlots(t *testing.T, sc *server.ServerContext) freeSlotsResult {
	t.Helper()
	result, err := handleGetFreeSlots(context.Background(),
		callRequest("get_free_slots", map[string]interface{}{
			"from": "2026-09-01",
			"to":   "2026-09-01",
		}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, "get_free_slots failed: %s", resultText(t, result))

	var listing freeSlotsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &listing))
	return listing
}

func TestHandleGetFreeSlots(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})

	listing := listFreeSlots(t, sc)

	assert.NotEmpty(t, listing.ListID)
	assert.Equal(t, 2, listing.Count)
	require.Len(t, listing.Slots, 2)
	assert.Equal(t, 0, listing.Slots[0].Index)
	assert.Equal(t, "2026-09-01", listing.Slots[0].Date)
	assert.Equal(t, "09:00:00", listing.Slots[0].Start)
	assert.Equal(t, "09:30:00", listing.Slots[0].End)
	assert.Equal(t, "Europe/Berlin", listing.Slots[0].Timezone)
	assert.Equal(t, 1, listing.Slots[1].Index)
}

func TestHandleGetFreeSlots_DefaultRange(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})

	result, err := handleGetFreeSlots(context.Background(),
		callRequest("get_free_slots", map[string]interface{}{}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var listing freeSlotsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &listing))
	assert.NotEmpty(t, listing.ListID)
	assert.Equal(t, listing.Count, len(listing.Slots))
}

func TestHandleGetFreeSlots_InvalidDates(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})

	for _, args := range []map[string]interface{}{
		{"from": "not-a-date"},
		{"to": "01.09.2026"},
	} {
		result, err := handleGetFreeSlots(context.Background(), callRequest("get_free_slots", args), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError, "args %v should fail", args)
	}
}

func TestHandleBlockSlot(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listing := listFreeSlots(t, sc)

	result, err := handleBlockSlot(context.Background(),
		callRequest("block_slot", map[string]interface{}{
			"slot_index": float64(0),
			"list_id":    listing.ListID,
			"reason":     "intro call",
		}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, "block_slot failed: %s", resultText(t, result))

	var blocked blockResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &blocked))
	assert.True(t, blocked.OK)
	assert.Equal(t, "2026-09-01", blocked.Blocked.Date)
	assert.Equal(t, "09:00:00", blocked.Blocked.Start)
	assert.Equal(t, "09:30:00", blocked.Blocked.End)

	// The calendar file now carries the interval with its reason
	doc, err := sc.Calendar().Load()
	require.NoError(t, err)
	require.Len(t, doc.Blocked, 1)
	assert.Equal(t, "intro call", doc.Blocked[0].Reason)
}

func TestHandleBlockSlot_DefaultListID(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listFreeSlots(t, sc)

	result, err := handleBlockSlot(context.Background(),
		callRequest("block_slot", map[string]interface{}{
			"slot_index": float64(1),
		}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError, "block_slot failed: %s", resultText(t, result))
}

func TestHandleBlockSlot_MissingIndex(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listFreeSlots(t, sc)

	result, err := handleBlockSlot(context.Background(),
		callRequest("block_slot", map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleBlockSlot_IndexOutOfRange(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listing := listFreeSlots(t, sc)

	result, err := handleBlockSlot(context.Background(),
		callRequest("block_slot", map[string]interface{}{
			"slot_index": float64(99),
			"list_id":    listing.ListID,
		}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "out of range")
}

func TestHandleBlockSlot_UnknownListID(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listFreeSlots(t, sc)

	result, err := handleBlockSlot(context.Background(),
		callRequest("block_slot", map[string]interface{}{
			"slot_index": float64(0),
			"list_id":    "stale-token",
		}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "get_free_slots")
}

func TestHandleBlockSlot_AlreadyBlocked(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listing := listFreeSlots(t, sc)

	args := map[string]interface{}{
		"slot_index": float64(0),
		"list_id":    listing.ListID,
	}
	result, err := handleBlockSlot(context.Background(), callRequest("block_slot", args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	// The listing is a snapshot; blocking the same index again must fail
	// against the current calendar state.
	result, err = handleBlockSlot(context.Background(), callRequest("block_slot", args), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "slot_already_blocked")
}

func TestRegisterSchedulingTools_ReadOnly(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})

	srv := newTestMCPServer()
	require.NoError(t, RegisterSchedulingTools(srv, sc, true))

	names := registeredToolNames(srv)
	assert.Contains(t, names, "get_free_slots")
	assert.NotContains(t, names, "block_slot")
	assert.NotContains(t, names, "save_draft_and_block_slot")
}

func TestRegisterSchedulingTools_ReadWrite(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})

	srv := newTestMCPServer()
	require.NoError(t, RegisterSchedulingTools(srv, sc, false))

	names := registeredToolNames(srv)
	assert.Contains(t, names, "get_free_slots")
	assert.Contains(t, names, "block_slot")
	assert.Contains(t, names, "save_draft_and_block_slot")
}

func TestResolveSlotArgs_Types(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listFreeSlots(t, sc)

	// JSON numbers arrive as float64; anything else is rejected
	_, err := resolveSlotArgs(map[string]interface{}{"slot_index": "0"}, sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot_index is required")

	_, err = resolveSlotArgs(map[string]interface{}{"slot_index": float64(0)}, sc)
	require.NoError(t, err)
}

func TestResolveSlotArgs_NoListingYet(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})

	_, err := resolveSlotArgs(map[string]interface{}{"slot_index": float64(0)}, sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, server.ErrSessionExpired)
}

func TestHandleBlockSlot_ErrorsDoNotTouchCalendar(t *testing.T) {
	sc := newToolTestContext(t, &fakeMailClient{})
	listing := listFreeSlots(t, sc)

	result, err := handleBlockSlot(context.Background(),
		callRequest("block_slot", map[string]interface{}{
			"slot_index": float64(99),
			"list_id":    listing.ListID,
		}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)

	doc, err := sc.Calendar().Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Blocked)
}

func newTestMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("meetsched-test", "0.0.0")
}

func registeredToolNames(s *mcpserver.MCPServer) []string {
	tools := s.ListTools()
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Tool.Name)
	}
	return names
}
