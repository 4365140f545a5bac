package mail_tools

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsched/internal/config"
	"github.com/teemow/meetsched/internal/mail"
	"github.com/teemow/meetsched/internal/server"
)

type fakeMailClient struct {
	records []mail.EmailRecord

	gotMailbox  string
	gotCriteria string
	gotLimit    int

	searchErr error
	closed    bool
}

func (f *fakeMailClient) SearchEmails(mailbox, criteria string, limit int) ([]mail.EmailRecord, error) {
	f.gotMailbox = mailbox
	f.gotCriteria = criteria
	f.gotLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.records, nil
}

func (f *fakeMailClient) SaveDraft(draft mail.Draft) (string, error) {
	return "<draft@example.com>", nil
}

func (f *fakeMailClient) Close() error {
	f.closed = true
	return nil
}

func newMailTestContext(t *testing.T, dial server.MailDialer) *server.ServerContext {
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
	sc, err := server.NewServerContext(context.Background(), cfg, dial)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func searchRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "search_emails"
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

func TestHandleSearchEmails(t *testing.T) {
	client := &fakeMailClient{
		records: []mail.EmailRecord{
			{
				Subject:   "Meeting next week?",
				From:      "alice@example.com",
				MessageID: "<orig-1@example.com>",
				Body:      "Do you have time on Tuesday?",
			},
		},
	}
	sc := newMailTestContext(t, func() (mail.Client, error) { return client, nil })

	result, err := handleSearchEmails(context.Background(),
		searchRequest(map[string]interface{}{
			"mailbox":    "Archive",
			"criteria":   `FROM "alice@example.com"`,
			"maxResults": float64(5),
		}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, "search failed: %s", resultText(t, result))

	assert.Equal(t, "Archive", client.gotMailbox)
	assert.Equal(t, `FROM "alice@example.com"`, client.gotCriteria)
	assert.Equal(t, 5, client.gotLimit)
	assert.True(t, client.closed, "client should be closed after the search")

	var records []mail.EmailRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Meeting next week?", records[0].Subject)
	assert.Equal(t, "<orig-1@example.com>", records[0].MessageID)
}

func TestHandleSearchEmails_Defaults(t *testing.T) {
	client := &fakeMailClient{}
	sc := newMailTestContext(t, func() (mail.Client, error) { return client, nil })

	result, err := handleSearchEmails(context.Background(),
		searchRequest(map[string]interface{}{}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "INBOX", client.gotMailbox)
	assert.Equal(t, DefaultCriteria, client.gotCriteria)
	assert.Equal(t, DefaultMaxResults, client.gotLimit)
}

func TestHandleSearchEmails_IgnoresBadLimit(t *testing.T) {
	client := &fakeMailClient{}
	sc := newMailTestContext(t, func() (mail.Client, error) { return client, nil })

	for _, limit := range []interface{}{float64(0), float64(-3), "ten"} {
		result, err := handleSearchEmails(context.Background(),
			searchRequest(map[string]interface{}{"maxResults": limit}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Equal(t, DefaultMaxResults, client.gotLimit, "limit %v should fall back to default", limit)
	}
}

func TestHandleSearchEmails_DialFailure(t *testing.T) {
	sc := newMailTestContext(t, func() (mail.Client, error) {
		return nil, errors.New("connection refused")
	})

	result, err := handleSearchEmails(context.Background(),
		searchRequest(map[string]interface{}{}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to connect to mail server")
}

func TestHandleSearchEmails_SearchFailure(t *testing.T) {
	client := &fakeMailClient{searchErr: errors.New("SEARCH command failed")}
	sc := newMailTestContext(t, func() (mail.Client, error) { return client, nil })

	result, err := handleSearchEmails(context.Background(),
		searchRequest(map[string]interface{}{}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to search emails")
	assert.True(t, client.closed, "client should be closed even on search failure")
}

func TestRegisterMailTools(t *testing.T) {
	sc := newMailTestContext(t, func() (mail.Client, error) { return &fakeMailClient{}, nil })

	srv := mcpserver.NewMCPServer("meetsched-test", "0.0.0")
	require.NoError(t, RegisterMailTools(srv, sc))

	found := false
	for _, tool := range srv.ListTools() {
		if tool.Tool.Name == "search_emails" {
			found = true
		}
	}
	assert.True(t, found, "search_emails should be registered")
}
