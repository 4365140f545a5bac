package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/teemow/meetsched/internal/config"
	"github.com/teemow/meetsched/internal/logging"
)

// IMAPClient is the production Client implementation on top of go-imap.
// One client wraps one authenticated connection; create it, use it for the
// duration of a tool call, and close it.
type IMAPClient struct {
	conn   *imapclient.Client
	cfg    config.IMAPConfig
	logger *slog.Logger
}

var _ Client = (*IMAPClient)(nil)

// Dial connects and authenticates against the configured IMAP server.
// SSL/TLS, STARTTLS, and certificate verification behave per the IMAP_*
// environment switches.
func Dial(cfg config.IMAPConfig) (*IMAPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &imapclient.Options{}
	if !cfg.VerifySSL {
		options.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var conn *imapclient.Client
	var err error
	switch {
	case cfg.UseStartTLS:
		conn, err = imapclient.DialStartTLS(cfg.Addr(), options)
	case cfg.UseSSL:
		conn, err = imapclient.DialTLS(cfg.Addr(), options)
	default:
		conn, err = imapclient.DialInsecure(cfg.Addr(), options)
	}
	if err != nil {
		return nil, fmt.Errorf("IMAP connection to %s failed: %w", cfg.Addr(), err)
	}

	if err := conn.Login(cfg.User, cfg.Password).Wait(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	return &IMAPClient{
		conn:   conn,
		cfg:    cfg,
		logger: logging.WithService(slog.Default(), "imap"),
	}, nil
}

// SearchEmails selects mailbox, runs the search, and fetches the full
// message for every match to extract threading metadata and the plain-text
// body.
func (c *IMAPClient) SearchEmails(mailbox, criteria string, limit int) ([]EmailRecord, error) {
	parsed, err := ParseCriteria(criteria)
	if err != nil {
		return nil, err
	}

	if _, err := c.conn.Select(mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("cannot select mailbox %s: %w", mailbox, err)
	}

	data, err := c.conn.UIDSearch(parsed, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search in %s failed: %w", mailbox, err)
	}
	uids := data.AllUIDs()
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}
	if len(uids) == 0 {
		return nil, nil
	}

	section := &imap.FetchItemBodySection{}
	fetchOptions := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	}
	messages, err := c.conn.Fetch(imap.UIDSetNum(uids...), fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetch in %s failed: %w", mailbox, err)
	}

	records := make([]EmailRecord, 0, len(messages))
	for _, msg := range messages {
		raw := msg.FindBodySection(section)
		if raw == nil {
			continue
		}
		records = append(records, parseRecord(fmt.Sprintf("%d", msg.UID), raw))
	}

	c.logger.Debug("searched mailbox",
		logging.Mailbox(mailbox),
		"criteria", criteria,
		"matches", len(records),
	)
	return records, nil
}

// SaveDraft stores the draft in the configured drafts folder, creating the
// folder if it does not exist, and returns the generated Message-ID.
func (c *IMAPClient) SaveDraft(draft Draft) (string, error) {
	raw, messageID, err := buildDraft(c.cfg.From, draft)
	if err != nil {
		return "", err
	}

	folder := c.cfg.DraftFolder
	if _, err := c.conn.Select(folder, nil).Wait(); err != nil {
		if err := c.conn.Create(folder, nil).Wait(); err != nil {
			return "", fmt.Errorf("drafts folder %s is not accessible: %w", folder, err)
		}
		if _, err := c.conn.Select(folder, nil).Wait(); err != nil {
			return "", fmt.Errorf("cannot select drafts folder %s: %w", folder, err)
		}
	}

	appendCmd := c.conn.Append(folder, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagDraft, imap.FlagSeen},
		Time:  time.Now(),
	})
	if _, err := appendCmd.Write(raw); err != nil {
		_ = appendCmd.Close()
		return "", fmt.Errorf("cannot write draft: %w", err)
	}
	if err := appendCmd.Close(); err != nil {
		return "", fmt.Errorf("cannot finish draft append: %w", err)
	}
	if _, err := appendCmd.Wait(); err != nil {
		return "", fmt.Errorf("draft append rejected: %w", err)
	}

	c.logger.Info("saved draft",
		logging.Mailbox(folder),
		logging.UserHash(draft.To),
		"threaded", draft.InReplyTo != "",
	)
	return messageID, nil
}

// Close logs out and releases the connection.
func (c *IMAPClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Logout().Wait()
	c.conn = nil
	return err
}
