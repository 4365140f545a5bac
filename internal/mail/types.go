package mail

// EmailRecord is the metadata the scheduler needs from one message:
// identifying fields plus the threading headers required to keep a
// conversation intact. Bodies are reduced to the first text/plain part.
type EmailRecord struct {
	ID         string `json:"id"`
	Subject    string `json:"subject"`
	From       string `json:"from"`
	To         string `json:"to"`
	Date       string `json:"date"`
	MessageID  string `json:"message_id"`
	InReplyTo  string `json:"in_reply_to"`
	References string `json:"references"`
	Body       string `json:"body"`
}

// Draft describes a confirmation email to be stored in the drafts folder.
// InReplyTo, when set, threads the draft into an existing conversation via
// the In-Reply-To and References headers.
type Draft struct {
	Subject   string
	Body      string
	To        string
	InReplyTo string
}

// Client is the narrow interface the tool layer consumes. The production
// implementation is IMAPClient; tests substitute a fake.
type Client interface {
	// SearchEmails searches mailbox with raw IMAP-style criteria and
	// returns the matching records with full threading metadata, newest
	// last. limit <= 0 means no limit.
	SearchEmails(mailbox, criteria string, limit int) ([]EmailRecord, error)

	// SaveDraft appends the draft to the drafts folder and returns the
	// generated Message-ID.
	SaveDraft(draft Draft) (string, error)

	// Close releases the connection.
	Close() error
}
