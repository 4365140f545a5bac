package common

// DefaultMailbox is the mailbox searched when a request names none.
const DefaultMailbox = "INBOX"

// GetMailboxFromArgs extracts the mailbox name from request arguments,
// falling back to INBOX.
func GetMailboxFromArgs(args map[string]interface{}) string {
	if mailbox, ok := args["mailbox"].(string); ok && mailbox != "" {
		return mailbox
	}
	return DefaultMailbox
}
