package mail

import (
	"bytes"
	"fmt"
	"io"
	netmail "net/mail"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

// parseRecord extracts the scheduler-relevant metadata from a raw RFC 822
// message. Parsing is best-effort: a malformed part never discards the
// headers already extracted.
func parseRecord(id string, raw []byte) EmailRecord {
	record := EmailRecord{ID: id}

	reader, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return record
	}
	defer reader.Close()

	header := reader.Header
	if subject, err := header.Subject(); err == nil {
		record.Subject = subject
	}
	record.From = formatAddressList(header, "From")
	record.To = formatAddressList(header, "To")
	if date, err := header.Date(); err == nil && !date.IsZero() {
		record.Date = date.Format(time.RFC1123Z)
	}
	// Threading headers are kept verbatim, angle brackets included, so
	// they can be fed straight back into a reply draft.
	record.MessageID = header.Get("Message-Id")
	record.InReplyTo = header.Get("In-Reply-To")
	record.References = header.Get("References")
	record.Body = firstTextPart(reader)

	return record
}

func formatAddressList(header gomail.Header, key string) string {
	addrs, err := header.AddressList(key)
	if err != nil || len(addrs) == 0 {
		return header.Get(key)
	}
	parts := make([]string, len(addrs))
	for i, addr := range addrs {
		parts[i] = addr.String()
	}
	return strings.Join(parts, ", ")
}

// firstTextPart returns the body of the first text/plain part, mirroring how
// replies quote plain-text content. Attachments and HTML parts are skipped.
func firstTextPart(reader *gomail.Reader) string {
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return ""
		}
		if err != nil {
			return ""
		}
		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil || (contentType != "text/plain" && contentType != "") {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return ""
		}
		return string(body)
	}
}

// buildDraft assembles the confirmation draft as RFC 822 bytes and returns
// them together with the generated Message-ID.
func buildDraft(from string, draft Draft) ([]byte, string, error) {
	if draft.To == "" {
		return nil, "", fmt.Errorf("draft recipient is required")
	}

	var header gomail.Header
	header.SetDate(time.Now())
	header.SetSubject(draft.Subject)
	header.SetAddressList("From", parseAddress(from))
	header.SetAddressList("To", parseAddress(draft.To))
	if err := header.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("cannot generate message id: %w", err)
	}
	if draft.InReplyTo != "" {
		// References mirrors In-Reply-To so threading works even when
		// the original's References chain is unknown.
		header.Set("In-Reply-To", draft.InReplyTo)
		header.Set("References", draft.InReplyTo)
	}

	var buf bytes.Buffer
	writer, err := gomail.CreateSingleInlineWriter(&buf, header)
	if err != nil {
		return nil, "", fmt.Errorf("cannot create draft writer: %w", err)
	}
	if _, err := io.WriteString(writer, draft.Body); err != nil {
		writer.Close()
		return nil, "", fmt.Errorf("cannot write draft body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("cannot finish draft: %w", err)
	}

	messageID, err := header.MessageID()
	if err != nil {
		messageID = ""
	}
	if messageID != "" && !strings.HasPrefix(messageID, "<") {
		messageID = "<" + messageID + ">"
	}
	return buf.Bytes(), messageID, nil
}

func parseAddress(raw string) []*gomail.Address {
	if addr, err := netmail.ParseAddress(raw); err == nil {
		return []*gomail.Address{{Name: addr.Name, Address: addr.Address}}
	}
	return []*gomail.Address{{Address: raw}}
}
