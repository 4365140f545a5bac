package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
)

// imapDateLayout is the date format used by IMAP SEARCH (RFC 3501).
const imapDateLayout = "02-Jan-2006"

// ParseCriteria translates a raw IMAP-style search string ("UNSEEN",
// `FROM "lisa@example.com"`, `SUBJECT "meeting" SINCE 01-Jan-2024`, ...)
// into structured search criteria. Multiple terms combine as AND, matching
// IMAP SEARCH semantics. An empty string means ALL.
func ParseCriteria(raw string) (*imap.SearchCriteria, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{}
	for i := 0; i < len(tokens); i++ {
		key := strings.ToUpper(tokens[i])
		switch key {
		case "ALL":
			// No restriction.
		case "SEEN":
			criteria.Flag = append(criteria.Flag, imap.FlagSeen)
		case "UNSEEN":
			criteria.NotFlag = append(criteria.NotFlag, imap.FlagSeen)
		case "ANSWERED":
			criteria.Flag = append(criteria.Flag, imap.FlagAnswered)
		case "UNANSWERED":
			criteria.NotFlag = append(criteria.NotFlag, imap.FlagAnswered)
		case "FLAGGED":
			criteria.Flag = append(criteria.Flag, imap.FlagFlagged)
		case "UNFLAGGED":
			criteria.NotFlag = append(criteria.NotFlag, imap.FlagFlagged)
		case "DELETED":
			criteria.Flag = append(criteria.Flag, imap.FlagDeleted)
		case "UNDELETED":
			criteria.NotFlag = append(criteria.NotFlag, imap.FlagDeleted)
		case "FROM", "TO", "CC", "BCC", "SUBJECT":
			value, err := argument(tokens, &i, key)
			if err != nil {
				return nil, err
			}
			criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
				Key:   headerName(key),
				Value: value,
			})
		case "TEXT":
			value, err := argument(tokens, &i, key)
			if err != nil {
				return nil, err
			}
			criteria.Text = append(criteria.Text, value)
		case "BODY":
			value, err := argument(tokens, &i, key)
			if err != nil {
				return nil, err
			}
			criteria.Body = append(criteria.Body, value)
		case "SINCE", "BEFORE", "SENTSINCE", "SENTBEFORE":
			value, err := argument(tokens, &i, key)
			if err != nil {
				return nil, err
			}
			date, err := time.Parse(imapDateLayout, value)
			if err != nil {
				return nil, fmt.Errorf("invalid date %q for %s (want DD-Mon-YYYY)", value, key)
			}
			switch key {
			case "SINCE":
				criteria.Since = date
			case "BEFORE":
				criteria.Before = date
			case "SENTSINCE":
				criteria.SentSince = date
			case "SENTBEFORE":
				criteria.SentBefore = date
			}
		default:
			return nil, fmt.Errorf("unsupported search term %q", tokens[i])
		}
	}
	return criteria, nil
}

// argument consumes the value token following a keyword.
func argument(tokens []string, i *int, key string) (string, error) {
	if *i+1 >= len(tokens) {
		return "", fmt.Errorf("%s requires an argument", key)
	}
	*i++
	return tokens[*i], nil
}

func headerName(key string) string {
	switch key {
	case "FROM":
		return "From"
	case "TO":
		return "To"
	case "CC":
		return "Cc"
	case "BCC":
		return "Bcc"
	case "SUBJECT":
		return "Subject"
	}
	return key
}

// tokenize splits the criteria string on whitespace, honoring double-quoted
// phrases.
func tokenize(raw string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range raw {
		switch {
		case r == '"':
			if inQuotes {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote in search criteria %q", raw)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
