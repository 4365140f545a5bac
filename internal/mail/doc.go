// Package mail is the email collaborator boundary: searching a mailbox over
// IMAP and appending confirmation drafts with threading headers. The
// scheduling core consumes it only through the narrow Client interface; IMAP
// wire details stay inside this package.
package mail
