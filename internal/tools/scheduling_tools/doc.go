// Package scheduling_tools provides MCP tools for the calendar side of
// meeting scheduling: listing free slots, blocking a slot, and the combined
// block-and-draft operation.
//
// get_free_slots returns an indexed listing plus an opaque list_id token.
// block_slot and save_draft_and_block_slot resolve slot indices only
// against such a listing, so an index can never silently book a different
// slot after the calendar changed.
package scheduling_tools
