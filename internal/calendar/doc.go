// Package calendar implements the scheduling core: the YAML-backed calendar
// document, free-slot computation against the weekly availability template,
// and blocked-interval mutation.
//
// The backing YAML file is the single source of truth. Every operation loads
// a fresh document, works on its own in-memory copy, and (for mutations)
// writes the whole document back atomically. There is no caching across
// calls, so each call observes the latest on-disk state.
package calendar
