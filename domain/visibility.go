package domain

import "slices"

// Visible reports whether a message should appear in viewerID's rendered
// list. It is false iff the viewer opted to hide the message; an absent
// HiddenFor set counts as empty.
//
// This runs client-side over data the store has already released, so it is
// a UX affordance ("hide for me"), not a security boundary. Anything the
// store delivers has left the building.
func Visible(m Message, viewerID string) bool {
	return !slices.Contains(m.HiddenFor, viewerID)
}
