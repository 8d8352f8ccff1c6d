// SPDX-License-Identifier: MIT

package capture

// Descriptor describes a finished recording handed off from the recording
// surface to the upload surface.
type Descriptor struct {
	Name            string
	URL             string
	MIMEType        string
	DurationSeconds int

	// Release frees the transient blob resource behind URL. May be nil.
	Release func()
}

// Handoff is a typed, capacity-one channel between the recording surface and
// the upload surface. The channel itself enforces the consumed-at-most-once
// contract: a descriptor can be taken exactly once, and a second Offer while
// one is pending is refused.
type Handoff struct {
	ch chan Descriptor
}

// NewHandoff creates an empty hand-off channel.
func NewHandoff() *Handoff {
	return &Handoff{ch: make(chan Descriptor, 1)}
}

// Offer places a recording descriptor for the upload surface to consume.
// Returns false when a descriptor is already pending.
func (h *Handoff) Offer(d Descriptor) bool {
	select {
	case h.ch <- d:
		return true
	default:
		return false
	}
}

// take removes the pending descriptor, if any, without blocking.
func (h *Handoff) take() (Descriptor, bool) {
	select {
	case d := <-h.ch:
		return d, true
	default:
		return Descriptor{}, false
	}
}
