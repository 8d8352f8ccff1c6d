// SPDX-License-Identifier: MIT

package upload

import "fmt"

// State is a stage of the submission sequence. The sequence is strictly
// ordered: no step begins until its predecessor succeeded, which is what
// makes the no-partial-record invariant checkable.
type State int

const (
	StateIdle State = iota
	StateIssuingVideoCredential
	StateUploadingVideo
	StateIssuingThumbnailCredential
	StateUploadingThumbnail
	StateCommitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIssuingVideoCredential:
		return "issuing_video_credential"
	case StateUploadingVideo:
		return "uploading_video"
	case StateIssuingThumbnailCredential:
		return "issuing_thumbnail_credential"
	case StateUploadingThumbnail:
		return "uploading_thumbnail"
	case StateCommitting:
		return "committing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// transitions lists the permitted successor states. Every working state may
// also fail.
var transitions = map[State][]State{
	StateIdle:                       {StateIssuingVideoCredential},
	StateIssuingVideoCredential:     {StateUploadingVideo, StateFailed},
	StateUploadingVideo:             {StateIssuingThumbnailCredential, StateFailed},
	StateIssuingThumbnailCredential: {StateUploadingThumbnail, StateFailed},
	StateUploadingThumbnail:         {StateCommitting, StateFailed},
	StateCommitting:                 {StateSucceeded, StateFailed},
	StateSucceeded:                  {StateIssuingVideoCredential},
	StateFailed:                     {StateIssuingVideoCredential},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
