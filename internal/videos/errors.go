// SPDX-License-Identifier: MIT

package videos

import "errors"

var (
	// ErrInvalidInput marks a commit payload that fails validation.
	ErrInvalidInput = errors.New("videos: invalid input")

	// ErrRateLimited marks a commit denied by the per-user fixed window.
	// No write is performed.
	ErrRateLimited = errors.New("videos: rate limit exceeded")

	// ErrCommitFailed marks a server-side failure during metadata sync or
	// insert.
	ErrCommitFailed = errors.New("videos: commit failed")
)
