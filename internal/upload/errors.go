// SPDX-License-Identifier: MIT

package upload

import "errors"

// Failure taxonomy for the submission sequence. Each submit attempt fails
// with exactly one of these, wrapped with context.
var (
	// ErrValidation: missing file, title or description. Local check, no
	// network call was made.
	ErrValidation = errors.New("upload: validation failed")

	// ErrAuthentication: the credential issuer rejected the session.
	ErrAuthentication = errors.New("upload: authentication required")

	// ErrRateLimited: the commit was denied by the per-user rate limit.
	ErrRateLimited = errors.New("upload: rate limit exceeded")

	// ErrUploadTransport: a byte push to an external host returned a
	// non-success status. The remaining sequence is aborted.
	ErrUploadTransport = errors.New("upload: transport failure")

	// ErrCommit: the server failed while committing metadata.
	ErrCommit = errors.New("upload: commit failed")
)
