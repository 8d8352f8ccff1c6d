// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Upload / media fields
	FieldVideoID   = "video_id"
	FieldSizeBytes = "size_bytes"
	FieldDuration  = "duration_seconds"
	FieldState     = "state"

	// Path / URL fields
	FieldPath     = "path"
	FieldEndpoint = "endpoint"
)
