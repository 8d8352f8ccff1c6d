// SPDX-License-Identifier: MIT

package bunny

import (
	"errors"
	"fmt"
)

// ErrUpstreamStatus marks non-2xx responses from either host for errors.Is
// checks at the boundary.
var ErrUpstreamStatus = errors.New("bunny: upstream returned non-success status")

// StatusError carries the HTTP status of a failed host interaction.
type StatusError struct {
	Operation string
	Status    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bunny: %s failed (HTTP %d)", e.Operation, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstreamStatus
}
