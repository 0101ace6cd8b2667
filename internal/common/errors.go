package common

import "errors"

// ErrInvalidArgument marks caller mistakes: unknown entities, operation types
// or malformed payloads.
var ErrInvalidArgument = errors.New("invalid argument")
