package control

import "errors"

// ErrInvalidParams is returned when a request carries parameters which
// can not be turned into a graph operation.
var ErrInvalidParams = errors.New("invalid params")
