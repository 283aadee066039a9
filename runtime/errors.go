package runtime

import "errors"

// ErrNotFound indicates the requested entity id has no store record.
var ErrNotFound = errors.New("object not found")

// ErrAttributeMissing indicates an attribute was read that neither the
// entity nor any class in its superclass chain defines.
var ErrAttributeMissing = errors.New("attribute missing")

// ErrMethodNotFound indicates the selector resolved nowhere in the
// superclass chain. Fatal to the whole send tree.
var ErrMethodNotFound = errors.New("method not found")

// ErrZeroDivide indicates division by a zero tagged primitive on the
// arithmetic fast path.
var ErrZeroDivide = errors.New("division by zero")

// ErrBadReceiver indicates a generic send whose receiver is not an entity
// reference (raw data is opaque to dispatch).
var ErrBadReceiver = errors.New("receiver is not an object")
