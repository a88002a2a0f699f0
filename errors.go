package regioncache

import (
	"errors"
	"fmt"
	"strings"
)

// Op names a client operation in errors, logs and hooks.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpRemove Op = "remove"
)

// ErrInvalidArgument is matched by every *ArgumentError.
var ErrInvalidArgument = errors.New("regioncache: invalid argument")

// ArgumentError reports a caller contract violation. It is never subject to
// the ErrorPolicy.
type ArgumentError struct {
	Op     Op
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("regioncache %s: invalid %s: %s", e.Op, e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// BackendError wraps a store failure together with the keys involved.
type BackendError struct {
	Op     Op
	Region string
	Keys   []string
	Err    error
}

func (e *BackendError) Error() string {
	region := e.Region
	if region == "" {
		region = "<default>"
	}
	return fmt.Sprintf("regioncache %s failed (region %s, keys [%s]): %v",
		e.Op, region, strings.Join(e.Keys, ", "), e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
