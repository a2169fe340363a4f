// Package errors provides structured error handling for the Weft framework.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindInit indicates a mount or initialization error.
	KindInit
	// KindSurface indicates a target-surface primitive failed while a patch
	// list was being applied.
	KindSurface
	// KindWriteAfterUnmount indicates a signal write after its owning
	// component was unmounted.
	KindWriteAfterUnmount
	// KindRenderPanic indicates a recovered panic inside a component render.
	KindRenderPanic
	// KindDuplicateKey indicates duplicate sibling keys in a render output.
	// Reported as a warning; the differ resolves the collision positionally.
	KindDuplicateKey
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindSurface:
		return "surface"
	case KindWriteAfterUnmount:
		return "write-after-unmount"
	case KindRenderPanic:
		return "render-panic"
	case KindDuplicateKey:
		return "duplicate-key"
	default:
		return "unknown"
	}
}

// WeftError represents a structured error in the Weft framework.
type WeftError struct {
	// Op is the operation that failed (e.g., "surface.Apply").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error, if captured.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *WeftError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *WeftError) Unwrap() error {
	return e.Err
}

// RenderError represents a recovered panic inside a component's render
// function. One failing subtree never aborts the surrounding flush pass;
// the error is routed to the nearest boundary or returned by Flush.
type RenderError struct {
	// Component is the name of the component whose render failed.
	Component string
	// Recovered is the value passed to panic().
	Recovered any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("panic rendering %q: %v", e.Component, e.Recovered)
	}
	return fmt.Sprintf("panic during render: %v", e.Recovered)
}

// Handler receives errors reported by the Weft framework.
type Handler interface {
	// HandleError is called when a structured error occurs.
	HandleError(err *WeftError)
	// HandleRenderError is called when a component render panics.
	HandleRenderError(err *RenderError)
}
