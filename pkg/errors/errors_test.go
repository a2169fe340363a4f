package errors

import (
	"fmt"
	"strings"
	"testing"
)

type captureHandler struct {
	errs    []*WeftError
	renders []*RenderError
}

func (h *captureHandler) HandleError(err *WeftError) { h.errs = append(h.errs, err) }
func (h *captureHandler) HandleRenderError(e *RenderError) { h.renders = append(h.renders, e) }

func TestReport_SetsTimestampAndDispatches(t *testing.T) {
	h := &captureHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	Report(&WeftError{Op: "test.Op", Kind: KindSurface, Err: fmt.Errorf("boom")})

	if len(h.errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(h.errs))
	}
	if h.errs[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if got := h.errs[0].Error(); !strings.Contains(got, "[surface]") {
		t.Errorf("expected kind in message, got %q", got)
	}
}

func TestReport_NilIsNoop(t *testing.T) {
	h := &captureHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	Report(nil)
	ReportRender(nil)

	if len(h.errs) != 0 || len(h.renders) != 0 {
		t.Fatal("nil reports must not be dispatched")
	}
}

func TestRenderError_Message(t *testing.T) {
	err := &RenderError{Component: "counter", Recovered: "oops"}
	if got := err.Error(); !strings.Contains(got, `"counter"`) || !strings.Contains(got, "oops") {
		t.Errorf("unexpected message %q", got)
	}
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindUnknown:           "unknown",
		KindInit:              "init",
		KindSurface:           "surface",
		KindWriteAfterUnmount: "write-after-unmount",
		KindRenderPanic:       "render-panic",
		KindDuplicateKey:      "duplicate-key",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
