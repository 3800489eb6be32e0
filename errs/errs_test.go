package errs_test

import (
	"errors"
	"testing"

	"github.com/viaduct-dev/viaduct/errs"
)

func TestNewCarriesMessageAndWrappedError(t *testing.T) {
	cause := errors.New("boom")
	e := errs.New("dispatch.Resolve", errs.KindResolver, cause)
	if e.Kind != errs.KindResolver {
		t.Fatalf("got kind %v, want KindResolver", e.Kind)
	}
	if !errors.Is(e, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
	if e.Error() != "boom" {
		t.Fatalf("got message %q, want %q", e.Error(), "boom")
	}
}

func TestWithPathCopies(t *testing.T) {
	e := errs.New("driver.dispatchField", errs.KindPolicyDenied, "denied")
	withPath := e.WithPath([]interface{}{"user", "email"})
	if len(e.Path) != 0 {
		t.Fatalf("original error's path should be untouched, got %v", e.Path)
	}
	if len(withPath.Path) != 2 || withPath.Path[1] != "email" {
		t.Fatalf("got path %v, want [user email]", withPath.Path)
	}
}

func TestCancelledSeesThroughWrapper(t *testing.T) {
	e := errs.New("oer.Node.await", errs.KindCancelled, "request cancelled")
	wrapped := errs.New("driver.execute", errs.KindInternal, error(e))
	if !errs.Cancelled(wrapped) {
		t.Fatalf("expected Cancelled to see through the wrapper")
	}
}
