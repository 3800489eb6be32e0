package flags_test

import (
	"testing"

	"github.com/viaduct-dev/viaduct/flags"
)

func TestDefaults(t *testing.T) {
	m := flags.Defaults()
	if !m.Enabled(flags.ExecuteAccessChecks) {
		t.Fatalf("ExecuteAccessChecks should default to enabled")
	}
	if m.Enabled(flags.DisableQueryPlanCache) {
		t.Fatalf("DisableQueryPlanCache should default to disabled")
	}
	if m.Enabled(flags.EnableSubqueryExecutionViaHandle) {
		t.Fatalf("EnableSubqueryExecutionViaHandle should default to disabled")
	}
}

func TestStaticOverride(t *testing.T) {
	m := flags.NewStatic(map[flags.Flag]bool{
		flags.ExecuteAccessChecks:              false,
		flags.EnableSubqueryExecutionViaHandle: true,
	})
	if m.Enabled(flags.ExecuteAccessChecks) {
		t.Fatalf("override should have disabled ExecuteAccessChecks")
	}
	if !m.Enabled(flags.EnableSubqueryExecutionViaHandle) {
		t.Fatalf("override should have enabled EnableSubqueryExecutionViaHandle")
	}
	// Unset flags still fall back to documented defaults.
	if m.Enabled(flags.DisableQueryPlanCache) {
		t.Fatalf("unset flag should fall back to default (disabled)")
	}
}
