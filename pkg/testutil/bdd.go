package testutil

import "testing"

// Given opens a scenario subtest.
func Given(t *testing.T, scenario string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+scenario, fn)
}

// Then names the expected outcome inside a scenario.
func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+outcome, fn)
}
