// Package testing switches the process into test mode when imported.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ARTSTOCK_TEST_MODE", "1")
		if os.Getenv("FIXTURE_SEED") == "" {
			_ = os.Setenv("FIXTURE_SEED", "42")
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain is usable as a package TestMain that guarantees test mode.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
