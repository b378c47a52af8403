package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "ARTSTOCK_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the process runs under tests, in which case the
// binaries return before touching Redis or Postgres.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads ARTSTOCK_TEST_MODE after the environment changes.
func RefreshTestMode() {
	detectTestMode()
}
