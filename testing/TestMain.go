package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("TRUCKBEDS_TEST_MODE", "1")
		// Tests must never reach the production automation endpoint.
		if os.Getenv("WEBHOOK_URL") == "" {
			_ = os.Setenv("WEBHOOK_URL", "http://127.0.0.1:0/webhook")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
