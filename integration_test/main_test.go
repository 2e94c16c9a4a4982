package integration_test

import (
	"os"
	"testing"

	"github.com/hupe1980/primesieve"
)

func TestMain(m *testing.M) {
	if primesieve.IsWorkerProcess() {
		os.Exit(primesieve.ServeWorker())
	}
	os.Exit(m.Run())
}
