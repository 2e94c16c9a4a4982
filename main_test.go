package primesieve

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	if IsWorkerProcess() {
		os.Exit(ServeWorker())
	}
	os.Exit(m.Run())
}
