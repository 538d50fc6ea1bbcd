package seed_test

import (
	"os"
	"testing"

	"github.com/pkordes/case-gallery/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunMigrated(m))
}
