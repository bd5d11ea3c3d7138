package payments

import (
	"os"
	"testing"

	"academy/config"
)

func TestMain(m *testing.M) {
	config.LoadConfig()
	os.Exit(m.Run())
}
