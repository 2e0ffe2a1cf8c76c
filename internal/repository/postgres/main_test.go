package postgres

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads .env.test so integration tests find their database
func TestMain(m *testing.M) {
	_ = godotenv.Load("../../../.env.test")

	os.Exit(m.Run())
}
