package testutil

import (
	"os"
	"path/filepath"

	"github.com/ethaccount/aa4337/src/utils"
	"github.com/joho/godotenv"
)

// GetEnv reads key from the environment, loading .env from the project
// root first if present. Tests that depend on it must check for an
// empty result and skip rather than fail, since no .env is required to
// run the suite.
func GetEnv(key string) string {
	_ = godotenv.Load(filepath.Join(utils.FindProjectRoot(), ".env"))
	return os.Getenv(key)
}
