package config

import (
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// envFiles are tried in order; every one that exists is loaded. Existing process variables
// are never overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() error {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load env file "+name).
				WithContext("path", name).
				Build()
		}
	}
	return nil
}
