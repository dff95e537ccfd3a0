package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteExample writes a commented starter configuration file. It refuses to
// overwrite an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := Default()
	cfg.Database.Driver = "mysql"
	cfg.Database.DSN = "keygate:password@tcp(localhost:3306)/keygate"
	cfg.Auth.JWTSecret = "change-me"

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}

	header := []byte("# Keygate configuration. Every value can also be set via KEYGATE_* env\n# variables, e.g. KEYGATE_AUTH_JWT_SECRET, KEYGATE_DATABASE_DSN.\n")
	return os.WriteFile(path, append(header, out...), 0600)
}
