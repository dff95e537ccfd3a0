package cli

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/keygate/keygate/internal/config"
	"github.com/keygate/keygate/internal/store"
)

// replacer maps nested config keys to env var segments, so that
// auth.jwt_secret resolves from KEYGATE_AUTH_JWT_SECRET.
func replacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// loadConfig merges file, env, and defaults into a Config.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// openStore opens the configured backing store. CLI subcommands that touch
// the database go through here so they share the serve command's config
// surface.
func openStore(cfg config.Config) (*store.Store, error) {
	return store.Open(store.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}
