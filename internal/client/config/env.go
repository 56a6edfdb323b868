package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/dmitrijs2005/filedrop/internal/timex"
)

func parseEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix("FILEDROP")
	for _, key := range []string{"server", "timeout"} {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	if v.IsSet("server") {
		cfg.Server = v.GetString("server")
	}
	if v.IsSet("timeout") {
		var d timex.Duration
		if err := d.UnmarshalText([]byte(v.GetString("timeout"))); err != nil {
			return fmt.Errorf("FILEDROP_TIMEOUT: %w", err)
		}
		cfg.Timeout = d.Duration
	}
	return nil
}
