package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/filedrop/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell absent keys from zero values.
type JSONConfig struct {
	Server  *string         `json:"server"`
	Timeout *timex.Duration `json:"timeout"`
}

func parseJSON(cfg *Config, file string) error {
	if file == "" {
		return nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", file, err)
	}

	if jc.Server != nil {
		cfg.Server = *jc.Server
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
	return nil
}
