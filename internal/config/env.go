// This file contains environment variable overrides.

package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envOverride maps one INTEGRADOR_* variable onto a Config field.
type envOverride struct {
	envKey string
	apply  func(*Config, string) error
}

var envOverrides = []envOverride{
	{"VIACEP_URL", func(c *Config, v string) error { c.ViaCEPURL = v; return nil }},
	{"IBGE_LOCALIDADES_URL", func(c *Config, v string) error { c.IBGELocalidadesURL = v; return nil }},
	{"IBGE_PESQUISAS_URL", func(c *Config, v string) error { c.IBGEPesquisasURL = v; return nil }},
	{"POPULATION_INDICATOR", func(c *Config, v string) error { c.PopulationIndicator = v; return nil }},
	{"HOLIDAYS_URL", func(c *Config, v string) error { c.HolidaysURL = v; return nil }},
	{"USER_AGENT", func(c *Config, v string) error { c.UserAgent = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.LogFormat = strings.ToLower(v); return nil }},
	{"LISTEN_ADDR", func(c *Config, v string) error { c.ListenAddr = v; return nil }},
	{"SERVICE_NAME", func(c *Config, v string) error { c.ServiceName = v; return nil }},
	{"OTLP_ENDPOINT", func(c *Config, v string) error { c.OTLPEndpoint = v; return nil }},

	{"TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.NewConfigError("invalid %sTIMEOUT %q: %v", EnvPrefix, v, err)
		}
		c.Timeout = d
		return nil
	}},

	{"HOLIDAYS", boolOverride(func(c *Config) *bool { return &c.Holidays })},
	{"CONCURRENT", boolOverride(func(c *Config) *bool { return &c.Concurrent })},
}

func boolOverride(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			*field(c) = true
		case "false", "0", "no":
			*field(c) = false
		default:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return apperrors.NewConfigError("invalid boolean %q", v)
			}
			*field(c) = b
		}
		return nil
	}
}

// ApplyEnv applies every INTEGRADOR_* variable found through lookup.
// Empty values are ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for _, o := range envOverrides {
		v, ok := lookup(EnvPrefix + o.envKey)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return err
		}
	}
	return nil
}
