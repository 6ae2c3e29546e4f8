// Package config loads the integrador configuration from defaults, an
// optional YAML file and INTEGRADOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
	"github.com/carlosfiori/integrador-apis/internal/feriados"
	"github.com/carlosfiori/integrador-apis/internal/ibge"
	"github.com/carlosfiori/integrador-apis/internal/upstream"
	"github.com/carlosfiori/integrador-apis/internal/viacep"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "INTEGRADOR_"

const (
	DefaultTimeout     = 10 * time.Second
	DefaultListenAddr  = ":8080"
	DefaultServiceName = "integrador-apis"
)

type Config struct {
	ViaCEPURL           string        `yaml:"viacep_url" validate:"required,url"`
	IBGELocalidadesURL  string        `yaml:"ibge_localidades_url" validate:"required,url"`
	IBGEPesquisasURL    string        `yaml:"ibge_pesquisas_url" validate:"required,url"`
	PopulationIndicator string        `yaml:"population_indicator" validate:"required,numeric"`
	HolidaysURL         string        `yaml:"holidays_url" validate:"required,url"`
	UserAgent           string        `yaml:"user_agent" validate:"required"`
	Timeout             time.Duration `yaml:"timeout" validate:"gt=0"`

	// Holidays enables the third lookup; false runs the two-service variant.
	Holidays   bool `yaml:"holidays"`
	Concurrent bool `yaml:"concurrent"`

	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn error disabled"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	ListenAddr   string `yaml:"listen_addr" validate:"required"`
	ServiceName  string `yaml:"service_name" validate:"required"`
	OTLPEndpoint string `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ViaCEPURL:           viacep.DefaultBaseURL,
		IBGELocalidadesURL:  ibge.DefaultLocalidadesURL,
		IBGEPesquisasURL:    ibge.DefaultPesquisasURL,
		PopulationIndicator: ibge.DefaultPopulationIndicator,
		HolidaysURL:         feriados.DefaultBaseURL,
		UserAgent:           upstream.DefaultUserAgent,
		Timeout:             DefaultTimeout,
		Holidays:            true,
		LogLevel:            "info",
		LogFormat:           "console",
		ListenAddr:          DefaultListenAddr,
		ServiceName:         DefaultServiceName,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// not empty), then environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, apperrors.NewConfigError("failed to read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, apperrors.NewConfigError("failed to parse config file %s: %v", path, err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and reports the first offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewConfigError("config error: %q failed %q (value %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Value())
	}
	return apperrors.NewConfigError("config error: %v", err)
}

// String renders the configuration for debug logs.
func (c Config) String() string {
	return fmt.Sprintf("viacep=%s ibge=%s|%s indicator=%s holidays=%t(%s) timeout=%s concurrent=%t",
		c.ViaCEPURL, c.IBGELocalidadesURL, c.IBGEPesquisasURL, c.PopulationIndicator,
		c.Holidays, c.HolidaysURL, c.Timeout, c.Concurrent)
}
