package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gateway/api"
	"gateway/integration/hass"
	"gateway/integration/mqtt"
	"gateway/logging"
	"gateway/vacuum"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	BackendHass = "hass"
	BackendMQTT = "mqtt"
)

type Config struct {
	// Which state store the gateway reads from and sends commands to
	Backend string `yaml:"backend" envconfig:"BACKEND"`

	HTTP   api.Config     `yaml:"http"`
	Hass   hass.Config    `yaml:"hass"`
	MQTT   mqtt.Config    `yaml:"mqtt"`
	Vacuum vacuum.Config  `yaml:"vacuum"`
	Log    logging.Config `yaml:"log"`
}

func defaults() Config {
	var cfg Config

	cfg.Backend = BackendHass
	cfg.HTTP.Addr = ":8090"
	cfg.HTTP.Prefix = api.DefaultPrefix
	cfg.Hass.URL = "http://homeassistant:8123"
	cfg.MQTT.Host = "localhost"
	cfg.MQTT.Port = "1883"
	cfg.MQTT.ClientID = "vacuum-gateway"
	cfg.MQTT.Prefix = mqtt.DefaultPrefix
	cfg.MQTT.CommandTopic = mqtt.DefaultCommandTopic
	cfg.MQTT.StateTTL = mqtt.DefaultStateTTL
	cfg.Vacuum.Namespace = vacuum.Namespace
	cfg.Vacuum.CleanService = vacuum.DefaultCleanService
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"

	return cfg
}

// Path returns the config file location, VACUUM_CONFIG overrides the default config.yml
func Path() string {
	if path, ok := os.LookupEnv("VACUUM_CONFIG"); ok {
		return path
	}

	return "config.yml"
}

func Get(path string) (Config, error) {
	cfg := defaults()

	// First load the config from the yaml file, it is optional when everything is passed through the environment
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("opening config file: %w", err)
	default:
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Then load values from environment
	// This can be used to either override the config or pass in secrets
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendHass:
		if c.Hass.URL == "" {
			return errors.New("hass.url is required")
		}
		if c.Hass.Token == "" {
			return errors.New("hass.token is required")
		}
	case BackendMQTT:
		if c.MQTT.Host == "" {
			return errors.New("mqtt.host is required")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	return nil
}
