package hass

import (
	"encoding/base64"
	"time"
)

type Config struct {
	URL     string        `yaml:"url" envconfig:"HASS_URL"`
	Token   Token         `yaml:"token" envconfig:"HASS_TOKEN"`
	Timeout time.Duration `yaml:"timeout" envconfig:"HASS_TIMEOUT"`
}

// Token is a long lived access token, passed base64 encoded through the environment
type Token string

func (t *Token) Decode(value string) error {
	b, err := base64.StdEncoding.DecodeString(value)
	*t = Token(b)

	return err
}
