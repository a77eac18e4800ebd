package mqtt

import "time"

type Config struct {
	Host     string `yaml:"host" envconfig:"MQTT_HOST"`
	Port     string `yaml:"port" envconfig:"MQTT_PORT"`
	Username string `yaml:"username" envconfig:"MQTT_USERNAME"`
	Password string `yaml:"password" envconfig:"MQTT_PASSWORD"`
	ClientID string `yaml:"client_id" envconfig:"MQTT_CLIENT_ID"`

	// Base topic of the home assistant mqtt_statestream integration
	Prefix string `yaml:"prefix" envconfig:"MQTT_STATESTREAM_PREFIX"`
	// Topic an automation on the home assistant side listens on to run service calls
	CommandTopic string `yaml:"command_topic" envconfig:"MQTT_COMMAND_TOPIC"`
	// Entities that stop reporting are forgotten after this long
	StateTTL time.Duration `yaml:"state_ttl" envconfig:"MQTT_STATE_TTL"`
}
