package mqtt

import (
	"errors"
	"fmt"
	"log/slog"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var ErrNotConnected = errors.New("mqtt client is not connected")

// Messages on topics nobody subscribed to are only interesting while debugging
var defaultHandler paho.MessageHandler = func(client paho.Client, msg paho.Message) {
	slog.Debug("Unhandled mqtt message", "topic", msg.Topic(), "payload", string(msg.Payload()))
}

func New(config Config) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(fmt.Sprintf("%s:%s", config.Host, config.Port))
	opts.SetClientID(config.ClientID)
	opts.SetDefaultPublishHandler(defaultHandler)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to %s:%s: %w", config.Host, config.Port, token.Error())
	}

	return client, nil
}

func Delete(m paho.Client, topics ...string) {
	if len(topics) > 0 {
		if token := m.Unsubscribe(topics...); token.Wait() && token.Error() != nil {
			slog.Warn("Failed to unsubscribe", "topics", topics, "error", token.Error())
		}
	}

	m.Disconnect(250)
}
