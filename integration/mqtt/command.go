package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const DefaultCommandTopic = "vacuum-gateway/command"

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Command is picked up by an automation in home assistant that performs the service call
type Command struct {
	ID      string         `json:"id"`
	Service string         `json:"service"`
	Data    map[string]any `json:"data"`
}

// Commander publishes service calls over mqtt, it serves as the command port
type Commander struct {
	client publisher
	topic  string
}

func NewCommander(client paho.Client, topic string) *Commander {
	return newCommander(client, topic)
}

func newCommander(client publisher, topic string) *Commander {
	if topic == "" {
		topic = DefaultCommandTopic
	}

	return &Commander{client: client, topic: topic}
}

// Invoke returns once the broker accepted the command, not when it has been executed
func (c *Commander) Invoke(ctx context.Context, service string, params map[string]any) error {
	msg, err := json.Marshal(Command{
		ID:      uuid.New().String(),
		Service: service,
		Data:    params,
	})
	if err != nil {
		return err
	}

	token := c.client.Publish(c.topic, 1, false, msg)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing %s: %w", service, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
