package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"gateway/vacuum"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/jellydator/ttlcache/v3"
)

const (
	DefaultPrefix   = "homeassistant"
	DefaultStateTTL = 10 * time.Minute

	stateKey = "state"
)

// Store mirrors the entities published by mqtt_statestream, it serves as the state port.
// Every topic is {prefix}/{domain}/{object_id}/{state|attribute}.
type Store struct {
	prefix string

	// Serializes read-modify-write of a single entity, cached snapshots are never mutated
	mu    sync.Mutex
	cache *ttlcache.Cache[vacuum.Reference, *vacuum.Snapshot]
}

func NewStore(prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl == 0 {
		ttl = DefaultStateTTL
	}

	return &Store{
		prefix: strings.TrimSuffix(prefix, "/"),
		cache: ttlcache.New(
			ttlcache.WithTTL[vacuum.Reference, *vacuum.Snapshot](ttl),
			ttlcache.WithDisableTouchOnHit[vacuum.Reference, *vacuum.Snapshot](),
		),
	}
}

// Start evicts expired entities until Stop is called
func (s *Store) Start() {
	go s.cache.Start()
}

func (s *Store) Stop() {
	s.cache.Stop()
}

func (s *Store) Topic() string {
	return s.prefix + "/+/+/+"
}

func (s *Store) Subscribe(client paho.Client) error {
	if !client.IsConnected() {
		return ErrNotConnected
	}

	if token := client.Subscribe(s.Topic(), 1, s.Handle); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", s.Topic(), token.Error())
	}

	return nil
}

// Handle applies a single statestream message, an empty payload clears the value
func (s *Store) Handle(_ paho.Client, msg paho.Message) {
	s.apply(msg.Topic(), msg.Payload())
}

func (s *Store) apply(topic string, payload []byte) {
	parts := strings.Split(strings.TrimPrefix(topic, s.prefix+"/"), "/")
	if len(parts) != 3 {
		slog.Debug("Ignoring statestream topic", "topic", topic)
		return
	}

	ref := vacuum.NewReference(parts[0], parts[1])
	key := parts[2]

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(payload) == 0 && key == stateKey {
		s.cache.Delete(ref)
		return
	}

	snapshot := &vacuum.Snapshot{EntityID: ref, Attributes: make(vacuum.Attributes)}
	if item := s.cache.Get(ref); item != nil {
		current := item.Value()
		snapshot.State = current.State
		for name, value := range current.Attributes {
			snapshot.Attributes[name] = value
		}
	}

	switch {
	case key == stateKey:
		snapshot.State = string(payload)
	case len(payload) == 0:
		delete(snapshot.Attributes, key)
	case json.Valid(payload):
		snapshot.Attributes[key] = slices.Clone(payload)
	default:
		// Not every publisher json encodes plain strings
		b, _ := json.Marshal(string(payload))
		snapshot.Attributes[key] = b
	}

	s.cache.Set(ref, snapshot, ttlcache.DefaultTTL)
}

func (s *Store) EntityExists(_ context.Context, ref vacuum.Reference) (bool, error) {
	return s.cache.Get(ref) != nil, nil
}

func (s *Store) State(_ context.Context, ref vacuum.Reference) (*vacuum.Snapshot, error) {
	item := s.cache.Get(ref)
	if item == nil {
		return nil, nil
	}

	return item.Value(), nil
}

// States returns the namespace sorted by entity id, entities that expired since listing are nil
func (s *Store) States(_ context.Context, namespace string) ([]*vacuum.Snapshot, error) {
	refs := s.cache.Keys()
	slices.Sort(refs)

	var snapshots []*vacuum.Snapshot
	for _, ref := range refs {
		if ref.Namespace() != namespace {
			continue
		}

		if item := s.cache.Get(ref); item != nil {
			snapshots = append(snapshots, item.Value())
		} else {
			snapshots = append(snapshots, nil)
		}
	}

	return snapshots, nil
}
