package vacuum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// RoomsAttribute holds the zone maps keyed by map id
const RoomsAttribute = "rooms"

type Room struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
	// Icon is passed through as reported, null when the record has none
	Icon any `json:"icon"`
}

// MapGeneration is one set of zone records, in the order the store reported it
type MapGeneration struct {
	ID    string
	Rooms json.RawMessage
}

var errMalformedRoom = errors.New("malformed room record")

// decodeGenerations decodes the zone map attribute while keeping key insertion order,
// which encoding/json discards when decoding into a map
func decodeGenerations(raw json.RawMessage) ([]MapGeneration, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%s attribute is not an object", RoomsAttribute)
	}

	var generations []MapGeneration
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected map key %v", tok)
		}

		var rooms json.RawMessage
		if err := dec.Decode(&rooms); err != nil {
			return nil, err
		}

		generations = append(generations, MapGeneration{ID: key, Rooms: rooms})
	}

	// Closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return generations, nil
}

// activeGeneration selects the most recently inserted map
// @TODO Revisit once the integration exposes which map is currently selected on the device
func activeGeneration(generations []MapGeneration) (MapGeneration, bool) {
	if len(generations) == 0 {
		return MapGeneration{}, false
	}

	return generations[len(generations)-1], true
}

func decodeRoom(raw json.RawMessage) (Room, error) {
	var record struct {
		ID   any     `json:"id"`
		Name *string `json:"name"`
		Icon any     `json:"icon"`
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return Room{}, fmt.Errorf("%w: %v", errMalformedRoom, err)
	}

	if record.ID == nil {
		return Room{}, fmt.Errorf("%w: missing id", errMalformedRoom)
	}
	if record.Name == nil {
		return Room{}, fmt.Errorf("%w: missing name", errMalformedRoom)
	}

	return Room{ID: record.ID, Name: *record.Name, Icon: record.Icon}, nil
}

// extractRooms returns the valid rooms of the generation sorted by name,
// records that cannot be decoded are logged and dropped
func extractRooms(log *slog.Logger, generation MapGeneration) ([]Room, error) {
	rooms := []Room{}
	if isNull(generation.Rooms) {
		return rooms, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(generation.Rooms, &records); err != nil {
		return nil, fmt.Errorf("rooms of map %s are not a list: %w", generation.ID, err)
	}

	for _, record := range records {
		room, err := decodeRoom(record)
		if err != nil {
			log.Warn("Error processing room data", "room", string(record), "map", generation.ID, "error", err)
			continue
		}

		rooms = append(rooms, room)
	}

	slices.SortStableFunc(rooms, func(a, b Room) int {
		return strings.Compare(a.Name, b.Name)
	})

	return rooms, nil
}
