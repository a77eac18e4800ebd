package vacuum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gateway/logging"
)

// Payload is a decoded request body, values are kept raw until they are validated
type Payload map[string]json.RawMessage

// CleanCommand asks the vacuum to clean the given segments
type CleanCommand struct {
	EntityID Reference
	Segments []any
	Repeats  any
}

func (c CleanCommand) Params() map[string]any {
	return map[string]any{
		"entity_id": c.EntityID.String(),
		"segments":  c.Segments,
		"repeats":   c.Repeats,
	}
}

// String returns the value as text, strings are unquoted and other values are returned as is.
// Empty values such as 0 or false read as missing.
func (p Payload) String(key string) string {
	raw, found := p[key]
	if !found || isEmpty(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(bytes.TrimSpace(raw))
}

func decodeNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	return dec.Decode(v)
}

func (p Payload) segments() ([]any, bool) {
	raw, found := p["segments"]
	if !found || isNull(raw) {
		return nil, false
	}

	var segments []any
	if err := decodeNumbers(raw, &segments); err != nil || len(segments) == 0 {
		return nil, false
	}

	return segments, true
}

func (p Payload) repeats() any {
	raw, found := p["repeats"]
	if !found {
		return 1
	}

	var repeats any
	if err := decodeNumbers(raw, &repeats); err != nil {
		return 1
	}

	return repeats
}

func (g *Gateway) StartCleaning(ctx context.Context, payload Payload) Envelope {
	log := logging.FromContext(ctx)
	log.Info("Received start cleaning request", "args", payload.debug())

	if len(payload) == 0 {
		log.Error("No request data received!")
		return badRequest("No request data received!")
	}

	vacuumID := payload.String("vacuum_id")
	if vacuumID == "" {
		log.Error("No vacuum_id specified!")
		return badRequest("No vacuum_id specified!")
	}

	segments, valid := payload.segments()
	if !valid {
		log.Error("Invalid segments: must be a non-empty list!")
		return badRequest("Invalid segments: must be a non-empty list!")
	}

	ref, valid, err := g.Validate(ctx, vacuumID)
	if err != nil {
		log.Error("Error in start_cleaning", "error", err)
		return internalError(err)
	}
	if !valid {
		message := fmt.Sprintf("Invalid vacuum_id: %s", vacuumID)
		log.Error(message)
		return badRequest(message)
	}

	command := CleanCommand{EntityID: ref, Segments: segments, Repeats: payload.repeats()}

	log.Info(fmt.Sprintf("Starting cleaning for %s", ref), "segments", command.Segments, "repeats", command.Repeats)
	if err := g.commands.Invoke(ctx, g.cleanService, command.Params()); err != nil {
		log.Error("Error in start_cleaning", "error", err)
		return internalError(err)
	}

	return ok(nil)
}

func (p Payload) debug() map[string]string {
	args := make(map[string]string, len(p))
	for key, raw := range p {
		args[key] = string(raw)
	}

	return args
}
