package vacuum

import (
	"context"
	"fmt"

	"gateway/logging"

	"github.com/kr/pretty"
)

const DefaultCleanService = "dreame_vacuum/vacuum_clean_segment"

type Config struct {
	Namespace    string `yaml:"namespace" envconfig:"VACUUM_NAMESPACE"`
	CleanService string `yaml:"clean_service" envconfig:"VACUUM_CLEAN_SERVICE"`
}

// Gateway translates requests into reads and commands against the state store.
// It holds no state of its own.
type Gateway struct {
	namespace    string
	cleanService string

	state    StatePort
	commands CommandPort
}

// Summary and Status report attributes as the store holds them, a missing
// counter falls back to 0 but a value of another type is passed through
type Summary struct {
	ID            string    `json:"id"`
	EntityID      Reference `json:"entity_id"`
	Name          string    `json:"name"`
	State         string    `json:"state"`
	BatteryLevel  any       `json:"battery_level"`
	CleaningCount any       `json:"cleaning_count"`
}

type Status struct {
	State          string `json:"state"`
	BatteryLevel   any    `json:"battery_level"`
	CleaningCount  any    `json:"cleaning_count"`
	CleaningTime   any    `json:"cleaning_time"`
	CurrentSegment any    `json:"current_segment"`
	ErrorCode      any    `json:"error_code"`
	LastCleanStart any    `json:"last_clean_start"`
	LastCleanEnd   any    `json:"last_clean_end"`
}

func New(config Config, state StatePort, commands CommandPort) *Gateway {
	g := &Gateway{
		namespace:    config.Namespace,
		cleanService: config.CleanService,
		state:        state,
		commands:     commands,
	}

	if g.namespace == "" {
		g.namespace = Namespace
	}
	if g.cleanService == "" {
		g.cleanService = DefaultCleanService
	}

	return g
}

// Validate turns the raw id into a reference, the bool is false if the id is empty or unknown to the store
func (g *Gateway) Validate(ctx context.Context, rawID string) (Reference, bool, error) {
	if rawID == "" {
		return "", false, nil
	}

	ref := NewReference(g.namespace, rawID)
	exists, err := g.state.EntityExists(ctx, ref)
	if err != nil {
		return "", false, fmt.Errorf("checking %s: %w", ref, err)
	}
	if !exists {
		return "", false, nil
	}

	return ref, true, nil
}

func (g *Gateway) ListDevices(ctx context.Context) Envelope {
	log := logging.FromContext(ctx)
	log.Info("Received vacuum info request")

	snapshots, err := g.state.States(ctx, g.namespace)
	if err != nil {
		log.Error("Error in get_vacuums", "error", err)
		return internalError(err)
	}

	vacuums := []Summary{}
	ids := []string{}
	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}

		vacuums = append(vacuums, Summary{
			ID:            snapshot.EntityID.ObjectID(),
			EntityID:      snapshot.EntityID,
			Name:          Get(snapshot.Attributes, "friendly_name", snapshot.EntityID.String()),
			State:         snapshot.StateOr("unknown"),
			BatteryLevel:  Get[any](snapshot.Attributes, "battery_level", 0),
			CleaningCount: Get[any](snapshot.Attributes, "cleaning_count", 0),
		})
		ids = append(ids, snapshot.EntityID.ObjectID())
	}

	log.Info(fmt.Sprintf("Retrieved %d vacuums", len(vacuums)))
	log.Debug("Vacuums", "vacuums", pretty.Sprint(vacuums))
	log.Info("Available vacuums", "ids", ids)

	return ok(map[string]any{"vacuums": vacuums})
}

// lookup runs the validation sequence shared by the single vacuum operations,
// the returned envelope is only set when the snapshot could not be retrieved
func (g *Gateway) lookup(ctx context.Context, vacuumID string) (Reference, *Snapshot, *Envelope) {
	if vacuumID == "" {
		e := badRequest("No vacuum_id specified")
		return "", nil, &e
	}

	ref, valid, err := g.Validate(ctx, vacuumID)
	if err != nil {
		e := internalError(err)
		return "", nil, &e
	}
	if !valid {
		e := badRequest(fmt.Sprintf("Invalid vacuum_id: %s", vacuumID))
		return "", nil, &e
	}

	snapshot, err := g.state.State(ctx, ref)
	if err != nil {
		e := internalError(err)
		return "", nil, &e
	}
	if snapshot == nil {
		e := notFound(fmt.Sprintf("Vacuum %s not found", ref))
		return "", nil, &e
	}

	return ref, snapshot, nil
}

func (g *Gateway) GetRooms(ctx context.Context, vacuumID string) Envelope {
	log := logging.FromContext(ctx)
	log.Info("Received rooms request", "vacuum_id", vacuumID)

	ref, snapshot, failed := g.lookup(ctx, vacuumID)
	if failed != nil {
		if failed.Status >= 500 {
			log.Error("Error in get_rooms", "error", failed.Error)
		}
		return *failed
	}

	raw := snapshot.Attributes[RoomsAttribute]
	if isEmpty(raw) {
		return notFound("No rooms found for the vacuum.")
	}

	generations, err := decodeGenerations(raw)
	if err != nil {
		log.Error("Error in get_rooms", "error", err)
		return internalError(err)
	}

	generation, found := activeGeneration(generations)
	if !found {
		return notFound("No rooms found for the vacuum.")
	}

	rooms, err := extractRooms(log, generation)
	if err != nil {
		log.Error("Error in get_rooms", "error", err)
		return internalError(err)
	}

	log.Info(fmt.Sprintf("Returning %d rooms for %s", len(rooms), ref), "map", generation.ID)

	return ok(map[string]any{"rooms": rooms})
}

func (g *Gateway) GetStatus(ctx context.Context, vacuumID string) Envelope {
	log := logging.FromContext(ctx)
	log.Info("Received status request", "vacuum_id", vacuumID)

	_, snapshot, failed := g.lookup(ctx, vacuumID)
	if failed != nil {
		if failed.Status >= 500 {
			log.Error("Error in get_status", "error", failed.Error)
		}
		return *failed
	}

	return ok(map[string]any{"status": statusOf(snapshot)})
}

func statusOf(snapshot *Snapshot) Status {
	attrs := snapshot.Attributes

	return Status{
		State:          snapshot.StateOr("unknown"),
		BatteryLevel:   Get[any](attrs, "battery_level", 0),
		CleaningCount:  Get[any](attrs, "cleaning_count", 0),
		CleaningTime:   Get[any](attrs, "cleaning_time", 0),
		CurrentSegment: Get[any](attrs, "current_segment", nil),
		ErrorCode:      Get[any](attrs, "error_code", nil),
		LastCleanStart: Get[any](attrs, "last_clean_start", nil),
		LastCleanEnd:   Get[any](attrs, "last_clean_end", nil),
	}
}
