package vacuum

import "context"

// StatePort reads entities from the home automation state store
type StatePort interface {
	EntityExists(ctx context.Context, ref Reference) (bool, error)
	// State returns nil without an error when the store has nothing for ref
	State(ctx context.Context, ref Reference) (*Snapshot, error)
	// States returns every entity in the namespace, entries may be nil
	States(ctx context.Context, namespace string) ([]*Snapshot, error)
}

// CommandPort calls a service in the home automation runtime without waiting for its completion
type CommandPort interface {
	Invoke(ctx context.Context, service string, params map[string]any) error
}
