package vacuum

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type invocation struct {
	service string
	params  map[string]any
}

// fakeStore implements both ports in memory and records every call
type fakeStore struct {
	order     []Reference
	snapshots map[Reference]*Snapshot
	// Registered but without a retrievable snapshot
	ghosts map[Reference]bool

	err       error
	invokeErr error

	stateReads  int
	invocations []invocation
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshots: make(map[Reference]*Snapshot), ghosts: make(map[Reference]bool)}
}

func (f *fakeStore) add(t *testing.T, ref Reference, state string, attrs map[string]any) {
	t.Helper()

	attributes := make(Attributes)
	for key, value := range attrs {
		if raw, ok := value.(json.RawMessage); ok {
			attributes[key] = raw
			continue
		}

		b, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("marshal %s: %v", key, err)
		}
		attributes[key] = b
	}

	f.order = append(f.order, ref)
	f.snapshots[ref] = &Snapshot{EntityID: ref, State: state, Attributes: attributes}
}

func (f *fakeStore) EntityExists(_ context.Context, ref Reference) (bool, error) {
	if f.err != nil {
		return false, f.err
	}

	_, found := f.snapshots[ref]
	return found || f.ghosts[ref], nil
}

func (f *fakeStore) State(_ context.Context, ref Reference) (*Snapshot, error) {
	f.stateReads++
	if f.err != nil {
		return nil, f.err
	}

	return f.snapshots[ref], nil
}

func (f *fakeStore) States(_ context.Context, namespace string) ([]*Snapshot, error) {
	f.stateReads++
	if f.err != nil {
		return nil, f.err
	}

	var snapshots []*Snapshot
	for _, ref := range f.order {
		if ref.Namespace() == namespace {
			snapshots = append(snapshots, f.snapshots[ref])
		}
	}

	return snapshots, nil
}

func (f *fakeStore) Invoke(_ context.Context, service string, params map[string]any) error {
	f.invocations = append(f.invocations, invocation{service: service, params: params})

	return f.invokeErr
}

var errStoreDown = errors.New("connection refused")

func newTestGateway(store *fakeStore) *Gateway {
	return New(Config{}, store, store)
}
