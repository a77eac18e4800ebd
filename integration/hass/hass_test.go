package hass

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gateway/vacuum"
)

const testToken = "secret"

const statesBody = `[
	{"entity_id": "light.hall", "state": "on", "attributes": {}},
	{"entity_id": "vacuum.upstairs", "state": "cleaning", "attributes": {"battery_level": 40}},
	{"entity_id": "vacuum.kitchen", "state": "docked", "attributes": {"rooms": {"2": [], "1": []}}}
]`

type recorded struct {
	path string
	body map[string]any
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(Config{URL: srv.URL + "/", Token: testToken})
}

func TestState(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/states/vacuum.kitchen":
			io.WriteString(w, `{"entity_id": "vacuum.kitchen", "state": "docked", "attributes": {"battery_level": 87}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	snapshot, err := c.State(ctx, "vacuum.kitchen")
	if err != nil {
		t.Fatalf("State() error: %v", err)
	}
	if snapshot.EntityID != "vacuum.kitchen" || snapshot.State != "docked" {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if got := vacuum.Get(snapshot.Attributes, "battery_level", 0.0); got != 87 {
		t.Errorf("battery_level = %v, want 87", got)
	}

	snapshot, err = c.State(ctx, "vacuum.garage")
	if err != nil || snapshot != nil {
		t.Errorf("State() of unknown = (%v, %v), want (nil, nil)", snapshot, err)
	}
}

func TestEntityExists(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/states/vacuum.kitchen" {
			io.WriteString(w, `{"entity_id": "vacuum.kitchen", "state": "docked"}`)
			return
		}
		http.NotFound(w, r)
	})

	for ref, want := range map[vacuum.Reference]bool{"vacuum.kitchen": true, "vacuum.garage": false} {
		exists, err := c.EntityExists(context.Background(), ref)
		if err != nil {
			t.Fatalf("EntityExists(%s) error: %v", ref, err)
		}
		if exists != want {
			t.Errorf("EntityExists(%s) = %v, want %v", ref, exists, want)
		}
	}
}

func TestStates(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, statesBody)
	})

	snapshots, err := c.States(context.Background(), "vacuum")
	if err != nil {
		t.Fatalf("States() error: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}
	if snapshots[0].EntityID != "vacuum.upstairs" || snapshots[1].EntityID != "vacuum.kitchen" {
		t.Errorf("unexpected order %s, %s", snapshots[0].EntityID, snapshots[1].EntityID)
	}
	if string(snapshots[1].Attributes["rooms"]) != `{"2": [], "1": []}` {
		t.Errorf("rooms attribute was not kept raw: %s", snapshots[1].Attributes["rooms"])
	}
}

func TestStatesUnauthorized(t *testing.T) {
	c := testClient(t, nil)
	c.token = "wrong"

	_, err := c.States(context.Background(), "vacuum")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestInvoke(t *testing.T) {
	var calls []recorded
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		calls = append(calls, recorded{path: r.URL.Path, body: body})

		io.WriteString(w, `[]`)
	})

	err := c.Invoke(context.Background(), "dreame_vacuum/vacuum_clean_segment", map[string]any{
		"entity_id": "vacuum.kitchen",
		"segments":  []int{1, 2},
		"repeats":   2,
	})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].path != "/api/services/dreame_vacuum/vacuum_clean_segment" {
		t.Errorf("path = %s", calls[0].path)
	}
	if calls[0].body["entity_id"] != "vacuum.kitchen" || calls[0].body["repeats"] != float64(2) {
		t.Errorf("body = %v", calls[0].body)
	}
}

func TestInvokeDottedService(t *testing.T) {
	var path string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	})

	if err := c.Invoke(context.Background(), "vacuum.start", nil); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if path != "/api/services/vacuum/start" {
		t.Errorf("path = %s", path)
	}
}

func TestInvokeErrors(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Service not found", http.StatusBadRequest)
	})

	if err := c.Invoke(context.Background(), "vacuum", nil); err == nil {
		t.Error("expected error for service without domain")
	}

	err := c.Invoke(context.Background(), "dreame_vacuum/unknown", nil)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestTokenDecode(t *testing.T) {
	var token Token
	if err := token.Decode("c2VjcmV0"); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if token != testToken {
		t.Errorf("token = %q, want %q", token, testToken)
	}
}
