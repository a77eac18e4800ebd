package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gateway/vacuum"
)

var ErrUnexpectedStatus = errors.New("unexpected status from home assistant")

const defaultTimeout = 10 * time.Second

// Client talks to the Home Assistant REST api, it serves as both the state and the command port
type Client struct {
	baseURL string
	token   Token
	client  *http.Client
}

type entityState struct {
	EntityID   string            `json:"entity_id"`
	State      string            `json:"state"`
	Attributes vacuum.Attributes `json:"attributes"`
}

func (e *entityState) snapshot() *vacuum.Snapshot {
	return &vacuum.Snapshot{
		EntityID:   vacuum.Reference(e.EntityID),
		State:      e.State,
		Attributes: e.Attributes,
	}
}

func New(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(config.URL, "/"),
		token:   config.Token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method string, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+string(c.token))
	req.Header.Set("Content-Type", "application/json")

	return c.client.Do(req)
}

func unexpected(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(b)))
}

func (c *Client) State(ctx context.Context, ref vacuum.Reference) (*vacuum.Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/states/"+url.PathEscape(ref.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching state of %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, unexpected(resp)
	}

	var state entityState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("decoding state of %s: %w", ref, err)
	}

	return state.snapshot(), nil
}

func (c *Client) EntityExists(ctx context.Context, ref vacuum.Reference) (bool, error) {
	snapshot, err := c.State(ctx, ref)
	if err != nil {
		return false, err
	}

	return snapshot != nil, nil
}

// States fetches all states in one call and keeps the ones in the namespace, in the order home assistant returns them
func (c *Client) States(ctx context.Context, namespace string) ([]*vacuum.Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/states", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching states: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpected(resp)
	}

	var states []*entityState
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("decoding states: %w", err)
	}

	var snapshots []*vacuum.Snapshot
	for _, state := range states {
		if state == nil {
			continue
		}

		if vacuum.Reference(state.EntityID).Namespace() == namespace {
			snapshots = append(snapshots, state.snapshot())
		}
	}

	return snapshots, nil
}

// Invoke calls service, written as domain/service, without waiting for the device to act on it
func (c *Client) Invoke(ctx context.Context, service string, params map[string]any) error {
	domain, name, found := strings.Cut(service, "/")
	if !found {
		domain, name, found = strings.Cut(service, ".")
	}
	if !found {
		return fmt.Errorf("invalid service name %q", service)
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/services/%s/%s", url.PathEscape(domain), url.PathEscape(name)), params)
	if err != nil {
		return fmt.Errorf("calling %s: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpected(resp)
	}

	return nil
}
