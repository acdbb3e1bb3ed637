// Package env talks to the environment server: an external process
// that generates symbolic-reasoning problems and lists the legal moves
// out of a batch of states.
package env

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"solveragent/types"
)

// Client is the HTTP client for the environment server. One instance
// per agent process; the server is stateless between calls.
type Client struct {
	url    string
	domain string
	client *http.Client
}

func NewClient(url string, domain string) *Client {
	return &Client{
		url:    url,
		domain: domain,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

func (c *Client) Domain() string { return c.domain }

type generateRequest struct {
	Domain string `json:"domain"`
	Seed   *int64 `json:"seed,omitempty"`
}

type generateResponse struct {
	State []string `json:"state"`
	Goals []string `json:"goals"`
}

type stepRequest struct {
	Domain string     `json:"domain"`
	States [][]string `json:"states"`
	Goals  [][]string `json:"goals"`
}

type stepAction struct {
	Action string `json:"action"`
	State  string `json:"state"`
}

type stepResponse struct {
	Success bool         `json:"success"`
	Actions []stepAction `json:"actions"`
}

var _ types.Environment = (*Client)(nil)

// GenerateNew asks the server for a fresh problem. A negative seed
// requests an unseeded instance.
func (c *Client) GenerateNew(ctx context.Context, seed int64) (*types.State, error) {
	req := generateRequest{Domain: c.domain}
	if seed >= 0 {
		req.Seed = &seed
	}
	var resp generateResponse
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return types.NewState(resp.State, resp.Goals, 0.0), nil
}

// Step expands the whole batch in one round trip. For each input state
// the server reports whether it meets its goals and the legal moves out
// of it; each move's resulting state extends the source facts by one.
//
// The observed reward is written into the stepped state's value, so a
// strictly positive value afterwards marks the state as solved; path
// reconstruction depends on this.
func (c *Client) Step(ctx context.Context, states []*types.State) ([]types.StepResult, error) {
	req := stepRequest{
		Domain: c.domain,
		States: make([][]string, len(states)),
		Goals:  make([][]string, len(states)),
	}
	for i, s := range states {
		req.States[i] = s.Facts
		req.Goals[i] = s.Goals
	}

	var resp []stepResponse
	if err := c.post(ctx, "/step", req, &resp); err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}
	if len(resp) != len(states) {
		return nil, fmt.Errorf("step: got %d results for %d states", len(resp), len(states))
	}

	out := make([]types.StepResult, len(states))
	for i, r := range resp {
		s := states[i]
		reward := 0.0
		if r.Success {
			reward = 1.0
		}
		s.Value = reward

		actions := make([]*types.Action, len(r.Actions))
		for j, ra := range r.Actions {
			next := types.NewState(s.Extend(ra.State), s.Goals, 0.0)
			actions[j] = types.NewAction(s, ra.Action, next, 0.0)
		}
		out[i] = types.StepResult{Reward: reward, Actions: actions}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	bs, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewBuffer(bs))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
