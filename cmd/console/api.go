package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/worldmap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// WorldSummary is the part of GET /v1/world the console shows.
type WorldSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// remoteGame plays a game hosted by the API.
type remoteGame struct {
	client  *http.Client
	baseURL string
	id      uuid.UUID
}

var _ Game = (*remoteGame)(nil)

func newRemoteGame(client *http.Client, baseURL string) *remoteGame {
	return &remoteGame{client: client, baseURL: baseURL}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends a request and decodes a JSON response with the wanted status
// into out.
func (g *remoteGame) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (g *remoteGame) World(ctx context.Context) (WorldSummary, error) {
	var w WorldSummary
	err := g.do(ctx, http.MethodGet, "/v1/world", nil, http.StatusOK, &w)
	return w, err
}

func (g *remoteGame) Start(ctx context.Context) (state.View, error) {
	var v state.View
	if err := g.do(ctx, http.MethodPost, "/v1/games", nil, http.StatusCreated, &v); err != nil {
		return v, fmt.Errorf("failed to create game: %w", err)
	}
	g.id = v.GameID
	return v, nil
}

func (g *remoteGame) Send(ctx context.Context, line string) (state.View, error) {
	var v state.View
	body := map[string]string{"command": line}
	err := g.do(ctx, http.MethodPost, fmt.Sprintf("/v1/games/%s/commands", g.id), body, http.StatusOK, &v)
	return v, err
}

func (g *remoteGame) Map(ctx context.Context, mapID string) (worldmap.Snapshot, error) {
	var snap worldmap.Snapshot
	err := g.do(ctx, http.MethodGet, fmt.Sprintf("/v1/games/%s/maps/%s", g.id, mapID), nil, http.StatusOK, &snap)
	return snap, err
}
