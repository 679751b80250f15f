package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

// CreateWorld starts a new world via POST /v1/worlds.
func CreateWorld(ctx context.Context, client *http.Client, baseURL, name string) (*game.State, error) {
	var st game.State
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/worlds", map[string]string{"name": name}, http.StatusCreated, &st); err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}
	return &st, nil
}

// GetWorld reads the current state of a world.
func GetWorld(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (*game.State, error) {
	var st game.State
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/worlds/"+id.String(), nil, http.StatusOK, &st); err != nil {
		return nil, fmt.Errorf("failed to get world: %w", err)
	}
	return &st, nil
}

// PlayTurn posts one input and returns once the turn has finished.
func PlayTurn(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, message string) (*chat.ChatResponse, error) {
	var resp chat.ChatResponse
	url := baseURL + "/v1/worlds/" + id.String() + "/turn"
	if err := doJSON(ctx, client, http.MethodPost, url, chat.ChatRequest{Message: message}, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("failed to play turn: %w", err)
	}
	return &resp, nil
}

// DeleteWorld removes a world. A world that is already gone is not an error.
func DeleteWorld(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, baseURL+"/v1/worlds/"+id.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete world: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func doJSON(ctx context.Context, client *http.Client, method, url string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d (expected %d): %s", method, url, resp.StatusCode, wantStatus, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
