// Package client talks to a game served by communication/server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"conquest/communication"
	"conquest/game"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) State(ctx context.Context) (game.GameState, error) {
	var resp communication.StateResponse
	err := c.do(ctx, http.MethodGet, "/state", &resp)
	return resp.State, err
}

func (c *Client) Board(ctx context.Context) ([]communication.TerritoryView, error) {
	var resp communication.BoardResponse
	err := c.do(ctx, http.MethodGet, "/board", &resp)
	return resp.Territories, err
}

// Select clicks the territory with the given name or id.
func (c *Client) Select(ctx context.Context, name string) (game.GameState, error) {
	var resp communication.StateResponse
	err := c.do(ctx, http.MethodPost, "/select/"+url.PathEscape(name), &resp)
	return resp.State, err
}

// EndTurn ends the player's turn and returns once the AI has moved.
func (c *Client) EndTurn(ctx context.Context) (game.GameState, error) {
	var resp communication.StateResponse
	err := c.do(ctx, http.MethodPost, "/end-turn", &resp)
	return resp.State, err
}

// Subscribe streams server events until ctx is done or the connection
// drops. The channel is closed when the stream ends.
func (c *Client) Subscribe(ctx context.Context) (<-chan communication.Event, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	events := make(chan communication.Event, 64)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var event communication.Event
			if err := conn.ReadJSON(&event); err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("event stream ended")
				}
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e communication.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Code != "" {
			if sentinel := communication.ErrorForCode(e.Code); sentinel != nil {
				return fmt.Errorf("%w: %s", sentinel, e.Error)
			}
			return fmt.Errorf("server error %s: %s", e.Code, e.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}
