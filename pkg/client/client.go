package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/naveenspark/arena/pkg/domain"
)

// JoinRoomRequest is the payload for joining a room over REST.
type JoinRoomRequest struct {
	UserID   int64  `json:"userId"`
	Password string `json:"password,omitempty"`
}

// StartCombatResponse is returned by POST /room-lobby/{id}/start.
type StartCombatResponse struct {
	Room         *domain.RESTRoom     `json:"room,omitempty"`
	CombatResult *domain.CombatResult `json:"combatResult,omitempty"`
}

// Client is the game backend REST client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMe returns the authenticated player.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// --- Room lobby ---

func roomPath(roomID int64) string {
	return "/room-lobby/" + strconv.FormatInt(roomID, 10)
}

// GetRoom fetches a room snapshot by id.
func (c *Client) GetRoom(ctx context.Context, roomID int64) (*domain.RoomSnapshot, error) {
	var room domain.RESTRoom
	if err := c.get(ctx, roomPath(roomID), &room); err != nil {
		return nil, fmt.Errorf("client.GetRoom: %w", err)
	}
	snap := domain.NormalizeREST(room)
	return &snap, nil
}

// GetRoomByHost fetches the room hosted by userID.
func (c *Client) GetRoomByHost(ctx context.Context, userID int64) (*domain.RoomSnapshot, error) {
	var room domain.RESTRoom
	if err := c.get(ctx, "/room-lobby/host/"+strconv.FormatInt(userID, 10), &room); err != nil {
		return nil, fmt.Errorf("client.GetRoomByHost: %w", err)
	}
	snap := domain.NormalizeREST(room)
	return &snap, nil
}

// JoinRoom joins a room, optionally with a password for private rooms.
func (c *Client) JoinRoom(ctx context.Context, roomID int64, req JoinRoomRequest) (*domain.RoomSnapshot, error) {
	var room domain.RESTRoom
	if err := c.post(ctx, roomPath(roomID)+"/join", req, &room); err != nil {
		return nil, fmt.Errorf("client.JoinRoom: %w", err)
	}
	snap := domain.NormalizeREST(room)
	return &snap, nil
}

// LeaveRoom removes userID from the room.
func (c *Client) LeaveRoom(ctx context.Context, roomID, userID int64) error {
	if err := c.post(ctx, roomPath(roomID)+"/leave", map[string]int64{"userId": userID}, nil); err != nil {
		return fmt.Errorf("client.LeaveRoom: %w", err)
	}
	return nil
}

// StartCombat starts combat as the host and returns the finished report.
func (c *Client) StartCombat(ctx context.Context, roomID, hostID int64) (*StartCombatResponse, error) {
	var resp StartCombatResponse
	if err := c.post(ctx, roomPath(roomID)+"/start", map[string]int64{"hostId": hostID}, &resp); err != nil {
		return nil, fmt.Errorf("client.StartCombat: %w", err)
	}
	return &resp, nil
}

// ResetRoom returns every member to a startable baseline after a combat.
func (c *Client) ResetRoom(ctx context.Context, roomID, hostID int64) error {
	if err := c.post(ctx, roomPath(roomID)+"/reset", map[string]int64{"hostId": hostID}, nil); err != nil {
		return fmt.Errorf("client.ResetRoom: %w", err)
	}
	return nil
}

// UpdateDungeon changes the room's dungeon.
func (c *Client) UpdateDungeon(ctx context.Context, roomID, hostID, dungeonID int64) error {
	body := map[string]int64{"hostId": hostID, "dungeonId": dungeonID}
	if err := c.doRequest(ctx, http.MethodPatch, roomPath(roomID)+"/dungeon", body, nil); err != nil {
		return fmt.Errorf("client.UpdateDungeon: %w", err)
	}
	return nil
}

// KickPlayer removes targetID from the room.
func (c *Client) KickPlayer(ctx context.Context, roomID, hostID, targetID int64) error {
	body := map[string]int64{"hostId": hostID, "playerId": targetID}
	if err := c.post(ctx, roomPath(roomID)+"/kick", body, nil); err != nil {
		return fmt.Errorf("client.KickPlayer: %w", err)
	}
	return nil
}

// --- Dungeons ---

// ListDungeons returns every dungeon a room can run.
func (c *Client) ListDungeons(ctx context.Context) ([]domain.Dungeon, error) {
	var dungeons []domain.Dungeon
	if err := c.get(ctx, "/dungeons", &dungeons); err != nil {
		return nil, fmt.Errorf("client.ListDungeons: %w", err)
	}
	return dungeons, nil
}

// --- Quests ---

// ReportCombatProgress feeds a finished combat into quest tracking.
func (c *Client) ReportCombatProgress(ctx context.Context, p domain.CombatProgress) error {
	if err := c.post(ctx, "/quests/combat-progress", p, nil); err != nil {
		return fmt.Errorf("client.ReportCombatProgress: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			msg := apiErr.Error
			if apiErr.Message != "" {
				msg = apiErr.Message
			}
			if msg != "" || apiErr.Code != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: msg, Code: apiErr.Code}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
