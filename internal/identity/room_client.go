package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/pkg/log"
	"github.com/weiawesome/wes-io-live/livechat/pkg/response"
)

var ErrRoomNotFound = errors.New("room not found")

// room mirrors the room service response; the owner is the streamer.
type room struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
	Title         string `json:"title"`
	Status        string `json:"status"`
}

// RoomClient wraps the Room Service HTTP API.
type RoomClient struct {
	baseURL    string
	roomID     string
	httpClient *http.Client
}

// NewRoomClient creates a client resolving the streamer of roomID.
func NewRoomClient(baseURL, roomID string, timeout time.Duration, logger zerolog.Logger) *RoomClient {
	return &RoomClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		roomID:  roomID,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: log.Transport(nil, logger),
		},
	}
}

// RoomID returns the room this client resolves.
func (c *RoomClient) RoomID() string {
	return c.roomID
}

// Streamer fetches the room and returns its owner.
func (c *RoomClient) Streamer(ctx context.Context) (domain.Streamer, error) {
	if c.roomID == "" {
		return domain.Streamer{}, fmt.Errorf("room id is not configured")
	}

	u := fmt.Sprintf("%s/api/v1/rooms/%s", c.baseURL, url.PathEscape(c.roomID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Streamer{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Streamer{}, fmt.Errorf("failed to fetch room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Streamer{}, ErrRoomNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Streamer{}, fmt.Errorf("room service returned status: %d", resp.StatusCode)
	}

	var r room
	if err := response.Decode(resp.Body, &r); err != nil {
		return domain.Streamer{}, err
	}
	if r.OwnerID == "" {
		return domain.Streamer{}, fmt.Errorf("room %s has no owner", c.roomID)
	}

	return domain.Streamer{ID: domain.ID(r.OwnerID), Name: r.OwnerUsername}, nil
}
