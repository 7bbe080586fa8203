package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/edushare-client/internal/models"
	"github.com/noah-isme/edushare-client/internal/transport"
)

// UserClient covers the user endpoints of the portal.
type UserClient struct {
	api    *transport.Client
	logger *zap.Logger
}

// NewUserClient constructs a UserClient.
func NewUserClient(api *transport.Client, logger *zap.Logger) *UserClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserClient{api: api, logger: logger}
}

// Profile fetches the server-side view of the authenticated user. Unlike the
// snapshot held by the session store, this reflects current server state.
func (c *UserClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.api.Get(ctx, "/users/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type userListResponse struct {
	Data []models.UserProfile `json:"data"`
}

// List fetches all registered users. Admin-only; other roles receive
// FORBIDDEN from the server.
func (c *UserClient) List(ctx context.Context) ([]models.UserProfile, error) {
	var resp userListResponse
	if err := c.api.Get(ctx, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
