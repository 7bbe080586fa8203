package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/edushare-client/internal/models"
	"github.com/noah-isme/edushare-client/internal/transport"
)

// Probe validates reachability of the resolved endpoint independently of
// credentials.
type Probe struct {
	api    *transport.Client
	logger *zap.Logger
}

// NewProbe constructs a connectivity probe.
func NewProbe(api *transport.Client, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{api: api, logger: logger}
}

// Test issues an unauthenticated GET /test. A transport failure surfaces as
// NETWORK_ERROR; an application-level non-2xx carries the server's message.
func (p *Probe) Test(ctx context.Context) (*models.ConnectivityReport, error) {
	var report models.ConnectivityReport
	if err := p.api.GetOpen(ctx, "/test", &report); err != nil {
		p.logger.Warn("connectivity test failed", zap.Error(err))
		return nil, err
	}

	p.logger.Info("connectivity test ok",
		zap.String("origin", report.Origin),
		zap.String("timestamp", report.Timestamp),
	)
	return &report, nil
}
