// Package client talks to the remote entitlement server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tecnomade/clouget-pos/internal/config"
	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

type httpClient struct {
	url    string
	apiKey string
	log    *zap.Logger
	client *http.Client
}

func New(p Params) subscriptiondomain.EntitlementClient {
	return &httpClient{
		url:    p.Cfg.EntitlementURL,
		apiKey: p.Cfg.EntitlementAPIKey,
		log:    p.Log.Named("subscription.client"),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *httpClient) Fetch(ctx context.Context) (subscriptiondomain.Entitlement, error) {
	if c.url == "" {
		return subscriptiondomain.Entitlement{}, fmt.Errorf("entitlement url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return subscriptiondomain.Entitlement{}, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return subscriptiondomain.Entitlement{}, fmt.Errorf("fetch entitlement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return subscriptiondomain.Entitlement{}, fmt.Errorf("fetch entitlement: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return subscriptiondomain.Entitlement{}, fmt.Errorf("read entitlement: %w", err)
	}

	var entitlement subscriptiondomain.Entitlement
	if err := json.Unmarshal(body, &entitlement); err != nil {
		return subscriptiondomain.Entitlement{}, fmt.Errorf("decode entitlement: %w", err)
	}
	entitlement.Raw = body
	return entitlement, nil
}
