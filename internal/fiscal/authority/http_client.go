// Package authority implements the tax-authority web service client.
package authority

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tecnomade/clouget-pos/internal/config"
	"github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

type httpClient struct {
	receptionURL     string
	authorizationURL string
	log              *zap.Logger
	client           *http.Client
}

func New(p Params) domain.AuthorityClient {
	return &httpClient{
		receptionURL:     p.Cfg.AuthorityReceptionURL,
		authorizationURL: p.Cfg.AuthorityAuthorizationURL,
		log:              p.Log.Named("fiscal.authority"),
		client:           &http.Client{Timeout: p.Cfg.AuthorityTimeout},
	}
}

type submitRequest struct {
	Environment string `json:"environment"`
	AccessKey   string `json:"access_key"`
	Payload     string `json:"payload"`
}

type submitResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

func (c *httpClient) Submit(ctx context.Context, env domain.Environment, accessKey string, signedPayload []byte) (domain.ReceptionResult, error) {
	body, err := json.Marshal(submitRequest{
		Environment: string(env),
		AccessKey:   accessKey,
		Payload:     base64.StdEncoding.EncodeToString(signedPayload),
	})
	if err != nil {
		return domain.ReceptionResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.receptionURL, bytes.NewReader(body))
	if err != nil {
		return domain.ReceptionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ReceptionResult{}, fmt.Errorf("submit document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.ReceptionResult{}, fmt.Errorf("submit document: status %d", resp.StatusCode)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.ReceptionResult{}, fmt.Errorf("decode reception response: %w", err)
	}
	return domain.ReceptionResult{Accepted: out.Accepted, Message: out.Message}, nil
}

type authorizationResponse struct {
	Status  string `json:"status"`
	Number  string `json:"number"`
	Message string `json:"message"`
}

func (c *httpClient) QueryAuthorization(ctx context.Context, env domain.Environment, accessKey string) (domain.AuthorizationVerdict, error) {
	url := fmt.Sprintf("%s?environment=%s&access_key=%s", c.authorizationURL, env, accessKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.AuthorizationVerdict{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.AuthorizationVerdict{}, fmt.Errorf("query authorization: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.AuthorizationVerdict{}, fmt.Errorf("query authorization: status %d", resp.StatusCode)
	}

	var out authorizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.AuthorizationVerdict{}, fmt.Errorf("decode authorization response: %w", err)
	}
	switch out.Status {
	case "AUTHORIZED":
		return domain.AuthorizationVerdict{Authorized: true, Number: out.Number, Message: out.Message}, nil
	case "REJECTED":
		return domain.AuthorizationVerdict{Rejected: true, Message: out.Message}, nil
	default:
		return domain.AuthorizationVerdict{Message: out.Message}, nil
	}
}
