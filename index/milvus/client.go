package milvus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/veridoc/index"
)

// Milvus v2 REST endpoints.
const (
	hasCollectionPath    = "/v2/vectordb/collections/has"
	createCollectionPath = "/v2/vectordb/collections/create"
	insertPath           = "/v2/vectordb/entities/insert"
	advancedSearchPath   = "/v2/vectordb/entities/advanced_search"
	hybridSearchPath     = "/v2/vectordb/entities/hybrid_search"
	queryPath            = "/v2/vectordb/entities/query"
)

// errEndpointUnsupported signals that the server does not serve a route,
// so the caller should try the legacy one.
var errEndpointUnsupported = errors.New("endpoint unsupported")

// envelope is the response wrapper used by every v2 REST endpoint.
// A non-zero code carries an API-level failure even on HTTP 200.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// restClient is a minimal Milvus v2 REST client. Every operation is a
// JSON POST returning an envelope.
type restClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func newRESTClient(baseURL string, httpClient *http.Client) *restClient {
	return &restClient{
		baseURL: baseURL,
		http:    httpClient,
		logger:  slog.Default().With("component", "milvus-client"),
	}
}

// post sends a JSON request and decodes the envelope's data into out when
// out is non-nil. Routes the server does not know map to
// errEndpointUnsupported so callers can fall back.
func (c *restClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("milvus request", "path", path, "bytes", len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", index.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return fmt.Errorf("%w: %s", errEndpointUnsupported, path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("milvus returned HTTP %d for %s", resp.StatusCode, path)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Code != 0 {
		return fmt.Errorf("milvus error %d: %s", env.Code, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
