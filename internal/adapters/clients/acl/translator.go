package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
)

// BaseAdapter holds what every remote adapter needs. Embed it.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter for serviceName.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the remote service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET request and returns the body of a successful
// response. The caller must close it. Failures are domain errors.
func (a *BaseAdapter) Get(ctx context.Context, path string, query url.Values, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path, query)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}
