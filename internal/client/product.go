// Package client holds the outbound HTTP client the order service uses to
// talk to the product service. Callers depend on the ProductClient
// interface so the collaborator can be test-doubled.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkefor/microservices-cicd/internal/model"
)

// DefaultTimeout bounds each outbound product service call.
const DefaultTimeout = 5 * time.Second

// ErrProductNotFound is returned when the product service reports 404 for
// the requested product id.
var ErrProductNotFound = errors.New("product not found")

// UnreachableError wraps any network-level or unexpected-status failure when
// calling the product service. The underlying cause is always attached,
// never swallowed.
type UnreachableError struct {
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("product service unreachable: %v", e.Cause)
}

func (e *UnreachableError) Unwrap() error { return e.Cause }

// Availability is the product service's answer to an availability check.
type Availability struct {
	ProductID         string `json:"productId"`
	Available         bool   `json:"available"`
	RequestedQuantity int    `json:"requestedQuantity"`
	CurrentStock      int    `json:"currentStock"`
}

// ProductClient is the order service's view of the product service.
type ProductClient interface {
	CheckAvailability(ctx context.Context, productID string, quantity int) (Availability, error)
	GetProduct(ctx context.Context, productID string) (model.Product, error)
}

// HTTPProductClient implements ProductClient over plain HTTP/JSON.
type HTTPProductClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ ProductClient = (*HTTPProductClient)(nil)

// NewHTTPProductClient creates a client for the product service at baseURL.
// If httpClient is nil a client with DefaultTimeout is used.
func NewHTTPProductClient(baseURL string, httpClient *http.Client) *HTTPProductClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPProductClient{baseURL: baseURL, httpClient: httpClient}
}

// CheckAvailability asks whether quantity units of the product can be
// fulfilled right now.
func (pc *HTTPProductClient) CheckAvailability(ctx context.Context, productID string, quantity int) (Availability, error) {
	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return Availability{}, err
	}
	url := fmt.Sprintf("%s/products/%s/check-availability", pc.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Availability{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return Availability{}, &UnreachableError{Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Availability{}, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return Availability{}, &UnreachableError{Cause: fmt.Errorf("unexpected status %d from availability check", resp.StatusCode)}
	}

	var av Availability
	if err := json.NewDecoder(resp.Body).Decode(&av); err != nil {
		return Availability{}, &UnreachableError{Cause: fmt.Errorf("decode availability: %w", err)}
	}
	return av, nil
}

// GetProduct fetches the product detail used to resolve price and name.
func (pc *HTTPProductClient) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	url := fmt.Sprintf("%s/products/%s", pc.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Product{}, err
	}

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return model.Product{}, &UnreachableError{Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.Product{}, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return model.Product{}, &UnreachableError{Cause: fmt.Errorf("unexpected status %d from product lookup", resp.StatusCode)}
	}

	var p model.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return model.Product{}, &UnreachableError{Cause: fmt.Errorf("decode product: %w", err)}
	}
	return p, nil
}
