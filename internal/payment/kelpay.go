package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultInitiationTimeout bounds the synchronous initiation call to the
// mobile-money provider. Confirmation itself arrives later via webhook, so
// there is no reason to wait longer than this on the transport.
const DefaultInitiationTimeout = 15 * time.Second

// InitiationRequest carries everything the provider needs to push a payment
// prompt to the subscriber's phone.
type InitiationRequest struct {
	MerchantCode string  `json:"merchantcode"`
	MobileNumber string  `json:"mobilenumber"`
	Reference    string  `json:"reference"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Description  string  `json:"description"`
	CallbackURL  string  `json:"callbackurl"`
}

// InitiationResponse is the provider's synchronous answer to an initiation
// request. Raw retains the full response body so passthrough fields seed the
// status record unmodified.
type InitiationResponse struct {
	TransactionID string
	Raw           map[string]any
}

// MobileMoneyClient is the interface to the mobile-money provider's
// synchronous initiation endpoint, mockable in tests.
type MobileMoneyClient interface {
	Initiate(ctx context.Context, req *InitiationRequest) (*InitiationResponse, error)
}

// KelpayClient implements MobileMoneyClient against the Kelpay HTTP API.
type KelpayClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewKelpayClient creates a Kelpay client with the default transport timeout.
func NewKelpayClient(endpoint, token string) *KelpayClient {
	return &KelpayClient{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: DefaultInitiationTimeout,
		},
	}
}

// Initiate posts the payment request to the provider. The provider answers
// synchronously with a transaction ID and result fields; the actual payment
// outcome arrives later on the callback URL.
//
// A response without a transaction ID is a hard error: without it the attempt
// cannot be tracked, so no status record should be seeded.
func (c *KelpayClient) Initiate(ctx context.Context, req *InitiationRequest) (*InitiationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initiation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initiation request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderTransport, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrProviderTransport, resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode provider response: %v", ErrProviderTransport, err)
	}

	transactionID, _ := raw[FieldTransactionID].(string)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: response missing transaction id", ErrProviderLogic)
	}

	return &InitiationResponse{
		TransactionID: transactionID,
		Raw:           raw,
	}, nil
}
