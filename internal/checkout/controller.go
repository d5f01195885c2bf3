// Package checkout implements the client-side purchase flow for mobile-money
// payments: initiate against the gateway, poll for confirmation under a
// budget, then hand off to fulfillment.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pmsstreaming/storefront/internal/payment"
)

// State is the polling session's lifecycle state.
type State string

// Session states. Confirmed, Failed, TimedOut, and Error are exit states of
// the waiting loop; Done means fulfillment was dispatched successfully.
const (
	StateIdle       State = "IDLE"
	StateInitiating State = "INITIATING"
	StateWaiting    State = "WAITING"
	StateConfirmed  State = "CONFIRMED"
	StateFailed     State = "FAILED"
	StateTimedOut   State = "TIMED_OUT"
	StateError      State = "ERROR"
	StateDone       State = "DONE"
)

// Defaults for the waiting loop. The countdown ticks once a second from 30;
// the status poll fires every fourth tick. Both are driven by one repeating
// task so every exit path cancels them together.
const (
	DefaultTick       = 1 * time.Second
	DefaultPollEvery  = 4 * time.Second
	DefaultPollBudget = 30 * time.Second
)

// MinMobileNumberLength is the minimum accepted phone number length, checked
// before any network call.
const MinMobileNumberLength = 10

// Fulfillment carries what the commerce layer needs to record the order once
// payment is confirmed.
type Fulfillment struct {
	Method    string
	MovieID   string
	Amount    float64
	Reference string
}

// FulfillResult is the commerce layer's answer to a fulfillment request.
type FulfillResult struct {
	Success       bool
	TransactionID string
}

// FulfillFunc records the order for a confirmed payment. It is called exactly
// once per successful polling session.
type FulfillFunc func(ctx context.Context, f Fulfillment) (*FulfillResult, error)

// Config configures a Controller.
type Config struct {
	// BaseURL is the gateway's base URL, without a trailing slash.
	BaseURL string

	// HTTPClient is used for gateway calls. Defaults to a client with the
	// poll budget as its timeout.
	HTTPClient *http.Client

	// Fulfill is invoked on confirmation. Required.
	Fulfill FulfillFunc

	// Tick is the countdown granularity. PollEvery must be a positive
	// multiple of Tick. Zero values take the defaults; tests shrink them.
	Tick       time.Duration
	PollEvery  time.Duration
	PollBudget time.Duration

	// OnCountdown, if set, receives the visible seconds-remaining value on
	// every tick.
	OnCountdown func(secondsLeft int)
}

// Result summarizes a finished purchase session.
type Result struct {
	State         State
	Reference     string
	TransactionID string
	Message       string
}

// Controller drives mobile-money purchase sessions against the gateway.
type Controller struct {
	cfg Config

	mu    sync.Mutex
	state State
}

// NewController validates the config and creates a controller in the idle
// state.
func NewController(cfg Config) (*Controller, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("checkout: base URL is required")
	}
	if cfg.Fulfill == nil {
		return nil, fmt.Errorf("checkout: fulfill callback is required")
	}
	if cfg.Tick == 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.PollEvery == 0 {
		cfg.PollEvery = DefaultPollEvery
	}
	if cfg.PollBudget == 0 {
		cfg.PollBudget = DefaultPollBudget
	}
	if cfg.PollEvery < cfg.Tick || cfg.PollEvery%cfg.Tick != 0 {
		return nil, fmt.Errorf("checkout: poll interval must be a multiple of the tick")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.PollBudget}
	}
	return &Controller{cfg: cfg, state: StateIdle}, nil
}

// State returns the controller's current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// initiateRequest is the gateway initiation body.
type initiateRequest struct {
	MobileNumber string  `json:"mobileNumber"`
	Amount       float64 `json:"amount"`
}

// initiateResponse is the gateway initiation answer.
type initiateResponse struct {
	Reference        string         `json:"reference"`
	TransactionID    string         `json:"transactionId"`
	ProviderResponse map[string]any `json:"providerResponse"`
}

// Purchase runs one full purchase session: validate input, initiate the
// payment, wait for confirmation, and dispatch fulfillment. It blocks until
// the session reaches a final state and always returns a non-nil Result; the
// error is non-nil for every outcome other than a fulfilled purchase.
//
// Giving up (timeout) is purely client-side: no cancellation reaches the
// gateway, which keeps recording webhooks for the reference.
func (c *Controller) Purchase(ctx context.Context, mobileNumber, movieID string, amount float64) (*Result, error) {
	// Input validation happens before any network call.
	if len(strings.TrimSpace(mobileNumber)) < MinMobileNumberLength {
		c.setState(StateError)
		return &Result{State: StateError, Message: "please enter a valid phone number"},
			fmt.Errorf("%w: mobile number too short", payment.ErrValidation)
	}

	c.setState(StateInitiating)
	initResp, err := c.initiate(ctx, mobileNumber, amount)
	if err != nil {
		c.setState(StateError)
		return &Result{State: StateError, Message: err.Error()}, err
	}

	// The provider acknowledges acceptance with result code "0"; anything
	// else means the push never reached the phone.
	if code, ok := initResp.ProviderResponse[payment.FieldCode].(string); ok && code != "0" {
		desc, _ := initResp.ProviderResponse[payment.FieldDescription].(string)
		c.setState(StateError)
		err := fmt.Errorf("%w: %s", payment.ErrProviderLogic, desc)
		return &Result{State: StateError, Reference: initResp.Reference, Message: err.Error()}, err
	}

	c.setState(StateWaiting)
	return c.wait(ctx, initResp, mobileNumber, movieID, amount)
}

// wait runs the single repeating task that drives both the visible countdown
// and the poll/budget accounting. Every exit path stops the ticker before
// returning, so no timer keeps firing after the session is decided.
func (c *Controller) wait(ctx context.Context, initResp *initiateResponse, mobileNumber, movieID string, amount float64) (*Result, error) {
	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()

	secondsLeft := int(c.cfg.PollBudget / time.Second)
	ticksPerPoll := int(c.cfg.PollEvery / c.cfg.Tick)
	var elapsed time.Duration
	var ticks int

	for {
		select {
		case <-ctx.Done():
			c.setState(StateError)
			return &Result{State: StateError, Reference: initResp.Reference, Message: ctx.Err().Error()}, ctx.Err()

		case <-ticker.C:
			ticks++
			elapsed += c.cfg.Tick
			if secondsLeft > 0 {
				secondsLeft--
				if c.cfg.OnCountdown != nil {
					c.cfg.OnCountdown(secondsLeft)
				}
			}

			if ticks%ticksPerPoll != 0 {
				continue
			}

			record, err := c.fetchStatus(ctx, initResp.Reference)
			if err != nil {
				// A transport blip aborts the session; it is not retried.
				c.setState(StateError)
				return &Result{State: StateError, Reference: initResp.Reference, Message: err.Error()}, err
			}

			switch record.Status() {
			case payment.StatusConfirmed:
				c.setState(StateConfirmed)
				return c.fulfill(ctx, initResp, record, mobileNumber, movieID, amount)

			case payment.StatusFailed, payment.StatusCancelled:
				c.setState(StateFailed)
				msg := record.Description()
				if msg == "" {
					msg = "payment was cancelled"
				}
				err := fmt.Errorf("payment failed: %s", msg)
				return &Result{State: StateFailed, Reference: initResp.Reference, Message: msg}, err
			}

			// The budget is tracked by accumulating elapsed intervals,
			// independently of the display countdown.
			if elapsed >= c.cfg.PollBudget {
				c.setState(StateTimedOut)
				return &Result{
					State:     StateTimedOut,
					Reference: initResp.Reference,
					Message:   "no confirmation received within the waiting period",
				}, payment.ErrClientTimeout
			}
		}
	}
}

// fulfill dispatches the externally supplied fulfillment callback for a
// confirmed payment. A fulfillment failure after confirmation is reported as
// a reconciliation problem, never as a payment failure: the charge went
// through and retrying the payment would charge the user twice.
func (c *Controller) fulfill(ctx context.Context, initResp *initiateResponse, record payment.Record, mobileNumber, movieID string, amount float64) (*Result, error) {
	result, err := c.cfg.Fulfill(ctx, Fulfillment{
		Method:    "mobile",
		MovieID:   movieID,
		Amount:    amount,
		Reference: initResp.Reference,
	})
	if err != nil || result == nil || !result.Success {
		c.setState(StateError)
		return &Result{
			State:         StateError,
			Reference:     initResp.Reference,
			TransactionID: record.TransactionID(),
			Message:       payment.ErrReconciliation.Error(),
		}, payment.ErrReconciliation
	}

	c.setState(StateDone)
	transactionID := record.TransactionID()
	if transactionID == "" {
		transactionID = initResp.TransactionID
	}
	return &Result{
		State:         StateDone,
		Reference:     initResp.Reference,
		TransactionID: transactionID,
		Message:       "payment confirmed",
	}, nil
}

// initiate posts the initiation request to the gateway.
func (c *Controller) initiate(ctx context.Context, mobileNumber string, amount float64) (*initiateResponse, error) {
	body, err := json.Marshal(initiateRequest{MobileNumber: mobileNumber, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to encode initiation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/payments/initiate", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to build initiation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderTransport, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", payment.ErrProviderLogic, msg)
	}

	var initResp initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, fmt.Errorf("failed to decode initiation response: %w", err)
	}
	if initResp.Reference == "" {
		return nil, fmt.Errorf("%w: initiation response missing reference", payment.ErrProviderLogic)
	}
	return &initResp, nil
}

// fetchStatus queries the gateway for the latest status record.
func (c *Controller) fetchStatus(ctx context.Context, reference string) (payment.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/payments/status/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderTransport, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var record payment.Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return record, nil
}
