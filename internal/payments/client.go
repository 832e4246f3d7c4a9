package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/config"
)

// Client talks to the payment-routing provider over its JSON HTTP API.
// Every call is bounded by the configured timeout.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.PaymentsConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: cfg.Timeout()},
		logger:    logger,
	}
}

var _ Provider = (*Client)(nil)

type errorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: "NETWORK_ERROR", Description: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil || envelope.Error.Description == "" {
			return &Error{
				Code:        "UNEXPECTED_RESPONSE",
				Description: fmt.Sprintf("provider returned status %d", resp.StatusCode),
				HTTPStatus:  resp.StatusCode,
			}
		}
		return &Error{
			Code:        envelope.Error.Code,
			Description: envelope.Error.Description,
			HTTPStatus:  resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateSubAccount provisions a routed sub-account.
func (c *Client) CreateSubAccount(ctx context.Context, req SubAccountRequest) (*SubAccount, error) {
	payload := map[string]any{
		"type":         "route",
		"email":        req.Email,
		"phone":        req.Phone,
		"tnc_accepted": true,
		"profile": map[string]any{
			"name":                req.BusinessName,
			"legal_business_name": req.LegalBusinessName,
			"business_type":       req.BusinessType,
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/accounts", payload, &out); err != nil {
		return nil, err
	}
	c.logger.Info("created sub-account", zap.String("account_id", out.ID))
	return &SubAccount{ID: out.ID}, nil
}

// CreateStakeholder registers a beneficial owner against the sub-account.
func (c *Client) CreateStakeholder(ctx context.Context, accountID string, req StakeholderRequest) (*Stakeholder, error) {
	payload := map[string]any{
		"name":  req.Name,
		"email": req.Email,
		"kyc": map[string]any{
			"pan": req.TaxID,
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/v2/accounts/%s/stakeholders", accountID)
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return &Stakeholder{ID: out.ID}, nil
}

// RequestProductActivation asks for activation review of the routing product.
func (c *Client) RequestProductActivation(ctx context.Context, accountID string) (*ProductActivation, error) {
	payload := map[string]any{
		"product_name": "route",
		"tnc_accepted": true,
	}

	var out struct {
		ID               string `json:"id"`
		ActivationStatus string `json:"activation_status"`
	}
	path := fmt.Sprintf("/v2/accounts/%s/products", accountID)
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return &ProductActivation{ID: out.ID, Status: out.ActivationStatus}, nil
}

// SubmitSettlementDetails supplies the payout bank account.
func (c *Client) SubmitSettlementDetails(ctx context.Context, accountID string, details SettlementDetails) error {
	payload := map[string]any{
		"settlements": map[string]any{
			"beneficiary_name": details.BeneficiaryName,
			"account_number":   details.AccountNumber,
			"ifsc_code":        details.RoutingCode,
		},
	}

	path := fmt.Sprintf("/v2/accounts/%s/products/route", accountID)
	return c.do(ctx, http.MethodPatch, path, payload, nil)
}

// CreatePaymentOrder opens a payment order with a route transfer.
func (c *Client) CreatePaymentOrder(ctx context.Context, req PaymentOrderRequest) (*PaymentOrder, error) {
	payload := map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"transfers": []map[string]any{
			{
				"account":  req.Transfer.AccountID,
				"amount":   req.Transfer.Amount,
				"currency": req.Currency,
			},
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/orders", payload, &out); err != nil {
		return nil, err
	}
	return &PaymentOrder{ID: out.ID}, nil
}
