package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.PaymentsConfig{
		BaseURL:        server.URL,
		KeyID:          "key",
		KeySecret:      "secret",
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestCreateSubAccountSendsBasicAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/accounts", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "route", payload["type"])

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "acc_test"})
	})

	account, err := client.CreateSubAccount(context.Background(), SubAccountRequest{
		Email:        "owner@example.com",
		Phone:        "9876543210",
		BusinessName: "Corner Cafe",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc_test", account.ID)
}

func TestClientDecodesProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "Product already requested",
			},
		})
	})

	_, err := client.RequestProductActivation(context.Background(), "acc_test")
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "BAD_REQUEST_ERROR", pe.Code)
	assert.Equal(t, http.StatusBadRequest, pe.HTTPStatus)
	assert.True(t, IsAlreadyDone(err))
}

func TestClientHandlesOpaqueFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.SubmitSettlementDetails(context.Background(), "acc_test", SettlementDetails{
		BeneficiaryName: "Asha",
		AccountNumber:   "1234567890",
		RoutingCode:     "HDFC0001234",
	})
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "UNEXPECTED_RESPONSE", pe.Code)
	assert.False(t, IsAlreadyDone(err))
}

func TestCreatePaymentOrderCarriesTransfer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)

		var payload struct {
			Amount    int64            `json:"amount"`
			Currency  string           `json:"currency"`
			Transfers []map[string]any `json:"transfers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, int64(500), payload.Amount)
		require.Len(t, payload.Transfers, 1)
		assert.Equal(t, "acc_test", payload.Transfers[0]["account"])
		assert.Equal(t, float64(487), payload.Transfers[0]["amount"])

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "order_test"})
	})

	order, err := client.CreatePaymentOrder(context.Background(), PaymentOrderRequest{
		Amount:   500,
		Currency: "INR",
		Receipt:  "receipt_order_1",
		Transfer: Transfer{AccountID: "acc_test", Amount: 487},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_test", order.ID)
}
