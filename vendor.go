package fivesim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// VendorAPI exposes the vendor operations under /v1/vendor/.
type VendorAPI struct {
	api *api
}

// GetWallets returns the vendor balance per payment system.
func (v *VendorAPI) GetWallets(ctx context.Context) (*VendorWallet, error) {
	data, err := v.api.get(ctx, true, nil, "wallets")
	if err != nil {
		return nil, err
	}

	return decodeVendorWallet(data)
}

// GetOrdersHistory returns the vendor order history for the given
// category. The wire contract matches the user variant.
func (v *VendorAPI) GetOrdersHistory(ctx context.Context, category Category, opts *HistoryOptions) (*OrdersHistory, error) {
	if category == "" {
		return nil, newArgumentError("category", "category is required")
	}

	data, err := v.api.get(ctx, true, historyQuery(category, opts), "orders")
	if err != nil {
		return nil, err
	}

	return decodeOrdersHistory(data)
}

// GetPaymentsHistory returns the vendor payment history.
func (v *VendorAPI) GetPaymentsHistory(ctx context.Context, opts *HistoryOptions) (*PaymentsHistory, error) {
	data, err := v.api.get(ctx, true, historyQuery("", opts), "payments")
	if err != nil {
		return nil, err
	}

	return decodePaymentsHistory(data)
}

// payoutRequest is the withdraw request body. The amount travels as a
// string.
type payoutRequest struct {
	Receiver string              `json:"receiver"`
	Method   VendorPaymentMethod `json:"method"`
	Amount   string              `json:"amount"`
	Fee      VendorPaymentSystem `json:"fee"`
}

// CreatePayout withdraws money from the vendor account. Receiver is the
// payout destination, method the output method, and fee the payment
// system executing the payout.
func (v *VendorAPI) CreatePayout(ctx context.Context, receiver string, method VendorPaymentMethod, amount int, fee VendorPaymentSystem) error {
	if receiver == "" {
		return newArgumentError("receiver", "receiver is required")
	}
	if amount <= 0 {
		return newArgumentError("amount", "amount must be positive")
	}

	body, err := json.Marshal(payoutRequest{
		Receiver: receiver,
		Method:   method,
		Amount:   strconv.Itoa(amount),
		Fee:      fee,
	})
	if err != nil {
		return fmt.Errorf("encoding payout request: %w", err)
	}

	_, err = v.api.post(ctx, true, bytes.NewReader(body), "withdraw")

	return err
}
