package fivesim

import (
	"context"
	"net/url"
	"strconv"
)

// UserAPI exposes the authenticated account operations under /v1/user/.
type UserAPI struct {
	api *api
}

// GetProfile returns the account data of the authenticated user. With
// vendor set, the vendor variant of the profile is fetched instead; leave
// it false for a normal account.
func (u *UserAPI) GetProfile(ctx context.Context, vendor bool) (*ProfileInformation, error) {
	segment := "profile"
	if vendor {
		segment = "vendor"
	}

	data, err := u.api.get(ctx, true, nil, segment)
	if err != nil {
		return nil, err
	}

	return decodeProfile(data)
}

// GetOrdersHistory returns the order history for the given category.
func (u *UserAPI) GetOrdersHistory(ctx context.Context, category Category, opts *HistoryOptions) (*OrdersHistory, error) {
	if category == "" {
		return nil, newArgumentError("category", "category is required")
	}

	data, err := u.api.get(ctx, true, historyQuery(category, opts), "orders")
	if err != nil {
		return nil, err
	}

	return decodeOrdersHistory(data)
}

// GetPaymentsHistory returns the payment history of the account.
func (u *UserAPI) GetPaymentsHistory(ctx context.Context, opts *HistoryOptions) (*PaymentsHistory, error) {
	data, err := u.api.get(ctx, true, historyQuery("", opts), "payments")
	if err != nil {
		return nil, err
	}

	return decodePaymentsHistory(data)
}

// BuyOptions carries the optional activation-only purchase parameters.
// Supplying any of them with a hosting product is a caller error.
type BuyOptions struct {
	// ForwardingNumber forwards incoming calls to a russian number given
	// as exactly 11 digits without the plus sign.
	ForwardingNumber string

	// Reuse marks the number as reusable later via ReuseNumber.
	Reuse bool

	// Voice allows receiving a robot call on the number.
	Voice bool
}

// BuyNumber rents a number for the given product. Country and operator
// may be CountryAny and OperatorAny to let the service pick. Cross-field
// constraints are validated before any network call.
//
// The service occasionally answers an order endpoint with a bare
// activation message; such a response comes back as an order carrying
// only that message in SMS.
func (u *UserAPI) BuyNumber(ctx context.Context, country Country, operator Operator, product Product, opts *BuyOptions) (*Order, error) {
	if product == nil {
		return nil, newArgumentError("product", "product is required")
	}
	if country == "" {
		country = CountryAny
	}
	if operator == "" {
		operator = OperatorAny
	}

	query := url.Values{}
	category := product.ProductCategory()

	if opts != nil {
		if category != CategoryActivation && (opts.ForwardingNumber != "" || opts.Reuse || opts.Voice) {
			return nil, newArgumentError("options", "forwarding, reuse and voice require an activation product")
		}
		if opts.ForwardingNumber != "" {
			if !isElevenDigits(opts.ForwardingNumber) {
				return nil, newArgumentError("forwarding_number", "must be exactly 11 digits")
			}
			query.Set("forwarding", "true")
			query.Set("number", opts.ForwardingNumber)
		}
		if opts.Reuse {
			query.Set("reuse", "1")
		}
		if opts.Voice {
			query.Set("voice", "1")
		}
	}

	data, err := u.api.get(ctx, true, query,
		"buy", string(category), string(country), string(operator), product.String())
	if err != nil {
		return nil, err
	}

	return decodeOrderResult(data)
}

// ReuseNumber rents the same number again for a product previously bought
// with the reuse flag. The number is given with prefix, without the plus
// sign.
func (u *UserAPI) ReuseNumber(ctx context.Context, product Product, number string) error {
	if product == nil {
		return newArgumentError("product", "product is required")
	}
	if number == "" {
		return newArgumentError("number", "number is required")
	}

	_, err := u.api.get(ctx, true, nil, "reuse", product.String(), number)

	return err
}

// OrderAction applies check, finish, cancel or ban to an existing order
// and returns its refreshed state. Like BuyNumber, a response that is a
// bare activation message comes back as an order carrying only that
// message.
func (u *UserAPI) OrderAction(ctx context.Context, action OrderAction, orderID int64) (*Order, error) {
	if action == "" {
		return nil, newArgumentError("action", "action is required")
	}

	data, err := u.api.get(ctx, true, nil, string(action), strconv.FormatInt(orderID, 10))
	if err != nil {
		return nil, err
	}

	return decodeOrderResult(data)
}

// GetSMSInbox returns the messages received by an order's number.
func (u *UserAPI) GetSMSInbox(ctx context.Context, orderID int64) ([]SMS, error) {
	data, err := u.api.get(ctx, true, nil, "sms", "inbox", strconv.FormatInt(orderID, 10))
	if err != nil {
		return nil, err
	}

	return decodeSMSInbox(data)
}

// isElevenDigits reports whether s is exactly 11 ASCII digits.
func isElevenDigits(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
