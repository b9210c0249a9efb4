package fivesim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-token"

func newTestClient(t *testing.T, handler http.Handler) *FiveSim {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: testAPIKey, BaseURL: server.URL})
	require.NoError(t, err)

	return client
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(Config{APIKey: testAPIKey})
	require.NoError(t, err)

	assert.NotNil(t, client.User)
	assert.NotNil(t, client.Guest)
	assert.NotNil(t, client.Vendor)
}

func TestUserAPI_GetProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/profile", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{
			"id": 1048887, "email": "test@example.com",
			"balance": 100.5, "frozen_balance": 21.5, "rating": 96,
			"default_operator": {"name": "beeline"},
			"default_country": {"name": "russia", "iso": "ru", "prefix": "+7"}
		}`))
	}))

	profile, err := client.User.GetProfile(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, int64(1048887), profile.ID)
	assert.Equal(t, "test@example.com", profile.Email)
	assert.Equal(t, "beeline", profile.DefaultOperatorName)
}

func TestUserAPI_GetProfile_VendorVariant(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/vendor", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 1, "email": "vendor@example.com", "vendor": "demo",
			"balance": 500, "frozen_balance": 0, "rating": 96
		}`))
	}))

	profile, err := client.User.GetProfile(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "demo", profile.VendorName)
}

func TestUserAPI_BuyNumber(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/buy/activation/russia/any/telegram", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(orderBody()))
	}))

	order, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, ProductTelegram, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(53533933), order.ID)
	assert.Equal(t, StatusPending, order.Status)
}

func TestUserAPI_BuyNumber_Options(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "true", query.Get("forwarding"))
		assert.Equal(t, "79001234567", query.Get("number"))
		assert.Equal(t, "1", query.Get("reuse"))
		assert.Equal(t, "1", query.Get("voice"))
		_, _ = w.Write([]byte(orderBody()))
	}))

	_, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, ProductTelegram, &BuyOptions{
		ForwardingNumber: "79001234567",
		Reuse:            true,
		Voice:            true,
	})
	require.NoError(t, err)
}

func TestUserAPI_BuyNumber_DefaultsAnyAxes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/buy/activation/any/any/telegram", r.URL.Path)
		_, _ = w.Write([]byte(orderBody()))
	}))

	_, err := client.User.BuyNumber(context.Background(), "", "", ProductTelegram, nil)
	require.NoError(t, err)
}

func TestUserAPI_BuyNumber_ValidationSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(orderBody()))
	}))

	tests := []struct {
		name string
		call func() error
	}{
		{"nil product", func() error {
			_, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, nil, nil)
			return err
		}},
		{"hosting product with activation options", func() error {
			_, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, HostingOneDay, &BuyOptions{Reuse: true})
			return err
		}},
		{"forwarding number too short", func() error {
			_, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, ProductTelegram, &BuyOptions{ForwardingNumber: "123"})
			return err
		}},
		{"forwarding number not digits", func() error {
			_, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, ProductTelegram, &BuyOptions{ForwardingNumber: "7900123456x"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))
		})
	}

	assert.Zero(t, hits.Load())
}

func TestUserAPI_BuyNumber_HostingProductPath(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/buy/hosting/russia/any/1day", r.URL.Path)
		_, _ = w.Write([]byte(orderBody()))
	}))

	_, err := client.User.BuyNumber(context.Background(), CountryRussia, OperatorAny, HostingOneDay, nil)
	require.NoError(t, err)
}

func TestUserAPI_ReuseNumber(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/reuse/telegram/79000381454", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.User.ReuseNumber(context.Background(), ProductTelegram, "79000381454")
	require.NoError(t, err)

	err = client.User.ReuseNumber(context.Background(), nil, "79000381454")
	assert.True(t, IsInvalidArgument(err))
	err = client.User.ReuseNumber(context.Background(), ProductTelegram, "")
	assert.True(t, IsInvalidArgument(err))
}

func TestUserAPI_OrderAction(t *testing.T) {
	for _, action := range []OrderAction{OrderCheck, OrderFinish, OrderCancel, OrderBan} {
		t.Run(string(action), func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/user/"+string(action)+"/53533933", r.URL.Path)
				_, _ = w.Write([]byte(orderBody()))
			}))

			order, err := client.User.OrderAction(context.Background(), action, 53533933)
			require.NoError(t, err)
			assert.Equal(t, int64(53533933), order.ID)
		})
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := client.User.OrderAction(context.Background(), "", 1)
	assert.True(t, IsInvalidArgument(err))
}

func TestUserAPI_OrderAction_SMSPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"created_at": "2023-04-05T06:07:08Z", "date": "2023-04-05T06:08:09Z",
			"sender": "Telegram", "text": "Your code is 12345", "code": "12345"
		}`))
	}))

	order, err := client.User.OrderAction(context.Background(), OrderCheck, 53533933)
	require.NoError(t, err)
	assert.Zero(t, order.ID)
	require.Len(t, order.SMS, 1)
	assert.Equal(t, "12345", order.SMS[0].ActivationCode)
}

func TestUserAPI_GetSMSInbox(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/sms/inbox/53533933", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"Data": [{
				"created_at": "2023-04-05T06:07:08Z", "date": "2023-04-05T06:08:09Z",
				"sender": "Telegram", "text": "code 1", "code": "1"
			}],
			"Total": 1
		}`))
	}))

	inbox, err := client.User.GetSMSInbox(context.Background(), 53533933)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "1", inbox[0].ActivationCode)
}

func TestUserAPI_GetOrdersHistory(t *testing.T) {
	reverse := true
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/orders", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "activation", query.Get("category"))
		assert.Equal(t, "5", query.Get("limit"))
		assert.Equal(t, "10", query.Get("offset"))
		assert.Equal(t, "id", query.Get("order"))
		assert.Equal(t, "true", query.Get("reverse"))
		_, _ = w.Write([]byte(`{"Data": [], "Total": 0}`))
	}))

	history, err := client.User.GetOrdersHistory(context.Background(), CategoryActivation, &HistoryOptions{
		Limit:   5,
		Offset:  10,
		Order:   "id",
		Reverse: &reverse,
	})
	require.NoError(t, err)
	assert.Zero(t, history.Total)

	_, err = client.User.GetOrdersHistory(context.Background(), "", nil)
	assert.True(t, IsInvalidArgument(err))
}

func TestUserAPI_GetPaymentsHistory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/payments", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"Data": [], "Total": 0}`))
	}))

	_, err := client.User.GetPaymentsHistory(context.Background(), nil)
	require.NoError(t, err)
}

func TestGuestAPI_GetProducts_Unauthenticated(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/guest/products/russia/any", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"telegram": {"Category": "activation", "Qty": 110, "Price": 21.5}}`))
	}))

	products, err := client.Guest.GetProducts(context.Background(), CountryRussia, OperatorAny)
	require.NoError(t, err)
	assert.Len(t, products.Activation, 1)
}

func TestGuestAPI_GetPrices(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/guest/prices", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		query := r.URL.Query()
		assert.Equal(t, "russia", query.Get("country"))
		assert.Equal(t, "telegram", query.Get("product"))
		_, _ = w.Write([]byte(`{
			"russia": {"telegram": {"beeline": {"cost": 4, "count": 125}}}
		}`))
	}))

	prices, err := client.Guest.GetPrices(context.Background(), PriceFilter{
		Country: CountryRussia,
		Product: ProductTelegram,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, prices[CountryRussia][ProductTelegram][OperatorBeeline].Price)
}

func TestGuestAPI_GetPrices_AnyCountryOmitsParameter(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("country"))
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := client.Guest.GetPrices(context.Background(), PriceFilter{Country: CountryAny})
	require.NoError(t, err)
}

func TestGuestAPI_GetPrices_NullBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))

	_, err := client.Guest.GetPrices(context.Background(), PriceFilter{
		Country: CountryRussia,
		Product: ProductTelegram,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindIncorrectProduct))
}

func TestGuestAPI_GetOperatorPrices(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"russia": {"telegram": {
				"beeline": {"cost": 4, "count": 125},
				"mts":     {"cost": 5, "count": 48}
			}}
		}`))
	}))

	operators, err := client.Guest.GetOperatorPrices(context.Background(), CountryRussia, ProductTelegram)
	require.NoError(t, err)
	require.Len(t, operators, 2)
	assert.Equal(t, 48, operators[OperatorMts].Quantity)

	_, err = client.Guest.GetOperatorPrices(context.Background(), CountryRussia, "")
	assert.True(t, IsInvalidArgument(err))
}

func TestGuestAPI_GetOperatorPrices_RequiresConcreteCountry(t *testing.T) {
	var hits atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	for _, country := range []Country{"", CountryAny} {
		_, err := client.Guest.GetOperatorPrices(context.Background(), country, ProductTelegram)
		assert.True(t, IsInvalidArgument(err))
	}
	assert.Zero(t, hits.Load())
}

func TestGuestAPI_GetNotification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/guest/flash/english", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"text": "maintenance tonight"}`))
	}))

	text, err := client.Guest.GetNotification(context.Background(), LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "maintenance tonight", text)
}

func TestGuestAPI_GetNotification_MalformedBodyIsEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	text, err := client.Guest.GetNotification(context.Background(), LanguageRussian)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGuestAPI_GetNotification_APIFailurePropagates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Guest.GetNotification(context.Background(), LanguageEnglish)
	require.Error(t, err)
	assert.Equal(t, KindInvalidKey, KindOf(err))
}

func TestGuestAPI_GetNotification_InvalidLanguage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := client.Guest.GetNotification(context.Background(), "german")
	assert.True(t, IsInvalidArgument(err))
}

func TestGuestAPI_GetCountries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/guest/countries", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"russia": {"iso": {"ru": 1}, "prefix": {"+7": 1}, "text_en": "Russia", "text_ru": "Россия"}
		}`))
	}))

	countries, err := client.Guest.GetCountries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ru", countries[CountryRussia].ISO)
}

func TestVendorAPI_GetWallets(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/vendor/wallets", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"fkwallet": 101.5, "payeer": 2, "unitpay": 0}`))
	}))

	wallet, err := client.Vendor.GetWallets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 101.5, wallet.Fkwallet)
}

func TestVendorAPI_CreatePayout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/vendor/withdraw", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payout map[string]string
		require.NoError(t, json.Unmarshal(body, &payout))
		assert.Equal(t, map[string]string{
			"receiver": "wallet-123",
			"method":   "visa",
			"amount":   "50",
			"fee":      "fkwallet",
		}, payout)

		w.WriteHeader(http.StatusOK)
	}))

	err := client.Vendor.CreatePayout(context.Background(), "wallet-123", PaymentMethodVisa, 50, PaymentSystemFkwallet)
	require.NoError(t, err)

	err = client.Vendor.CreatePayout(context.Background(), "", PaymentMethodVisa, 50, PaymentSystemFkwallet)
	assert.True(t, IsInvalidArgument(err))
	err = client.Vendor.CreatePayout(context.Background(), "wallet-123", PaymentMethodVisa, 0, PaymentSystemFkwallet)
	assert.True(t, IsInvalidArgument(err))
}

func TestVendorAPI_GetOrdersHistory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/vendor/orders", r.URL.Path)
		assert.Equal(t, "hosting", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"Data": [], "Total": 0}`))
	}))

	_, err := client.Vendor.GetOrdersHistory(context.Background(), CategoryHosting, nil)
	require.NoError(t, err)

	_, err = client.Vendor.GetOrdersHistory(context.Background(), "", nil)
	assert.True(t, IsInvalidArgument(err))
}

func TestErrorClassification_FullStack(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"no free phones", http.StatusOK, "no free phones", KindNoFreePhones},
		{"unauthorized", http.StatusUnauthorized, "whatever", KindInvalidKey},
		{"key rate limit", http.StatusTooManyRequests, "", KindRateLimitedByKey},
		{"ip rate limit", http.StatusServiceUnavailable, "", KindRateLimitedByIP},
		{"unknown body", http.StatusBadRequest, "some new error", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.User.GetProfile(context.Background(), false)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestErrorClassification_ServerErrorAfterRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:  testAPIKey,
		BaseURL: server.URL,
		Retry:   RetryConfig{MaxAttempts: 3},
	})
	require.NoError(t, err)

	_, err = client.User.GetProfile(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, KindServerError, KindOf(err))
	assert.Equal(t, int32(3), hits.Load())
}

func TestAuthHeaderSurvivesRetries(t *testing.T) {
	var headers []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		if len(headers) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{
			"id": 1, "email": "user@example.com", "balance": 100,
			"frozen_balance": 0, "rating": 96
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:  testAPIKey,
		BaseURL: server.URL,
		Retry:   RetryConfig{MaxAttempts: 2},
	})
	require.NoError(t, err)

	_, err = client.User.GetProfile(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, headers, 2)
	for _, header := range headers {
		assert.Equal(t, "Bearer "+testAPIKey, header)
	}
}
