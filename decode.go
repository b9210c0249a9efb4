package fivesim

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// The decoding layer turns the untagged, shape-polymorphic JSON the
// service answers with into typed records. Shapes are recognized by key
// probes, never by position: a leaf is identified by its sentinel keys
// ("Category" or "cost"/"count" for product information, "code" for an
// SMS), and mapping levels are classified by parsing a sampled key against
// the ordered axis list in prices.go. Keys outside the catalog are dropped
// silently; a recognized leaf missing a required key fails loud with an
// invalid-result error.

// rawObject is one level of an untyped JSON object.
type rawObject map[string]json.RawMessage

func decodeRawObject(data []byte) (rawObject, error) {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, invalidResult("response is not a JSON object: " + err.Error())
	}
	return obj, nil
}

func (o rawObject) has(key string) bool {
	_, ok := o[key]
	return ok
}

// sortedKeys returns the object's keys in lexicographic order. Sampling
// and probing always run over this order so decoding never depends on map
// iteration order.
func (o rawObject) sortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// requireString decodes a required string field.
func (o rawObject) requireString(key string) (string, error) {
	raw, ok := o[key]
	if !ok {
		return "", invalidResult("missing required key " + key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalidResult(fmt.Sprintf("key %s is not a string", key))
	}
	return s, nil
}

// requireFloat decodes a required numeric field.
func (o rawObject) requireFloat(key string) (float64, error) {
	raw, ok := o[key]
	if !ok {
		return 0, invalidResult("missing required key " + key)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, invalidResult(fmt.Sprintf("key %s is not a number", key))
	}
	return f, nil
}

// requireInt decodes a required integer field.
func (o rawObject) requireInt(key string) (int64, error) {
	raw, ok := o[key]
	if !ok {
		return 0, invalidResult("missing required key " + key)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, invalidResult(fmt.Sprintf("key %s is not an integer", key))
	}
	return n, nil
}

// optionalString decodes an optional string field, "" when absent.
func (o rawObject) optionalString(key string) string {
	raw, ok := o[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// optionalBool decodes an optional boolean field, nil when absent.
func (o rawObject) optionalBool(key string) *bool {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	return &b
}

// timestampLayouts are the accepted ISO-8601 forms. The service emits
// RFC3339; some history records omit the zone designator.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// requireTimestamp decodes a required ISO-8601 timestamp. An unparsable
// timestamp is an invalid result, never a silently defaulted value.
func (o rawObject) requireTimestamp(key string) (time.Time, error) {
	s, err := o.requireString(key)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range timestampLayouts {
		if t, parseErr := time.Parse(layout, s); parseErr == nil {
			return t, nil
		}
	}
	return time.Time{}, invalidResult(fmt.Sprintf("key %s holds unparsable timestamp %q", key, s))
}

// decodeKeyed walks one JSON object level, parsing every key with
// parseKey and every value with decodeValue. Keys that fail to parse are
// dropped; value decoding errors propagate.
func decodeKeyed[K comparable, V any](
	obj rawObject,
	parseKey func(string) (K, bool),
	decodeValue func(json.RawMessage) (V, error),
) (map[K]V, error) {
	result := make(map[K]V, len(obj))
	for _, key := range obj.sortedKeys() {
		parsed, ok := parseKey(key)
		if !ok {
			continue
		}
		value, err := decodeValue(obj[key])
		if err != nil {
			return nil, err
		}
		result[parsed] = value
	}
	return result, nil
}

// isProductLeaf reports whether one level is a product-information record
// rather than a further nesting level.
func isProductLeaf(obj rawObject) bool {
	return obj.has("Category") || obj.has("cost") || obj.has("count")
}

// decodeProductInformation decodes either spelling of a product record.
func decodeProductInformation(data json.RawMessage) (ProductInformation, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return ProductInformation{}, err
	}

	if obj.has("Category") {
		category, err := obj.requireString("Category")
		if err != nil {
			return ProductInformation{}, err
		}
		parsed, ok := ParseCategory(category)
		if !ok {
			return ProductInformation{}, invalidResult("unknown product category " + category)
		}
		info := ProductInformation{Category: parsed}
		if obj.has("Qty") {
			qty, err := obj.requireInt("Qty")
			if err != nil {
				return ProductInformation{}, err
			}
			info.Quantity = int(qty)
		}
		if obj.has("Price") {
			price, err := obj.requireFloat("Price")
			if err != nil {
				return ProductInformation{}, err
			}
			info.Price = price
		}
		return info, nil
	}

	// Prices spelling: cost/count, always the activation family.
	cost, err := obj.requireFloat("cost")
	if err != nil {
		return ProductInformation{}, err
	}
	count, err := obj.requireInt("count")
	if err != nil {
		return ProductInformation{}, err
	}
	return ProductInformation{
		Category: CategoryActivation,
		Quantity: int(count),
		Price:    cost,
	}, nil
}

// decodeGuestProducts partitions a products response by product family,
// dropping keys that match neither catalog.
func decodeGuestProducts(data []byte) (*GuestProducts, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}

	result := &GuestProducts{
		Activation: make(map[ActivationProduct]ProductInformation),
		Hosting:    make(map[HostingProduct]ProductInformation),
	}
	for _, key := range obj.sortedKeys() {
		product := ParseProduct(key)
		if product == nil {
			continue
		}
		info, err := decodeProductInformation(obj[key])
		if err != nil {
			return nil, err
		}
		switch p := product.(type) {
		case ActivationProduct:
			result.Activation[p] = info
		case HostingProduct:
			result.Hosting[p] = info
		}
	}
	return result, nil
}

// decodeSMS decodes one message record.
func decodeSMS(data json.RawMessage) (SMS, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return SMS{}, err
	}

	createdAt, err := obj.requireTimestamp("created_at")
	if err != nil {
		return SMS{}, err
	}
	receivedAt, err := obj.requireTimestamp("date")
	if err != nil {
		return SMS{}, err
	}
	sender, err := obj.requireString("sender")
	if err != nil {
		return SMS{}, err
	}
	text, err := obj.requireString("text")
	if err != nil {
		return SMS{}, err
	}
	code, err := obj.requireString("code")
	if err != nil {
		return SMS{}, err
	}
	return SMS{
		CreatedAt:      createdAt,
		ReceivedAt:     receivedAt,
		Sender:         sender,
		Text:           text,
		ActivationCode: code,
		IsWave:         obj.optionalBool("is_wave"),
		WaveUUID:       obj.optionalString("wave_uuid"),
	}, nil
}

// decodeOrderObject decodes one order record. The product code is
// attempted against the activation catalog first, then hosting; a code
// in neither leaves Product nil without failing the record.
func decodeOrderObject(obj rawObject) (Order, error) {
	id, err := obj.requireInt("id")
	if err != nil {
		return Order{}, err
	}
	phone, err := obj.requireString("phone")
	if err != nil {
		return Order{}, err
	}
	createdAt, err := obj.requireTimestamp("created_at")
	if err != nil {
		return Order{}, err
	}
	expiresAt, err := obj.requireTimestamp("expires")
	if err != nil {
		return Order{}, err
	}
	price, err := obj.requireFloat("price")
	if err != nil {
		return Order{}, err
	}
	statusToken, err := obj.requireString("status")
	if err != nil {
		return Order{}, err
	}
	status, ok := ParseStatus(statusToken)
	if !ok {
		return Order{}, invalidResult("unknown order status " + statusToken)
	}

	order := Order{
		ID:               id,
		Phone:            phone,
		CreatedAt:        createdAt,
		ExpiresAt:        expiresAt,
		Price:            price,
		Status:           status,
		Operator:         Operator(obj.optionalString("operator")),
		Product:          ParseProduct(obj.optionalString("product")),
		Forwarding:       obj.optionalBool("forwarding"),
		ForwardingNumber: obj.optionalString("forwarding_number"),
	}
	if country, ok := ParseCountry(obj.optionalString("country")); ok {
		order.Country = country
	}
	if raw, ok := obj["sms"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			order.SMS = make([]SMS, 0, len(items))
			for _, item := range items {
				sms, err := decodeSMS(item)
				if err != nil {
					return Order{}, err
				}
				order.SMS = append(order.SMS, sms)
			}
		}
	}
	return order, nil
}

// decodeOrderPayload decodes a payload from an order endpoint. Exactly one
// of the results is set: the presence of the activation-code key
// identifies an SMS payload, even at endpoints that nominally answer
// with orders.
func decodeOrderPayload(data []byte) (*Order, *SMS, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, nil, err
	}
	if obj.has("code") {
		sms, err := decodeSMS(data)
		if err != nil {
			return nil, nil, err
		}
		return nil, &sms, nil
	}
	order, err := decodeOrderObject(obj)
	if err != nil {
		return nil, nil, err
	}
	return &order, nil, nil
}

// decodeOrderResult folds an order-endpoint payload into a single Order.
// When the service answers with a bare SMS in place of the order record,
// the message comes back attached to an otherwise empty order.
func decodeOrderResult(data []byte) (*Order, error) {
	order, sms, err := decodeOrderPayload(data)
	if err != nil {
		return nil, err
	}
	if sms != nil {
		return &Order{SMS: []SMS{*sms}}, nil
	}
	return order, nil
}

// decodeSMSInbox decodes the inbox payload: either a Data list or, for a
// single message, a bare SMS record.
func decodeSMSInbox(data []byte) ([]SMS, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}
	if obj.has("code") {
		sms, err := decodeSMS(data)
		if err != nil {
			return nil, err
		}
		return []SMS{sms}, nil
	}

	raw, ok := obj["Data"]
	if !ok {
		return nil, invalidResult("missing required key Data")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidResult("key Data is not a list")
	}
	inbox := make([]SMS, 0, len(items))
	for _, item := range items {
		sms, err := decodeSMS(item)
		if err != nil {
			return nil, err
		}
		inbox = append(inbox, sms)
	}
	return inbox, nil
}

// decodePayment decodes one payments-history record.
func decodePayment(data json.RawMessage) (Payment, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return Payment{}, err
	}

	id, err := obj.requireInt("ID")
	if err != nil {
		return Payment{}, err
	}
	typeName, err := obj.requireString("TypeName")
	if err != nil {
		return Payment{}, err
	}
	provider, err := obj.requireString("ProviderName")
	if err != nil {
		return Payment{}, err
	}
	amount, err := obj.requireFloat("Amount")
	if err != nil {
		return Payment{}, err
	}
	balance, err := obj.requireFloat("Balance")
	if err != nil {
		return Payment{}, err
	}
	createdAt, err := obj.requireTimestamp("CreatedAt")
	if err != nil {
		return Payment{}, err
	}
	return Payment{
		ID:        id,
		Type:      typeName,
		Provider:  provider,
		Amount:    amount,
		Balance:   balance,
		CreatedAt: createdAt,
	}, nil
}

// nameList decodes the history metadata name lists, which arrive either
// as bare strings or wrapped in {"Name": ...} / {"name": ...} objects.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// A null metadata list means "no names reported".
		*n = nil
		return nil
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			names = append(names, s)
			continue
		}
		var wrapped struct {
			Name      string `json:"Name"`
			NameLower string `json:"name"`
		}
		if err := json.Unmarshal(item, &wrapped); err != nil {
			continue
		}
		if wrapped.Name != "" {
			names = append(names, wrapped.Name)
		} else if wrapped.NameLower != "" {
			names = append(names, wrapped.NameLower)
		}
	}
	*n = names
	return nil
}

func (o rawObject) optionalNames(key string) []string {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var names nameList
	_ = names.UnmarshalJSON(raw)
	return names
}

// decodeOrdersHistory decodes one orders-history page.
func decodeOrdersHistory(data []byte) (*OrdersHistory, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}

	raw, ok := obj["Data"]
	if !ok {
		return nil, invalidResult("missing required key Data")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidResult("key Data is not a list")
	}
	total, err := obj.requireInt("Total")
	if err != nil {
		return nil, err
	}

	history := &OrdersHistory{
		Data:         make([]Order, 0, len(items)),
		ProductNames: obj.optionalNames("ProductNames"),
		Statuses:     obj.optionalNames("Statuses"),
		Total:        int(total),
	}
	for _, item := range items {
		order, err := decodeOrderResult(item)
		if err != nil {
			return nil, err
		}
		history.Data = append(history.Data, *order)
	}
	return history, nil
}

// decodePaymentsHistory decodes one payments-history page.
func decodePaymentsHistory(data []byte) (*PaymentsHistory, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}

	raw, ok := obj["Data"]
	if !ok {
		return nil, invalidResult("missing required key Data")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidResult("key Data is not a list")
	}
	total, err := obj.requireInt("Total")
	if err != nil {
		return nil, err
	}

	history := &PaymentsHistory{
		Data:             make([]Payment, 0, len(items)),
		PaymentTypes:     obj.optionalNames("PaymentTypes"),
		PaymentProviders: obj.optionalNames("PaymentProviders"),
		PaymentStatuses:  obj.optionalNames("PaymentStatuses"),
		Total:            int(total),
	}
	for _, item := range items {
		payment, err := decodePayment(item)
		if err != nil {
			return nil, err
		}
		history.Data = append(history.Data, payment)
	}
	return history, nil
}

// singleKey returns the lexicographically smallest key of a one-key wire
// object such as {"af": 1}. The countries catalog wraps iso and prefix
// this way; the profile endpoint sends them as flat strings.
func singleKey(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	obj, err := decodeRawObject(raw)
	if err != nil || len(obj) == 0 {
		return "", false
	}
	return obj.sortedKeys()[0], true
}

// decodeCountryInformation decodes a country record from either the guest
// countries shape (single-key iso/prefix objects, text_en/text_ru) or the
// profile shape (flat strings, name).
func decodeCountryInformation(data json.RawMessage) (CountryInformation, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return CountryInformation{}, err
	}

	rawISO, ok := obj["iso"]
	if !ok {
		return CountryInformation{}, invalidResult("missing required key iso")
	}
	iso, ok := singleKey(rawISO)
	if !ok {
		return CountryInformation{}, invalidResult("key iso holds no code")
	}
	info := CountryInformation{ISO: iso}
	if rawPrefix, ok := obj["prefix"]; ok {
		if prefix, ok := singleKey(rawPrefix); ok {
			info.Prefix = prefix
		}
	}
	if obj.has("text_en") {
		info.NameEn = obj.optionalString("text_en")
		info.NameRu = obj.optionalString("text_ru")
	} else {
		name, err := obj.requireString("name")
		if err != nil {
			return CountryInformation{}, err
		}
		info.NameEn = name
	}
	return info, nil
}

// decodeGuestCountries decodes the country catalog, dropping keys outside
// the Country enumeration.
func decodeGuestCountries(data []byte) (map[Country]CountryInformation, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(obj, ParseCountry, decodeCountryInformation)
}

// decodeProfile decodes the account profile.
func decodeProfile(data []byte) (*ProfileInformation, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}

	id, err := obj.requireInt("id")
	if err != nil {
		return nil, err
	}
	email, err := obj.requireString("email")
	if err != nil {
		return nil, err
	}
	balance, err := obj.requireFloat("balance")
	if err != nil {
		return nil, err
	}
	frozen, err := obj.requireFloat("frozen_balance")
	if err != nil {
		return nil, err
	}
	rating, err := obj.requireFloat("rating")
	if err != nil {
		return nil, err
	}

	profile := &ProfileInformation{
		ID:               id,
		Email:            email,
		VendorName:       obj.optionalString("vendor"),
		Balance:          balance,
		FrozenBalance:    frozen,
		Rating:           rating,
		ForwardingNumber: obj.optionalString("default_forwarding_number"),
	}
	if raw, ok := obj["default_operator"]; ok {
		operatorObj, err := decodeRawObject(raw)
		if err != nil {
			return nil, err
		}
		profile.DefaultOperatorName = operatorObj.optionalString("name")
	}
	if raw, ok := obj["default_country"]; ok {
		country, err := decodeCountryInformation(raw)
		if err != nil {
			return nil, err
		}
		profile.DefaultCountry = country
	}
	return profile, nil
}

// decodeVendorWallet decodes the vendor balances. Every payment system of
// the closed set must be present.
func decodeVendorWallet(data []byte) (*VendorWallet, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}

	fkwallet, err := obj.requireFloat(string(PaymentSystemFkwallet))
	if err != nil {
		return nil, err
	}
	payeer, err := obj.requireFloat(string(PaymentSystemPayeer))
	if err != nil {
		return nil, err
	}
	unitpay, err := obj.requireFloat(string(PaymentSystemUnitpay))
	if err != nil {
		return nil, err
	}
	return &VendorWallet{Fkwallet: fkwallet, Payeer: payeer, Unitpay: unitpay}, nil
}

// decodeNotification extracts the text of a flash notification.
func decodeNotification(data []byte) (string, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return "", err
	}
	return obj.requireString("text")
}
