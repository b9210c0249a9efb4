package fivesim

import (
	"encoding/json"
	"time"
)

// ProductInformation describes availability and price of one product.
// The products endpoint spells the fields Category/Qty/Price; the prices
// endpoint spells them cost/count. Both decode into this record and it
// always re-serializes in the products spelling.
type ProductInformation struct {
	Category Category `json:"Category"`
	Quantity int      `json:"Qty"`
	Price    float64  `json:"Price"`
}

// CountryInformation describes one entry of the country catalog.
type CountryInformation struct {
	ISO    string
	Prefix string
	NameEn string
	NameRu string
}

// MarshalJSON emits the guest-countries wire shape, where iso and prefix
// are single-key objects.
func (c CountryInformation) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"iso":     map[string]int{c.ISO: 1},
		"prefix":  map[string]int{c.Prefix: 1},
		"text_en": c.NameEn,
		"text_ru": c.NameRu,
	}
	return json.Marshal(out)
}

// SMS is a single received message. ReceivedAt maps to the wire key
// "date"; ActivationCode is the extracted verification code.
type SMS struct {
	CreatedAt      time.Time `json:"created_at"`
	ReceivedAt     time.Time `json:"date"`
	Sender         string    `json:"sender"`
	Text           string    `json:"text"`
	ActivationCode string    `json:"code"`
	IsWave         *bool     `json:"is_wave,omitempty"`
	WaveUUID       string    `json:"wave_uuid,omitempty"`
}

// Order is a purchased number. Operator, Country and Product are left at
// their zero values when the response omits them or uses a code outside
// the catalog; the rest of the record is still valid.
type Order struct {
	ID               int64
	Phone            string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	Operator         Operator
	Product          Product
	Country          Country
	Price            float64
	Status           Status
	SMS              []SMS
	Forwarding       *bool
	ForwardingNumber string
}

// MarshalJSON emits the wire shape the order endpoints answer with.
func (o Order) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":         o.ID,
		"phone":      o.Phone,
		"created_at": o.CreatedAt.Format(time.RFC3339),
		"expires":    o.ExpiresAt.Format(time.RFC3339),
		"price":      o.Price,
		"status":     string(o.Status),
	}
	if o.Operator != "" {
		out["operator"] = string(o.Operator)
	}
	if o.Product != nil {
		out["product"] = o.Product.String()
	}
	if o.Country != "" {
		out["country"] = string(o.Country)
	}
	if o.SMS != nil {
		out["sms"] = o.SMS
	}
	if o.Forwarding != nil {
		out["forwarding"] = *o.Forwarding
	}
	if o.ForwardingNumber != "" {
		out["forwarding_number"] = o.ForwardingNumber
	}
	return json.Marshal(out)
}

// Payment is one entry of the payments history.
type Payment struct {
	ID        int64     `json:"ID"`
	Type      string    `json:"TypeName"`
	Provider  string    `json:"ProviderName"`
	Amount    float64   `json:"Amount"`
	Balance   float64   `json:"Balance"`
	CreatedAt time.Time `json:"CreatedAt"`
}

// OrdersHistory is one page of the orders history plus the name lists the
// service reports for the statuses and products appearing in it.
type OrdersHistory struct {
	Data         []Order
	ProductNames []string
	Statuses     []string
	Total        int
}

// PaymentsHistory is one page of the payments history plus the name lists
// for the types, providers and statuses appearing in it.
type PaymentsHistory struct {
	Data             []Payment
	PaymentTypes     []string
	PaymentProviders []string
	PaymentStatuses  []string
	Total            int
}

// VendorWallet holds the vendor balance per payment system. All three
// fields are always present in a valid response.
type VendorWallet struct {
	Fkwallet float64 `json:"fkwallet"`
	Payeer   float64 `json:"payeer"`
	Unitpay  float64 `json:"unitpay"`
}

// ProfileInformation is the account data of the authenticated user.
type ProfileInformation struct {
	ID                  int64
	Email               string
	VendorName          string
	Balance             float64
	FrozenBalance       float64
	Rating              float64
	DefaultOperatorName string
	DefaultCountry      CountryInformation
	ForwardingNumber    string
}

// GuestProducts partitions a products response by product family.
// Response keys outside both catalogs are dropped.
type GuestProducts struct {
	Activation map[ActivationProduct]ProductInformation
	Hosting    map[HostingProduct]ProductInformation
}

// PriceMap is the normalized prices catalog: country → product →
// operator → information. Whatever nesting the server answers with, the
// decoder fills missing axes from the request filter so the shape is
// uniform for callers.
type PriceMap map[Country]map[ActivationProduct]map[Operator]ProductInformation
