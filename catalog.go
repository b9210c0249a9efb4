package fivesim

// The catalog enumerations are closed sets of wire tokens. Each value
// serializes to the exact string the upstream API embeds in URL paths and
// uses as JSON keys, and each set has a fail-soft parser: a token outside
// the set parses to (zero, false), never an error, because responses keyed
// by unknown codes must be skipped rather than rejected (see decode.go).

// Category distinguishes the two product families.
type Category string

const (
	// CategoryActivation is a short-term rental for one-time SMS verification.
	CategoryActivation Category = "activation"

	// CategoryHosting is a longer-term rental without activation constraints.
	CategoryHosting Category = "hosting"
)

// ParseCategory parses a wire token into a Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryActivation, CategoryHosting:
		return Category(s), true
	default:
		return "", false
	}
}

// Status is the lifecycle state of an order. The wire form is the
// uppercase name; Description returns the human-readable phrase the
// service documents for each state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReceived Status = "RECEIVED"
	StatusCanceled Status = "CANCELED"
	StatusTimeout  Status = "TIMEOUT"
	StatusFinished Status = "FINISHED"
	StatusBanned   Status = "BANNED"
)

var statusDescriptions = map[Status]string{
	StatusPending:  "preparation",
	StatusReceived: "waiting of receipt of SMS",
	StatusCanceled: "is cancelled",
	StatusTimeout:  "a timeout",
	StatusFinished: "is complete",
	StatusBanned:   "number banned, when number already used",
}

// Description returns the human-readable description of the status.
func (s Status) Description() string {
	return statusDescriptions[s]
}

// ParseStatus parses a wire token into a Status.
func ParseStatus(s string) (Status, bool) {
	_, ok := statusDescriptions[Status(s)]
	return Status(s), ok
}

// OrderAction is an operation applied to an existing order.
type OrderAction string

const (
	OrderCheck  OrderAction = "check"
	OrderFinish OrderAction = "finish"
	OrderCancel OrderAction = "cancel"
	OrderBan    OrderAction = "ban"
)

// Language selects the notification language.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageRussian Language = "russian"
)

// VendorPaymentMethod is the payout method for vendor withdrawals.
type VendorPaymentMethod string

const (
	PaymentMethodVisa   VendorPaymentMethod = "visa"
	PaymentMethodQiwi   VendorPaymentMethod = "qiwi"
	PaymentMethodYandex VendorPaymentMethod = "yandex"
)

// VendorPaymentSystem is the payment system executing a vendor payout.
type VendorPaymentSystem string

const (
	PaymentSystemFkwallet VendorPaymentSystem = "fkwallet"
	PaymentSystemPayeer   VendorPaymentSystem = "payeer"
	PaymentSystemUnitpay  VendorPaymentSystem = "unitpay"
)

// Operator is a mobile network operator code. OperatorAny means
// "no operator filter" when building request paths.
type Operator string

const (
	OperatorAny Operator = "any"

	OperatorAirtel     Operator = "airtel"
	OperatorBeeline    Operator = "beeline"
	OperatorLycamobile Operator = "lycamobile"
	OperatorMatrix     Operator = "matrix"
	OperatorMegafon    Operator = "megafon"
	OperatorMts        Operator = "mts"
	OperatorOrange     Operator = "orange"
	OperatorPlay       Operator = "play"
	OperatorRostelecom Operator = "rostelecom"
	OperatorTele2      Operator = "tele2"
	OperatorTmobile    Operator = "tmobile"
	OperatorVirtual4   Operator = "virtual4"
	OperatorVirtual15  Operator = "virtual15"
	OperatorVirtual21  Operator = "virtual21"
	OperatorVirtual23  Operator = "virtual23"
	OperatorVodafone   Operator = "vodafone"
	OperatorYota       Operator = "yota"
)

var operators = makeSet(
	OperatorAny,
	OperatorAirtel, OperatorBeeline, OperatorLycamobile, OperatorMatrix,
	OperatorMegafon, OperatorMts, OperatorOrange, OperatorPlay,
	OperatorRostelecom, OperatorTele2, OperatorTmobile, OperatorVirtual4,
	OperatorVirtual15, OperatorVirtual21, OperatorVirtual23,
	OperatorVodafone, OperatorYota,
)

// ParseOperator parses a wire token into an Operator.
func ParseOperator(s string) (Operator, bool) {
	_, ok := operators[Operator(s)]
	return Operator(s), ok
}

// Country is a country code. CountryAny means "no country filter" when
// building request paths.
type Country string

const (
	CountryAny Country = "any"

	CountryAfghanistan Country = "afghanistan"
	CountryArgentina   Country = "argentina"
	CountryBrazil      Country = "brazil"
	CountryCanada      Country = "canada"
	CountryEngland     Country = "england"
	CountryEstonia     Country = "estonia"
	CountryFrance      Country = "france"
	CountryGermany     Country = "germany"
	CountryIndia       Country = "india"
	CountryIndonesia   Country = "indonesia"
	CountryItaly       Country = "italy"
	CountryKazakhstan  Country = "kazakhstan"
	CountryLatvia      Country = "latvia"
	CountryLithuania   Country = "lithuania"
	CountryMexico      Country = "mexico"
	CountryNetherlands Country = "netherlands"
	CountryPhilippines Country = "philippines"
	CountryPoland      Country = "poland"
	CountryPortugal    Country = "portugal"
	CountryRomania     Country = "romania"
	CountryRussia      Country = "russia"
	CountrySpain       Country = "spain"
	CountryThailand    Country = "thailand"
	CountryUkraine     Country = "ukraine"
	CountryUSA         Country = "usa"
	CountryVietnam     Country = "vietnam"
)

var countries = makeSet(
	CountryAny,
	CountryAfghanistan, CountryArgentina, CountryBrazil, CountryCanada,
	CountryEngland, CountryEstonia, CountryFrance, CountryGermany,
	CountryIndia, CountryIndonesia, CountryItaly, CountryKazakhstan,
	CountryLatvia, CountryLithuania, CountryMexico, CountryNetherlands,
	CountryPhilippines, CountryPoland, CountryPortugal, CountryRomania,
	CountryRussia, CountrySpain, CountryThailand, CountryUkraine,
	CountryUSA, CountryVietnam,
)

// ParseCountry parses a wire token into a Country.
func ParseCountry(s string) (Country, bool) {
	_, ok := countries[Country(s)]
	return Country(s), ok
}

// Product is implemented by the two disjoint product enumerations.
// ProductCategory reports which family a product belongs to; the wire
// token is the string value itself.
type Product interface {
	ProductCategory() Category
	String() string
}

// ActivationProduct is a product in the activation family.
type ActivationProduct string

const (
	ProductAmazon    ActivationProduct = "amazon"
	ProductDiscord   ActivationProduct = "discord"
	ProductFacebook  ActivationProduct = "facebook"
	ProductGoogle    ActivationProduct = "google"
	ProductInstagram ActivationProduct = "instagram"
	ProductMailru    ActivationProduct = "mailru"
	ProductMicrosoft ActivationProduct = "microsoft"
	ProductNetflix   ActivationProduct = "netflix"
	ProductSteam     ActivationProduct = "steam"
	ProductTelegram  ActivationProduct = "telegram"
	ProductTiktok    ActivationProduct = "tiktok"
	ProductTinder    ActivationProduct = "tinder"
	ProductTwitter   ActivationProduct = "twitter"
	ProductUber      ActivationProduct = "uber"
	ProductViber     ActivationProduct = "viber"
	ProductVkontakte ActivationProduct = "vkontakte"
	ProductVkCall    ActivationProduct = "vk_call"
	ProductWhatsapp  ActivationProduct = "whatsapp"
	ProductYahoo     ActivationProduct = "yahoo"
	ProductYandex    ActivationProduct = "yandex"
)

var activationProducts = makeSet(
	ProductAmazon, ProductDiscord, ProductFacebook, ProductGoogle,
	ProductInstagram, ProductMailru, ProductMicrosoft, ProductNetflix,
	ProductSteam, ProductTelegram, ProductTiktok, ProductTinder,
	ProductTwitter, ProductUber, ProductViber, ProductVkontakte,
	ProductVkCall, ProductWhatsapp, ProductYahoo, ProductYandex,
)

// ProductCategory implements Product.
func (ActivationProduct) ProductCategory() Category { return CategoryActivation }

// String returns the wire token.
func (p ActivationProduct) String() string { return string(p) }

// ParseActivationProduct parses a wire token into an ActivationProduct.
func ParseActivationProduct(s string) (ActivationProduct, bool) {
	_, ok := activationProducts[ActivationProduct(s)]
	return ActivationProduct(s), ok
}

// HostingProduct is a product in the hosting family.
type HostingProduct string

const (
	HostingThreeHours HostingProduct = "3hours"
	HostingOneDay     HostingProduct = "1day"
	HostingTenDays    HostingProduct = "10days"
	HostingOneMonth   HostingProduct = "1month"
)

var hostingProducts = makeSet(
	HostingThreeHours, HostingOneDay, HostingTenDays, HostingOneMonth,
)

// ProductCategory implements Product.
func (HostingProduct) ProductCategory() Category { return CategoryHosting }

// String returns the wire token.
func (p HostingProduct) String() string { return string(p) }

// ParseHostingProduct parses a wire token into a HostingProduct.
func ParseHostingProduct(s string) (HostingProduct, bool) {
	_, ok := hostingProducts[HostingProduct(s)]
	return HostingProduct(s), ok
}

// ParseProduct attempts the activation set first, then hosting.
// Returns nil when the token is in neither set.
func ParseProduct(s string) Product {
	if p, ok := ParseActivationProduct(s); ok {
		return p
	}
	if p, ok := ParseHostingProduct(s); ok {
		return p
	}
	return nil
}

func makeSet[T comparable](values ...T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
