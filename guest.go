package fivesim

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// GuestAPI exposes the catalog operations under /v1/guest/. Apart from
// the notification endpoint these calls are unauthenticated.
type GuestAPI struct {
	api *api
}

// GetProducts returns the products available for a country and operator,
// partitioned by family. CountryAny and OperatorAny are accepted.
func (g *GuestAPI) GetProducts(ctx context.Context, country Country, operator Operator) (*GuestProducts, error) {
	if country == "" {
		country = CountryAny
	}
	if operator == "" {
		operator = OperatorAny
	}

	data, err := g.api.get(ctx, false, nil, "products", string(country), string(operator))
	if err != nil {
		return nil, err
	}

	return decodeGuestProducts(data)
}

// GetPrices returns the price catalog, optionally narrowed by the filter.
// Whatever nesting the service answers with, the result is normalized to
// country → product → operator, with axes missing from the response
// filled in from the filter.
//
// A product filter that is not available for the country makes the
// service answer the literal JSON null, reported here as an
// incorrect-product error rather than an empty map.
func (g *GuestAPI) GetPrices(ctx context.Context, filter PriceFilter) (PriceMap, error) {
	query := url.Values{}
	if filter.Country != "" && filter.Country != CountryAny {
		query.Set("country", string(filter.Country))
	}
	if filter.Product != "" {
		query.Set("product", string(filter.Product))
	}

	data, err := g.api.get(ctx, false, query, "prices")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(string(data)) == "null" {
		return nil, newAPIError(KindIncorrectProduct, "Product isn't available for the country")
	}

	return decodePrices(data, filter)
}

// GetOperatorPrices is the flat projection of GetPrices for one country
// and product: just the operator to price map. Both a concrete country
// and a product are required; use GetPrices to browse across countries.
func (g *GuestAPI) GetOperatorPrices(ctx context.Context, country Country, product ActivationProduct) (map[Operator]ProductInformation, error) {
	if country == "" || country == CountryAny {
		return nil, newArgumentError("country", "a concrete country is required")
	}
	if product == "" {
		return nil, newArgumentError("product", "product is required")
	}

	filter := PriceFilter{Country: country, Product: product}

	prices, err := g.GetPrices(ctx, filter)
	if err != nil {
		return nil, err
	}

	return prices[filter.country()][product], nil
}

// GetNotification returns the service notification text in the given
// language. Notifications are best-effort: a response body without the
// expected shape yields an empty string, not an error. Transport and API
// failures still propagate.
func (g *GuestAPI) GetNotification(ctx context.Context, lang Language) (string, error) {
	if lang != LanguageEnglish && lang != LanguageRussian {
		return "", newArgumentError("lang", "language must be english or russian")
	}

	data, err := g.api.get(ctx, true, nil, "flash", string(lang))
	if err != nil {
		return "", err
	}

	text, err := decodeNotification(data)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Kind == KindInvalidResult {
			return "", nil
		}
		return "", err
	}

	return text, nil
}

// GetCountries returns every country the service knows, with prefix and
// localized names.
func (g *GuestAPI) GetCountries(ctx context.Context) (map[Country]CountryInformation, error) {
	data, err := g.api.get(ctx, false, nil, "countries")
	if err != nil {
		return nil, err
	}

	return decodeGuestCountries(data)
}
