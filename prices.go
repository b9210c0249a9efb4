package fivesim

import (
	"encoding/json"
)

// The prices endpoint answers with one of several nestings depending on
// the request filter: operator → record, product → operator → record,
// country → product → operator → record, or the inverted
// product → country → operator → record. None of the levels carries a
// discriminant tag, so each level is classified by parsing one sampled key
// (the lexicographically smallest) against the axes in keyAxes order. The
// first axis that accepts the key wins; keys a level's axis rejects are
// dropped from the result.

// keyAxis is one semantic axis a mapping level can represent.
type keyAxis int

const (
	axisNone keyAxis = iota
	axisOperator
	axisCountry
	axisActivationProduct
)

// keyAxes is the fixed disambiguation order for mapping keys. Operator
// and country codes share the "any" token and country and product codes
// can collide lexically, so this order is a policy constant, not an
// accident of iteration.
var keyAxes = []struct {
	axis  keyAxis
	parse func(string) bool
}{
	{axisOperator, func(s string) bool { _, ok := ParseOperator(s); return ok }},
	{axisCountry, func(s string) bool { _, ok := ParseCountry(s); return ok }},
	{axisActivationProduct, func(s string) bool { _, ok := ParseActivationProduct(s); return ok }},
}

// classifyAxis returns the first axis that accepts the key.
func classifyAxis(key string) keyAxis {
	for _, candidate := range keyAxes {
		if candidate.parse(key) {
			return candidate.axis
		}
	}
	return axisNone
}

// PriceFilter narrows a prices request. The zero value requests the whole
// catalog; CountryAny behaves like an unset country.
type PriceFilter struct {
	Country Country
	Product ActivationProduct
}

func (f PriceFilter) country() Country {
	if f.Country == "" {
		return CountryAny
	}
	return f.Country
}

// decodeOperatorPrices decodes one operator → record level.
func decodeOperatorPrices(data json.RawMessage) (map[Operator]ProductInformation, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}
	return decodeKeyed(obj, ParseOperator, decodeProductInformation)
}

// decodePrices normalizes any prices response shape into the full
// country → product → operator map, filling axes the response omits from
// the request filter.
func decodePrices(data []byte, filter PriceFilter) (PriceMap, error) {
	obj, err := decodeRawObject(data)
	if err != nil {
		return nil, err
	}

	result := make(PriceMap)
	if len(obj) == 0 {
		return result, nil
	}

	// A bare record means the response was fully narrowed down; both
	// filter axes are needed to give it a place.
	if isProductLeaf(obj) {
		if filter.Product == "" {
			return nil, invalidResult("prices response has no product axis and no product filter")
		}
		info, err := decodeProductInformation(data)
		if err != nil {
			return nil, err
		}
		result.put(filter.country(), filter.Product, map[Operator]ProductInformation{OperatorAny: info})
		return result, nil
	}

	sample, err := decodeRawObject(obj[obj.sortedKeys()[0]])
	if err != nil || len(sample) == 0 {
		return nil, invalidResult("unrecognized prices response shape")
	}

	// Flat operator → record mapping.
	if isProductLeaf(sample) {
		if filter.Product == "" {
			return nil, invalidResult("prices response has no product axis and no product filter")
		}
		operators, err := decodeKeyed(obj, ParseOperator, decodeProductInformation)
		if err != nil {
			return nil, err
		}
		result.put(filter.country(), filter.Product, operators)
		return result, nil
	}

	switch classifyAxis(sample.sortedKeys()[0]) {
	case axisOperator:
		// One nesting level above the operator maps: the keys here are
		// countries or, failing that, products.
		for _, key := range obj.sortedKeys() {
			operators, err := decodeOperatorPrices(obj[key])
			if err != nil {
				return nil, err
			}
			if country, ok := ParseCountry(key); ok {
				if filter.Product == "" {
					return nil, invalidResult("prices response has no product axis and no product filter")
				}
				result.put(country, filter.Product, operators)
				continue
			}
			if product, ok := ParseActivationProduct(key); ok {
				result.put(filter.country(), product, operators)
			}
		}

	case axisCountry:
		// Inverted shape: product → country → operator → record.
		for _, key := range obj.sortedKeys() {
			product, ok := ParseActivationProduct(key)
			if !ok {
				continue
			}
			byCountry, err := decodeRawObject(obj[key])
			if err != nil {
				return nil, err
			}
			countries, err := decodeKeyed(byCountry, ParseCountry, decodeOperatorPrices)
			if err != nil {
				return nil, err
			}
			for country, operators := range countries {
				result.put(country, product, operators)
			}
		}

	case axisActivationProduct:
		// Standard shape: country → product → operator → record.
		for _, key := range obj.sortedKeys() {
			country, ok := ParseCountry(key)
			if !ok {
				continue
			}
			byProduct, err := decodeRawObject(obj[key])
			if err != nil {
				return nil, err
			}
			products, err := decodeKeyed(byProduct, ParseActivationProduct, decodeOperatorPrices)
			if err != nil {
				return nil, err
			}
			for product, operators := range products {
				result.put(country, product, operators)
			}
		}

	default:
		return nil, invalidResult("unrecognized prices response shape")
	}

	return result, nil
}

// put merges one operator map into the nested result.
func (m PriceMap) put(country Country, product ActivationProduct, operators map[Operator]ProductInformation) {
	byProduct, ok := m[country]
	if !ok {
		byProduct = make(map[ActivationProduct]map[Operator]ProductInformation)
		m[country] = byProduct
	}
	byProduct[product] = operators
}
