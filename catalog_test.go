package fivesim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	category, ok := ParseCategory("activation")
	assert.True(t, ok)
	assert.Equal(t, CategoryActivation, category)

	category, ok = ParseCategory("hosting")
	assert.True(t, ok)
	assert.Equal(t, CategoryHosting, category)

	_, ok = ParseCategory("rental")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	for _, token := range []string{"PENDING", "RECEIVED", "CANCELED", "TIMEOUT", "FINISHED", "BANNED"} {
		status, ok := ParseStatus(token)
		assert.True(t, ok, token)
		assert.Equal(t, token, string(status))
	}

	_, ok := ParseStatus("pending")
	assert.False(t, ok)
	_, ok = ParseStatus("EXPLODED")
	assert.False(t, ok)
}

func TestStatus_Description(t *testing.T) {
	assert.Equal(t, "preparation", StatusPending.Description())
	assert.Equal(t, "is complete", StatusFinished.Description())
	assert.Empty(t, Status("EXPLODED").Description())
}

func TestParseOperator(t *testing.T) {
	operator, ok := ParseOperator("beeline")
	assert.True(t, ok)
	assert.Equal(t, OperatorBeeline, operator)

	operator, ok = ParseOperator("any")
	assert.True(t, ok)
	assert.Equal(t, OperatorAny, operator)

	_, ok = ParseOperator("carrier_pigeon")
	assert.False(t, ok)
}

func TestParseCountry(t *testing.T) {
	country, ok := ParseCountry("russia")
	assert.True(t, ok)
	assert.Equal(t, CountryRussia, country)

	country, ok = ParseCountry("any")
	assert.True(t, ok)
	assert.Equal(t, CountryAny, country)

	_, ok = ParseCountry("atlantis")
	assert.False(t, ok)
}

func TestParseProduct(t *testing.T) {
	product := ParseProduct("telegram")
	assert.Equal(t, ProductTelegram, product)
	assert.Equal(t, CategoryActivation, product.ProductCategory())
	assert.Equal(t, "telegram", product.String())

	product = ParseProduct("1day")
	assert.Equal(t, HostingOneDay, product)
	assert.Equal(t, CategoryHosting, product.ProductCategory())

	assert.Nil(t, ParseProduct("brand_new_service"))
	assert.Nil(t, ParseProduct(""))
}

func TestParseActivationProduct_RejectsHostingTokens(t *testing.T) {
	_, ok := ParseActivationProduct("1day")
	assert.False(t, ok)

	product, ok := ParseActivationProduct("vk_call")
	assert.True(t, ok)
	assert.Equal(t, ProductVkCall, product)
}
