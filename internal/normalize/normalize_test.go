package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := json.RawMessage(`{
		"address": " 1 Oak St ",
		"propertyDetails": {"bedrooms": "3", "hasPool": "yes"},
		"documentClassification": {"documentType": "DEED"},
		"somethingExtra": {"nested": true}
	}`)

	first, err := json.Marshal(NormalizeRaw(raw))
	require.NoError(t, err)
	second, err := json.Marshal(NormalizeRaw(raw))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestShapeTolerance(t *testing.T) {
	flat := map[string]any{"address": "1 Oak St", "bedrooms": float64(3), "propertyType": "Condo"}
	nested := map[string]any{
		"basicPropertyInfo":      map[string]any{"address": "1 Oak St"},
		"propertyDetails":        map[string]any{"bedrooms": float64(3)},
		"documentClassification": map[string]any{"propertyType": "Condo"},
	}

	a := Normalize(flat)
	b := Normalize(nested)

	assert.Equal(t, a.Address, b.Address)
	assert.Equal(t, *a.Bedrooms, *b.Bedrooms)
	assert.Equal(t, a.PropertyType, b.PropertyType)
}

func TestFlatValueWinsOverNested(t *testing.T) {
	rec := Normalize(map[string]any{
		"address":           "2 Elm Ave",
		"basicPropertyInfo": map[string]any{"address": "ignored"},
	})
	assert.Equal(t, "2 Elm Ave", rec.Address)
}

func TestNestedAddressResolves(t *testing.T) {
	rec := NormalizeRaw(json.RawMessage(`{"basicPropertyInfo":{"address":"1 Oak St"}}`))
	assert.Equal(t, "1 Oak St", rec.Address)
}

func TestStringCoercion(t *testing.T) {
	rec := Normalize(map[string]any{
		"address":   "  1 Oak St  ",
		"city":      float64(90210), // numeric scalar is string-coercible
		"county":    map[string]any{"not": "a scalar"},
		"ownerName": "",
	})
	assert.Equal(t, "1 Oak St", rec.Address)
	assert.Equal(t, "90210", rec.City)
	assert.Empty(t, rec.County)
	assert.Empty(t, rec.OwnerName)
}

func TestNumericCoercion(t *testing.T) {
	rec := Normalize(map[string]any{
		"squareFootage": "1,250.5",
		"salePrice":     "$450,000",
		"lotSize":       math.NaN(),
		"bedrooms":      3.9,
		"yearBuilt":     "1987",
		"stories":       "two", // not numeric -> absent
	})
	require.NotNil(t, rec.SquareFootage)
	assert.Equal(t, 1250.5, *rec.SquareFootage)
	require.NotNil(t, rec.SalePrice)
	assert.Equal(t, 450000.0, *rec.SalePrice)
	assert.Nil(t, rec.LotSize)
	require.NotNil(t, rec.Bedrooms)
	assert.Equal(t, 3, *rec.Bedrooms) // integer fields floor
	require.NotNil(t, rec.YearBuilt)
	assert.Equal(t, 1987, *rec.YearBuilt)
	assert.Nil(t, rec.Stories)
}

func TestImplausibleCountsAreAbsent(t *testing.T) {
	// a hallucinated count must never reach per-unit part projection
	rec := NormalizeRaw(json.RawMessage(`{"bedrooms": 5000000, "bathrooms": 1e12, "stories": -3}`))
	assert.Nil(t, rec.Bedrooms)
	assert.Nil(t, rec.Bathrooms)
	assert.Nil(t, rec.Stories)

	rec = Normalize(map[string]any{"bedrooms": float64(500), "bathrooms": float64(0)})
	require.NotNil(t, rec.Bedrooms)
	assert.Equal(t, 500, *rec.Bedrooms)
	require.NotNil(t, rec.Bathrooms)
	assert.Equal(t, float64(0), *rec.Bathrooms)
}

func TestBooleanCoercion(t *testing.T) {
	rec := Normalize(map[string]any{
		"heating":   true,
		"cooling":   "Yes",
		"hasGarage": "off",
		"hasPool":   "maybe", // unknown token -> absent, not an error
	})
	require.NotNil(t, rec.Heating)
	assert.True(t, *rec.Heating)
	require.NotNil(t, rec.Cooling)
	assert.True(t, *rec.Cooling)
	require.NotNil(t, rec.HasGarage)
	assert.False(t, *rec.HasGarage)
	assert.Nil(t, rec.HasPool)
}

func TestBooleanTokenTable(t *testing.T) {
	for _, tok := range []string{"yes", "true", "1", "on"} {
		rec := Normalize(map[string]any{"hasPool": tok})
		require.NotNil(t, rec.HasPool, tok)
		assert.True(t, *rec.HasPool, tok)
	}
	for _, tok := range []string{"no", "false", "0", "off", "none"} {
		rec := Normalize(map[string]any{"hasPool": tok})
		require.NotNil(t, rec.HasPool, tok)
		assert.False(t, *rec.HasPool, tok)
	}
}

func TestCasingRules(t *testing.T) {
	rec := Normalize(map[string]any{
		"state":        " ca ",
		"propertyType": " Single Family Home ",
		"documentType": "DEED",
	})
	assert.Equal(t, "CA", rec.State)
	assert.Equal(t, "single family home", rec.PropertyType)
	assert.Equal(t, "deed", rec.DocumentType)
}

func TestOverflowPreservesUnknownKeys(t *testing.T) {
	rec := Normalize(map[string]any{
		"address":      "1 Oak St",
		"hoaFees":      float64(350),
		"listingAgent": "Jane Roe",
		"nullThing":    nil,
		"propertyDetails": map[string]any{
			"bedrooms": float64(2),
		},
	})
	require.NotNil(t, rec.Extras)
	assert.Equal(t, float64(350), rec.Extras["hoaFees"])
	assert.Equal(t, "Jane Roe", rec.Extras["listingAgent"])
	// canonical keys, known groups and nulls never land in the overflow map
	assert.NotContains(t, rec.Extras, "address")
	assert.NotContains(t, rec.Extras, "propertyDetails")
	assert.NotContains(t, rec.Extras, "nullThing")
}

func TestNormalizeNeverFails(t *testing.T) {
	assert.NotNil(t, NormalizeRaw(json.RawMessage(`not json at all`)))
	assert.NotNil(t, NormalizeRaw(json.RawMessage(`[]`)))
	assert.NotNil(t, Normalize(nil))

	empty := NormalizeRaw(json.RawMessage(`{}`))
	assert.Empty(t, empty.Address)
	assert.Nil(t, empty.Bedrooms)
	assert.Nil(t, empty.Extras)
}
