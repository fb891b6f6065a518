package semantic

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propdoc/constants"
	"propdoc/internal/entity"
)

func ptrF(f float64) *float64 { return &f }
func ptrI(n int) *int         { return &n }
func ptrB(b bool) *bool       { return &b }

func TestProjectionIsDeterministic(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	rec := &entity.CanonicalRecord{
		PropertyType:  "single family house",
		Address:       "1 Oak St",
		City:          "Springfield",
		Bedrooms:      ptrI(3),
		Bathrooms:     ptrF(2.5),
		Heating:       ptrB(true),
		HasPool:       ptrB(true),
		SquareFootage: ptrF(1850),
		SalePrice:     ptrF(450000),
		YearBuilt:     ptrI(1987),
	}

	a := Project(rec, id)
	b := Project(rec, id)
	assert.Equal(t, a, b)
}

func TestFractionalBathroomsEmitHalfPart(t *testing.T) {
	id := uuid.New()
	rec := &entity.CanonicalRecord{Bathrooms: ptrF(2.5)}

	g := Project(rec, id)

	var full, half int
	for _, p := range g.Parts {
		switch p.Kind {
		case entity.PartBathroom:
			full++
		case entity.PartHalfBathroom:
			half++
		}
	}
	assert.Equal(t, 2, full)
	assert.Equal(t, 1, half)
}

func TestImplausibleCountsEmitNoParts(t *testing.T) {
	id := uuid.New()

	g := Project(&entity.CanonicalRecord{Bedrooms: ptrI(5_000_000), Bathrooms: ptrF(-2)}, id)
	assert.Empty(t, g.Parts)

	g = Project(&entity.CanonicalRecord{Bedrooms: ptrI(500)}, id)
	assert.Len(t, g.Parts, 500)
}

func TestPartIDsAreStable(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	g := Project(&entity.CanonicalRecord{Bedrooms: ptrI(2)}, id)

	require.Len(t, g.Parts, 2)
	assert.Equal(t, fmt.Sprintf("%s_bedroom_1", id), g.Parts[0].ID)
	assert.Equal(t, fmt.Sprintf("%s_bedroom_2", id), g.Parts[1].ID)
}

func TestRootClassification(t *testing.T) {
	cases := []struct {
		propertyType string
		want         constants.BuildingClass
	}{
		{"single family house", constants.SingleFamilyHome},
		{"condominium unit", constants.MultiUnitBuilding},
		{"apartment complex", constants.MultiUnitBuilding},
		{"townhouse", constants.TownhouseBuilding},
		{"retail storefront", constants.CommercialBuilding},
		{"vacant land", constants.GenericBuilding},
		{"", constants.GenericBuilding},
		// ordered keyword list: "house" is matched before "condo",
		// first hit wins
		{"house near a condo", constants.SingleFamilyHome},
	}
	for _, tc := range cases {
		g := Project(&entity.CanonicalRecord{PropertyType: tc.propertyType}, uuid.New())
		assert.Equal(t, tc.want, g.RootClass, tc.propertyType)
	}
}

func TestAssetsOnlyForPresentTrueFlags(t *testing.T) {
	g := Project(&entity.CanonicalRecord{
		Heating:   ptrB(true),
		Cooling:   ptrB(false), // present but false emits nothing
		HasGarage: nil,
		HasPool:   ptrB(true),
	}, uuid.New())

	require.Len(t, g.Assets, 2)
	assert.Equal(t, entity.AssetHeating, g.Assets[0].Type)
	assert.Equal(t, entity.AssetPool, g.Assets[1].Type)
}

func TestAddressOmittedWhenAllFieldsAbsent(t *testing.T) {
	g := Project(&entity.CanonicalRecord{}, uuid.New())
	assert.Nil(t, g.Address)

	g = Project(&entity.CanonicalRecord{City: "Springfield"}, uuid.New())
	require.NotNil(t, g.Address)
	assert.Equal(t, "Springfield", g.Address.City)
}

func TestScalarAttachments(t *testing.T) {
	g := Project(&entity.CanonicalRecord{}, uuid.New())
	assert.Nil(t, g.Attributes.AreaSqFt)
	assert.Nil(t, g.Attributes.MonetaryValueUSD)
	assert.Nil(t, g.Attributes.ConstructionYear)

	// sale price preferred, then market value, then assessed value
	g = Project(&entity.CanonicalRecord{MarketValue: ptrF(300000), AssessedValue: ptrF(250000)}, uuid.New())
	require.NotNil(t, g.Attributes.MonetaryValueUSD)
	assert.Equal(t, 300000.0, *g.Attributes.MonetaryValueUSD)

	g = Project(&entity.CanonicalRecord{AssessedValue: ptrF(250000)}, uuid.New())
	require.NotNil(t, g.Attributes.MonetaryValueUSD)
	assert.Equal(t, 250000.0, *g.Attributes.MonetaryValueUSD)
}

func TestEmptyRecordProjectsEmptyGraph(t *testing.T) {
	id := uuid.New()
	g := Project(&entity.CanonicalRecord{}, id)

	assert.Equal(t, constants.GenericBuilding, g.RootClass)
	assert.Empty(t, g.Parts)
	assert.Empty(t, g.Assets)
	assert.Nil(t, g.Address)
}
