// Package semantic derives the graph-shaped export representation from a
// canonical record. Projection is a pure function: identical inputs always
// yield an identical graph, including part and asset ordering, so repeated
// derivation for the same document is reproducible.
package semantic

import (
	"fmt"

	"github.com/google/uuid"

	"propdoc/constants"
	"propdoc/internal/entity"
)

// maxCountedParts bounds per-unit part emission. Normalization already drops
// implausible counts, but projection is a public pure function and must stay
// safe for any record handed to it: a count outside [0, maxCountedParts]
// emits no parts at all instead of allocating one entity per claimed unit.
const maxCountedParts = 500

// Project builds the SemanticGraph for one document. Enumeration order is
// fixed: bedrooms, bathrooms (plus one half part for a fractional count),
// then heating, cooling, garage, pool assets.
func Project(rec *entity.CanonicalRecord, documentID uuid.UUID) *entity.SemanticGraph {
	g := &entity.SemanticGraph{
		RootID:    partID(documentID, "building", 1),
		RootClass: constants.ClassifyProperty(rec.PropertyType),
		Parts:     []entity.GraphPart{},
		Assets:    []entity.GraphAsset{},
	}

	g.Address = projectAddress(rec)

	// countable attributes -> one part entity per unit
	if rec.Bedrooms != nil && countable(float64(*rec.Bedrooms)) {
		for i := 1; i <= *rec.Bedrooms; i++ {
			g.Parts = append(g.Parts, entity.GraphPart{
				ID:   partID(documentID, entity.PartBedroom, i),
				Kind: entity.PartBedroom,
			})
		}
	}
	if rec.Bathrooms != nil && countable(*rec.Bathrooms) {
		whole := int(*rec.Bathrooms)
		for i := 1; i <= whole; i++ {
			g.Parts = append(g.Parts, entity.GraphPart{
				ID:   partID(documentID, entity.PartBathroom, i),
				Kind: entity.PartBathroom,
			})
		}
		// a fractional remainder (e.g. 2.5 bathrooms) is one extra half
		// part, never rounded away
		if *rec.Bathrooms > float64(whole) {
			g.Parts = append(g.Parts, entity.GraphPart{
				ID:   partID(documentID, entity.PartHalfBathroom, 1),
				Kind: entity.PartHalfBathroom,
			})
		}
	}

	// feature flags -> one asset entity each; absence emits nothing
	for _, f := range []struct {
		flag *bool
		typ  string
	}{
		{rec.Heating, entity.AssetHeating},
		{rec.Cooling, entity.AssetCooling},
		{rec.HasGarage, entity.AssetParking},
		{rec.HasPool, entity.AssetPool},
	} {
		if f.flag != nil && *f.flag {
			g.Assets = append(g.Assets, entity.GraphAsset{
				ID:   partID(documentID, f.typ, 1),
				Type: f.typ,
			})
		}
	}

	// scalar attachments, only when the canonical field is present
	g.Attributes.AreaSqFt = rec.SquareFootage
	g.Attributes.ConstructionYear = rec.YearBuilt
	g.Attributes.MonetaryValueUSD = monetaryValue(rec)

	return g
}

// monetaryValue picks the single USD value attached to the root entity:
// sale price when present, else market value, else assessed value.
func monetaryValue(rec *entity.CanonicalRecord) *float64 {
	switch {
	case rec.SalePrice != nil:
		return rec.SalePrice
	case rec.MarketValue != nil:
		return rec.MarketValue
	case rec.AssessedValue != nil:
		return rec.AssessedValue
	}
	return nil
}

func projectAddress(rec *entity.CanonicalRecord) *entity.GraphAddress {
	if rec.Address == "" && rec.City == "" && rec.State == "" && rec.ZipCode == "" && rec.County == "" {
		return nil
	}
	return &entity.GraphAddress{
		Street:  rec.Address,
		City:    rec.City,
		State:   rec.State,
		ZipCode: rec.ZipCode,
		County:  rec.County,
	}
}

func countable(n float64) bool {
	return n >= 0 && n <= maxCountedParts
}

func partID(documentID uuid.UUID, kind string, index int) string {
	return fmt.Sprintf("%s_%s_%d", documentID, kind, index)
}
