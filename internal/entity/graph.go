package entity

import "propdoc/constants"

// SemanticGraph is the derived graph-shaped projection of a CanonicalRecord,
// used for interoperability export. Built once per document, immutable, and
// fully deterministic: identifiers derive from the owning document id plus a
// stable per-part index.
type SemanticGraph struct {
	RootID     string                  `json:"rootId"`
	RootClass  constants.BuildingClass `json:"rootClass"`
	Address    *GraphAddress           `json:"address,omitempty"`
	Parts      []GraphPart             `json:"parts"`
	Assets     []GraphAsset            `json:"assets"`
	Attributes GraphAttributes         `json:"attributes"`
}

// GraphAddress mirrors whichever canonical address fields were present.
type GraphAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	County  string `json:"county,omitempty"`
}

// GraphPart is one derived sub-entity, e.g. a single bedroom.
type GraphPart struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// Part kinds emitted by the projector, in enumeration order.
const (
	PartBedroom      = "bedroom"
	PartBathroom     = "bathroom"
	PartHalfBathroom = "half_bathroom"
)

// GraphAsset is one derived equipment/feature entity.
type GraphAsset struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Asset types emitted by the projector.
const (
	AssetHeating = "heating_system"
	AssetCooling = "cooling_system"
	AssetParking = "parking_space"
	AssetPool    = "swimming_pool"
)

// GraphAttributes carries scalar value attachments. Monetary value is USD.
type GraphAttributes struct {
	AreaSqFt         *float64 `json:"areaSqFt,omitempty"`
	MonetaryValueUSD *float64 `json:"monetaryValueUsd,omitempty"`
	ConstructionYear *int     `json:"constructionYear,omitempty"`
}
