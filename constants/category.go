package constants

import "strings"

// BuildingClass is the coarse root-entity classification of the semantic graph.
type BuildingClass string

const (
	SingleFamilyHome   BuildingClass = "SingleFamilyHome"
	MultiUnitBuilding  BuildingClass = "MultiUnitBuilding"
	TownhouseBuilding  BuildingClass = "TownhouseBuilding"
	CommercialBuilding BuildingClass = "CommercialBuilding"
	GenericBuilding    BuildingClass = "GenericBuilding"
)

// classKeyword pairs a substring with the class it selects.
type classKeyword struct {
	token string
	class BuildingClass
}

// classKeywords is matched in order against the lower-cased property type;
// the FIRST hit wins. The ordering is a deliberate tie-break and must stay
// stable so repeated projections of the same record agree.
var classKeywords = []classKeyword{
	// "townhouse" must precede "house"
	{"townhouse", TownhouseBuilding},
	{"townhome", TownhouseBuilding},
	{"house", SingleFamilyHome},
	{"family", SingleFamilyHome},
	{"residential", SingleFamilyHome},
	{"condo", MultiUnitBuilding},
	{"apartment", MultiUnitBuilding},
	{"multi", MultiUnitBuilding},
	{"duplex", MultiUnitBuilding},
	{"commercial", CommercialBuilding},
	{"office", CommercialBuilding},
	{"retail", CommercialBuilding},
}

// ClassifyProperty maps a free-form property type string to a BuildingClass.
// Empty or unmatched input yields GenericBuilding.
func ClassifyProperty(propertyType string) BuildingClass {
	s := strings.ToLower(strings.TrimSpace(propertyType))
	if s == "" {
		return GenericBuilding
	}
	for _, kw := range classKeywords {
		if strings.Contains(s, kw.token) {
			return kw.class
		}
	}
	return GenericBuilding
}
