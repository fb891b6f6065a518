// Package normalize turns the model's free-form JSON into a CanonicalRecord.
//
// The upstream model nests fields under named containers on some calls and
// returns them flat on others. Normalization absorbs that instead of rejecting
// it: every canonical field is resolved by trying the flat top-level key
// first, then the same key under each known grouping container, first present
// non-null value wins. Normalization never fails; fields that cannot be
// coerced are simply absent from the result.
package normalize

import (
	"encoding/json"
	"math"
	"strings"

	"propdoc/internal/entity"
)

// knownGroups are the containers the instruction template asks the model to
// use: identity/location, attributes, classification. Lookup order matters
// and must stay stable.
var knownGroups = []string{
	"basicPropertyInfo",
	"propertyDetails",
	"documentClassification",
}

// maxPlausibleCount bounds countable attributes coming from the model.
// Downstream projection emits one part entity per counted unit, so a
// hallucinated count must never reach it; values outside
// [0, maxPlausibleCount] are treated as absent, not clamped.
const maxPlausibleCount = 500

// canonicalKeys is every field name the canonical schema recognizes.
var canonicalKeys = map[string]struct{}{
	"address": {}, "city": {}, "state": {}, "zipCode": {}, "county": {},
	"squareFootage": {}, "lotSize": {}, "bedrooms": {}, "bathrooms": {},
	"yearBuilt": {}, "stories": {},
	"salePrice": {}, "assessedValue": {}, "marketValue": {}, "annualTax": {},
	"parcelNumber": {}, "legalDescription": {}, "ownerName": {},
	"saleDate": {}, "recordingDate": {},
	"condition": {}, "heating": {}, "cooling": {}, "hasGarage": {}, "hasPool": {},
	"propertyType": {}, "documentType": {}, "documentSubtype": {},
}

// NormalizeRaw decodes raw JSON bytes and normalizes them. Bytes that do not
// decode to an object yield an empty record; a decode failure of the model
// response proper is an extraction error and is caught upstream.
func NormalizeRaw(raw json.RawMessage) *entity.CanonicalRecord {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		doc = map[string]any{}
	}
	return Normalize(doc)
}

// Normalize builds a CanonicalRecord from an already-decoded JSON object.
// Pure and deterministic: the same input always yields the same record.
func Normalize(doc map[string]any) *entity.CanonicalRecord {
	r := resolver{doc: doc}
	rec := &entity.CanonicalRecord{}

	// identity / location
	rec.Address = r.str("address")
	rec.City = r.str("city")
	rec.State = r.upper("state")
	rec.ZipCode = r.str("zipCode")
	rec.County = r.str("county")

	// physical attributes
	rec.SquareFootage = r.num("squareFootage")
	rec.LotSize = r.num("lotSize")
	rec.Bedrooms = r.count("bedrooms")
	rec.Bathrooms = r.countFloat("bathrooms")
	rec.YearBuilt = r.intNum("yearBuilt")
	rec.Stories = r.count("stories")

	// financial attributes
	rec.SalePrice = r.num("salePrice")
	rec.AssessedValue = r.num("assessedValue")
	rec.MarketValue = r.num("marketValue")
	rec.AnnualTax = r.num("annualTax")

	// legal / identifier attributes
	rec.ParcelNumber = r.str("parcelNumber")
	rec.LegalDescription = r.str("legalDescription")
	rec.OwnerName = r.str("ownerName")

	// temporal attributes
	rec.SaleDate = r.str("saleDate")
	rec.RecordingDate = r.str("recordingDate")

	// condition / feature attributes
	rec.Condition = r.str("condition")
	rec.Heating = r.boolean("heating")
	rec.Cooling = r.boolean("cooling")
	rec.HasGarage = r.boolean("hasGarage")
	rec.HasPool = r.boolean("hasPool")

	// classification (categorical, lower-cased)
	rec.PropertyType = r.lower("propertyType")
	rec.DocumentType = r.lower("documentType")
	rec.DocumentSubtype = r.lower("documentSubtype")

	// overflow: top-level keys outside the canonical set, preserved verbatim
	for k, v := range doc {
		if v == nil {
			continue
		}
		if _, canonical := canonicalKeys[k]; canonical {
			continue
		}
		if isKnownGroup(k) {
			continue
		}
		if rec.Extras == nil {
			rec.Extras = make(map[string]any)
		}
		rec.Extras[k] = v
	}

	return rec
}

func isKnownGroup(key string) bool {
	for _, g := range knownGroups {
		if key == g {
			return true
		}
	}
	return false
}

// resolver implements the shape-tolerant lookup.
type resolver struct {
	doc map[string]any
}

// lookup returns the first present, non-null value for key: flat first, then
// under each known group in order.
func (r resolver) lookup(key string) (any, bool) {
	if v, ok := r.doc[key]; ok && v != nil {
		return v, true
	}
	for _, g := range knownGroups {
		if nested, ok := r.doc[g].(map[string]any); ok {
			if v, ok := nested[key]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

func (r resolver) str(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	s, ok := coerceString(v)
	if !ok {
		return ""
	}
	return s
}

func (r resolver) lower(key string) string {
	return strings.ToLower(r.str(key))
}

func (r resolver) upper(key string) string {
	return strings.ToUpper(r.str(key))
}

func (r resolver) num(key string) *float64 {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	f, ok := coerceFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func (r resolver) intNum(key string) *int {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	f, ok := coerceFloat(v)
	if !ok {
		return nil
	}
	n := int(math.Floor(f))
	return &n
}

// count resolves a countable integer attribute; implausible values are absent.
func (r resolver) count(key string) *int {
	n := r.intNum(key)
	if n == nil || *n < 0 || *n > maxPlausibleCount {
		return nil
	}
	return n
}

// countFloat resolves a countable fractional attribute (bathrooms).
func (r resolver) countFloat(key string) *float64 {
	f := r.num(key)
	if f == nil || *f < 0 || *f > maxPlausibleCount {
		return nil
	}
	return f
}

func (r resolver) boolean(key string) *bool {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	b, ok := coerceBool(v)
	if !ok {
		return nil
	}
	return &b
}
