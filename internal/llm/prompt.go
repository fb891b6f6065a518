package llm

import "strings"

// BuildSystemPrompt composes the fixed extraction instruction. The field list,
// grouping containers and formatting rules must stay stable between calls for
// the same pipeline version: the normalizer's key-resolution order assumes the
// grouping structure requested here.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a real estate document analyzer. Return ONLY a JSON object, no prose.",
		"Group fields under these containers when possible: 'basicPropertyInfo' (identity/location), 'propertyDetails' (physical, financial, legal, temporal, condition/feature), 'documentClassification' (classification). Flat top-level keys are also acceptable.",

		// identity / location
		"Identity and location fields: address, city, state, zipCode, county.",

		// physical
		"Physical fields: squareFootage, lotSize, bedrooms, bathrooms, yearBuilt, stories.",

		// financial
		"Financial fields: salePrice, assessedValue, marketValue, annualTax. All amounts in USD.",

		// legal / identifiers
		"Legal fields: parcelNumber, legalDescription, ownerName.",

		// temporal
		"Temporal fields: saleDate, recordingDate.",

		// condition / features
		"Condition and feature fields: condition, heating, cooling, hasGarage, hasPool.",

		// classification
		"Classification fields: propertyType, documentType, documentSubtype.",

		// formatting rules
		"Numbers must be unitless (no '$', 'sq ft', commas).",
		"Booleans must be true or false.",
		"Dates must use YYYY-MM-DD.",
		"State codes must be 2-letter uppercase.",
		"propertyType, documentType and documentSubtype must be lowercase.",
		"Never output null. If a field is not present in the document, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document label with the windowed text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if label := strings.TrimSpace(req.DocumentLabel); label != "" {
		b.WriteString("Document name: ")
		b.WriteString(label)
		b.WriteString("\n")
	}
	b.WriteString("\nDocument text:\n")
	b.WriteString(req.Text)
	b.WriteString("\n\nReturn ONLY the JSON object described by the instructions.")
	return b.String()
}
