package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const buyerSchema = `{
	"type": "object",
	"required": ["purchasePrice"],
	"properties": {
		"purchasePrice":  {"type": "number", "exclusiveMinimum": 0},
		"loanTermYears":  {"type": "integer"},
		"interestRate":   {"type": "number", "minimum": 0},
		"propertyTax":    {"type": "number", "minimum": 0},
		"homeInsurance":  {"type": "number", "minimum": 0},
		"floodInsurance": {"type": "number", "minimum": 0}
	}
}`

var (
	quoteSchema = mustSchema(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["buyer", "downPayment"],
		"properties": {
			"buyer": ` + buyerSchema + `,
			"downPayment":      {"type": "number", "minimum": 0, "maximum": 100},
			"sellerConcession": {"type": "number", "minimum": 0, "exclusiveMaximum": 100}
		}
	}`)

	evaluateSchema = mustSchema(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["buyer", "formula", "units"],
		"properties": {
			"buyer": ` + buyerSchema + `,
			"formula": {"type": "string", "minLength": 1},
			"units":   {"type": "integer"},
			"downPaymentOverride": {"type": "number", "minimum": 0, "maximum": 1}
		}
	}`)

	evaluateAllSchema = mustSchema(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["buyer", "units"],
		"properties": {
			"buyer": ` + buyerSchema + `,
			"units": {"type": "integer"}
		}
	}`)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// validateBody checks a raw JSON body against schema.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
