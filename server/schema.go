package server

import (
	"fmt"
	"strings"

	"github.com/findy-network/findy-custodian/core"
	"github.com/xeipuuv/gojsonschema"
)

const definitions = `
"definitions": {
  "stringList": {
    "type": "array",
    "items": {"type": "string"}
  },
  "proof": {
    "type": "object",
    "required": ["type", "proofPurpose", "verificationMethod", "jws"],
    "properties": {
      "type": {"type": "string"},
      "created": {"type": "string", "format": "date-time"},
      "proofPurpose": {"type": "string"},
      "verificationMethod": {"type": "string"},
      "jws": {"type": "string"}
    }
  },
  "credential": {
    "type": "object",
    "required": ["@context", "type", "issuer", "credentialSubject"],
    "properties": {
      "@context": {"type": "array", "items": {"type": "string"}, "minItems": 1},
      "id": {"type": "string"},
      "type": {"type": "array", "items": {"type": "string"}, "minItems": 1},
      "issuer": {"type": "string", "minLength": 1},
      "issuanceDate": {"type": "string", "format": "date-time"},
      "expirationDate": {"type": "string", "format": "date-time"},
      "credentialSubject": {"type": "object"},
      "proof": {"$ref": "#/definitions/proof"}
    }
  }
}`

// The issue request checks only the value types. Missing fields are domain
// errors reported by the issuer.
var (
	credentialSchema = mustSchema(`{
  "allOf": [{"$ref": "#/definitions/credential"}],
  ` + definitions + `
}`)

	issueRequestSchema = mustSchema(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "@context": {"$ref": "#/definitions/stringList"},
    "type": {"$ref": "#/definitions/stringList"},
    "issuerIdentifier": {"type": "string"},
    "holderIdentifier": {"type": "string"},
    "issuanceDate": {"type": "string", "format": "date-time"},
    "expirationDate": {"type": "string", "format": "date-time"},
    "credentialSubject": {"type": "object"}
  },
  ` + definitions + `
}`)

	presentationRequestSchema = mustSchema(`{
  "type": "object",
  "required": ["holderIdentifier", "verifiableCredentials"],
  "properties": {
    "holderIdentifier": {"type": "string", "minLength": 1},
    "verifiableCredentials": {
      "type": "array",
      "items": {"$ref": "#/definitions/credential"}
    }
  },
  ` + definitions + `
}`)

	presentationSchema = mustSchema(`{
  "type": "object",
  "required": ["@context", "type", "verifiableCredential", "proof"],
  "properties": {
    "@context": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "id": {"type": "string"},
    "type": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "holder": {"type": "string"},
    "verifiableCredential": {
      "type": "array",
      "items": {"$ref": "#/definitions/credential"}
    },
    "proof": {"$ref": "#/definitions/proof"}
  },
  ` + definitions + `
}`)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %v", err))
	}
	return schema
}

// validate checks the body against the schema and returns a
// SyntacticallyInvalid error listing the violations.
func validate(op string, schema *gojsonschema.Schema, data []byte, what string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return core.SyntaxErr(op, "%s is not valid JSON", what)
	}
	if !result.Valid() {
		return core.SyntaxErr(op, "%s", describeSchemaErrors(result, what))
	}
	return nil
}

func describeSchemaErrors(result *gojsonschema.Result, what string) string {
	var b strings.Builder
	b.WriteString(what)
	b.WriteString(" is not valid:")
	for _, desc := range result.Errors() {
		b.WriteString(" ")
		b.WriteString(desc.String())
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}
