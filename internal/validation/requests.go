package validation

import (
	"encoding/json"
	"math"

	"github.com/hyperengineering/searchbridge/internal/dsl"
	"github.com/hyperengineering/searchbridge/internal/remote"
	"github.com/hyperengineering/searchbridge/internal/types"
)

// MaxFieldLength bounds term field names.
const MaxFieldLength = 1024

// ValidateTermRequest checks the shape of a term request. Literal parsing
// is left to the compiler.
func ValidateTermRequest(req types.TermRequest) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("field", req.Field))
	c.Add(ValidateUTF8("field", req.Field))
	c.Add(ValidateNoNullBytes("field", req.Field))
	c.Add(ValidateMaxLength("field", req.Field, MaxFieldLength))

	if _, err := dsl.ParseKind(req.Type); err != nil {
		names := make([]string, 0, len(dsl.Kinds()))
		for _, k := range dsl.Kinds() {
			names = append(names, k.String())
		}
		c.Add(ValidateEnum("type", req.Type, names))
	}

	if len(req.Value) == 0 || string(req.Value) == "null" {
		c.Add(&ValidationError{Field: "value", Message: "is required"})
	} else if !json.Valid(req.Value) {
		c.Add(&ValidationError{Field: "value", Message: "must be a JSON string, number or boolean"})
	} else if first := req.Value[0]; first == '{' || first == '[' {
		c.Add(&ValidationError{Field: "value", Message: "must be a JSON string, number or boolean"})
	}

	if req.Boost != nil && math.IsNaN(float64(*req.Boost)) {
		c.Add(&ValidationError{Field: "boost", Message: "must be a number"})
	}
	return c.Errors()
}

// ValidateCreateExtensionRequest checks an extension create request.
func ValidateCreateExtensionRequest(req types.CreateExtensionRequest) []ValidationError {
	var c Collector
	c.Add(ValidateIdentifier("name", req.Name))
	c.Add(ValidateMaxLength("version", req.Version, 64))
	return c.Errors()
}

// ValidateCreateSchemaRequest checks a schema create request.
func ValidateCreateSchemaRequest(req types.CreateSchemaRequest) []ValidationError {
	var c Collector
	c.Add(ValidateIdentifier("name", req.Name))
	return c.Errors()
}

// ValidateCreateTableRequest checks a table create request.
func ValidateCreateTableRequest(req types.CreateTableRequest) []ValidationError {
	var c Collector
	c.Add(ValidateIdentifier("schema", req.Schema))
	c.Add(ValidateIdentifier("name", req.Name))
	return c.Errors()
}

// ValidateCreateIndexRequest checks an index create request. A url option,
// when present, must be an http(s) URL.
func ValidateCreateIndexRequest(req types.CreateIndexRequest) []ValidationError {
	var c Collector
	c.Add(ValidateIdentifier("schema", req.Schema))
	c.Add(ValidateIdentifier("table", req.Table))
	c.Add(ValidateIdentifier("name", req.Name))
	c.Add(ValidateIdentifier("access_method", req.AccessMethod))
	if u, ok := req.Options[remote.URLOption]; ok {
		c.Add(ValidateHTTPURL("options.url", u))
	}
	return c.Errors()
}
