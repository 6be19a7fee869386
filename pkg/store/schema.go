package store

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

const sizesSchema = `{
	"type": "array",
	"minItems": 2,
	"maxItems": 32,
	"items": {"type": "number", "minimum": 0, "maximum": 100}
}`

// putRequestSchema validates the body of a layout PUT.
var putRequestSchema = gojsonschema.NewStringLoader(`{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["sizes"],
	"additionalProperties": false,
	"properties": {
		"sizes": ` + sizesSchema + `,
		"revision": {"type": "string", "maxLength": 64}
	}
}`)

// documentSchema validates an exported board layout.
var documentSchema = gojsonschema.NewStringLoader(`{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["topology", "groups"],
	"properties": {
		"topology": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9-]*$", "maxLength": 64},
		"groups": {
			"type": "object",
			"minProperties": 1,
			"propertyNames": {"pattern": "^[A-Za-z][A-Za-z0-9-]*$"},
			"additionalProperties": ` + sizesSchema + `
		}
	}
}`)

// Document is the exchange format of a whole board: every group vector of
// one topology.
//
//	{"topology": "four-grid", "groups": {"rows": [40, 60], "row-1": [50, 50]}}
type Document struct {
	Topology string                       `json:"topology"`
	Groups   map[string]proportion.Vector `json:"groups"`
}

// Records expands the document into one record per group.
func (d *Document) Records() []*Record {
	out := make([]*Record, 0, len(d.Groups))
	for g, v := range d.Groups {
		out = append(out, &Record{Topology: d.Topology, Group: g, Sizes: v.Clone()})
	}
	return out
}

// ParsePutRequest validates data against the PUT body schema and decodes it.
func ParsePutRequest(data []byte) (*PutRequest, error) {
	if err := validate(putRequestSchema, data); err != nil {
		return nil, err
	}
	var req PutRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	if err := proportion.Vector(req.Sizes).Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// ParseDocument validates data against the document schema and decodes it.
// Every group vector must also satisfy the sum invariant.
func ParseDocument(data []byte) (*Document, error) {
	if err := validate(documentSchema, data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}
	for g, v := range doc.Groups {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProportions, err, "group %s", g)
		}
	}
	return &doc, nil
}

func validate(schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}
