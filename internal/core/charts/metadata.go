package charts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// publishMetadataSchema constrains only the keys read for embedding. The rest
// of the metadata document belongs to the chart editor and is left alone.
const publishMetadataSchema = `{
	"type": "object",
	"properties": {
		"publish": {
			"type": "object",
			"properties": {
				"embed-width": {"type": "number", "minimum": 0},
				"embed-height": {"type": "number", "minimum": 0},
				"embed-codes": {
					"type": "object",
					"additionalProperties": {"type": "string"}
				}
			}
		}
	}
}`

var metadataSchema = mustCompileSchema(publishMetadataSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("charts: invalid metadata schema: %v", err))
	}
	return schema
}

// ParseMetadata validates and decodes a stored metadata document.
// An empty or null document yields zero Metadata.
func ParseMetadata(raw []byte) (Metadata, error) {
	var meta Metadata

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return meta, nil
	}

	result, err := metadataSchema.Validate(gojsonschema.NewBytesLoader(trimmed))
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return meta, fmt.Errorf("%w: %s", ErrInvalidMetadata, strings.Join(problems, "; "))
	}

	if err := json.Unmarshal(trimmed, &meta); err != nil {
		return meta, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	return meta, nil
}
