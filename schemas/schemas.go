// Package schemas embeds the JSON Schemas for files modeval reads.
package schemas

import _ "embed"

// RecordSchemaJSON is the schema for one measurement record file.
//
//go:embed record.schema.json
var RecordSchemaJSON string
