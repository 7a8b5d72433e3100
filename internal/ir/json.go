/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ir

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// The JSON form is for inspection and debugging. It is not stable across
// versions but must round-trip (document -> JSON -> document is identity)
// within one version.

// MarshalDocument encodes a document as indented JSON.
func MarshalDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalDocument decodes and schema-checks the JSON form.
func UnmarshalDocument(data []byte) (Document, error) {
	if err := ValidateJSON(data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("ir: decode: %w", err)
	}
	return doc, nil
}

// documentSchema describes the serialized document shape. Event kind and
// the matching variant key must agree; rationals are "n" or "n/d" strings.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["lines"],
  "properties": {
    "lines": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "events": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["kind"],
              "properties": {
                "kind": {"enum": ["note", "rest", "attributes", "barline", "direction"]},
                "note": {
                  "type": "object",
                  "required": ["pitch", "duration"],
                  "properties": {
                    "pitch": {
                      "type": "object",
                      "required": ["step", "alter", "octave"],
                      "properties": {
                        "step": {"type": "integer", "minimum": 0, "maximum": 6},
                        "alter": {"$ref": "#/definitions/rational"},
                        "octave": {"type": "integer"}
                      }
                    },
                    "duration": {"$ref": "#/definitions/rational"},
                    "tie": {"type": "boolean"},
                    "voice": {"type": "integer"}
                  }
                },
                "rest": {
                  "type": "object",
                  "required": ["duration"],
                  "properties": {"duration": {"$ref": "#/definitions/rational"}}
                },
                "attributes": {"type": "object"},
                "barline": {"type": "object"},
                "direction": {
                  "type": "object",
                  "required": ["text"],
                  "properties": {"text": {"type": "string"}}
                }
              }
            }
          }
        }
      }
    }
  },
  "definitions": {
    "rational": {"type": "string", "pattern": "^-?[0-9]+(/[0-9]+)?$"}
  }
}`

// ValidateJSON checks serialized IR against the document schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("ir: schema validation: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("ir: invalid document JSON: %s (%d problems)", first, len(result.Errors()))
	}
	return nil
}
