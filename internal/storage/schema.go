/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument marks a stored document that does not match DocumentSchema.
var ErrInvalidDocument = errors.New("storage: document does not match schema")

// DocumentSchema describes the persisted document record.
const DocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {"type": "array", "items": {"$ref": "#/definitions/page"}},
    "activePageId": {"type": "string"}
  },
  "definitions": {
    "page": {
      "type": "object",
      "required": ["id", "components"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "components": {"type": "array", "items": {"$ref": "#/definitions/component"}},
        "background": {"type": "string"},
        "gridEnabled": {"type": "boolean"},
        "gridSize": {"type": "integer", "minimum": 0}
      }
    },
    "component": {
      "type": "object",
      "required": ["id", "type", "x", "y"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"type": "string", "minLength": 1},
        "x": {"type": "number"},
        "y": {"type": "number"},
        "width": {"type": "number", "minimum": 0},
        "height": {"type": "number", "minimum": 0},
        "props": {"type": ["object", "null"]},
        "children": {"type": "array", "items": {"$ref": "#/definitions/component"}}
      }
    }
  }
}`

var documentSchema = mustSchema(DocumentSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("storage: bad schema: %v", err))
	}
	return s
}

// ValidateDocument checks raw JSON against DocumentSchema.
func ValidateDocument(data []byte) error {
	res, err := documentSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}
