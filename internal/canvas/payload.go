/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// MoveMarker tags payloads produced by the surface's own drags.
const MoveMarker = "move"

// ErrMalformedPayload is returned for transfer data that is not a palette descriptor.
var ErrMalformedPayload = errors.New("canvas: malformed drop payload")

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "defaultProps": {"type": ["object", "null"]}
  }
}`

var payloadLoader = gojsonschema.NewStringLoader(payloadSchema)

// Payload is the transfer data of a palette drag.
type Payload struct {
	Type         string         `json:"type"`
	DefaultProps map[string]any `json:"defaultProps,omitempty"`
}

// IsMove reports whether p is an internal reposition marker.
func (p Payload) IsMove() bool { return p.Type == MoveMarker }

// EncodePayload renders the transfer text for a palette entry.
func EncodePayload(typ string, defaults map[string]any) ([]byte, error) {
	return json.Marshal(Payload{Type: typ, DefaultProps: defaults})
}

// ParsePayload validates and decodes transfer text.
func ParsePayload(raw []byte) (Payload, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Payload{}, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}
	res, err := gojsonschema.Validate(payloadLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Payload{}, fmt.Errorf("%w: %s", ErrMalformedPayload, strings.Join(msgs, "; "))
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return p, nil
}
