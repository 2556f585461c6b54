/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import "encoding/json"

// Props is the typed configuration of a component, one variant per widget tag.
type Props interface {
	Tag() string
	CloneProps() Props
}

// Unknown carries the opaque configuration of a tag with no registered widget.
type Unknown struct {
	Type string
	Raw  map[string]any
}

func (u Unknown) Tag() string { return u.Type }

func (u Unknown) CloneProps() Props {
	return Unknown{Type: u.Type, Raw: CloneMap(u.Raw)}
}

// Extras holds configuration keys that fall outside a typed props variant. Typed
// variants embed it so such keys are written back on save.
type Extras struct {
	Extra map[string]any `json:"-"`
}

func (e Extras) ExtraKeys() map[string]any { return e.Extra }

func (e *Extras) SetExtra(m map[string]any) { e.Extra = m }

// Clone deep-copies the extra keys.
func (e Extras) Clone() Extras { return Extras{Extra: CloneMap(e.Extra)} }

// PropsCodec converts between the open map stored on disk and typed props.
type PropsCodec interface {
	DecodeProps(tag string, raw map[string]any) Props
	EncodeProps(p Props) map[string]any
}

// RawCodec keeps every configuration as Unknown. It is used where no widget registry
// is available, e.g. by tooling that only inspects structure.
type RawCodec struct{}

func (RawCodec) DecodeProps(tag string, raw map[string]any) Props {
	return Unknown{Type: tag, Raw: CloneMap(raw)}
}

func (RawCodec) EncodeProps(p Props) map[string]any { return EncodeJSON(p) }

// EncodeJSON flattens typed props into a map through their JSON form.
func EncodeJSON(p Props) map[string]any {
	switch v := p.(type) {
	case nil:
		return map[string]any{}
	case Unknown:
		if v.Raw == nil {
			return map[string]any{}
		}
		return CloneMap(v.Raw)
	case *Unknown:
		if v == nil || v.Raw == nil {
			return map[string]any{}
		}
		return CloneMap(v.Raw)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{}
	}
	if x, ok := p.(interface{ ExtraKeys() map[string]any }); ok {
		for k, v := range x.ExtraKeys() {
			if _, typed := out[k]; !typed {
				out[k] = cloneValue(v)
			}
		}
	}
	return out
}

// DecodeJSON fills dst from a raw map through its JSON form.
func DecodeJSON(raw map[string]any, dst any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// MergeProps shallow-merges patch over the encoded form of p and decodes the result
// with codec. A nil value in patch removes the key.
func MergeProps(codec PropsCodec, tag string, p Props, patch map[string]any) Props {
	base := codec.EncodeProps(p)
	for k, v := range patch {
		if v == nil {
			delete(base, k)
			continue
		}
		base[k] = cloneValue(v)
	}
	return codec.DecodeProps(tag, base)
}

// CloneMap deep-copies a JSON-like map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
