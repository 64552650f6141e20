/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EncodeText flattens a value into its kind tag and a canonical text
// rendering, the form the stores persist.
func (v Value) EncodeText() (kind string, text string) {

	switch v.Kind {
	case KindString:
		return string(KindString), v.Str
	case KindBool:
		return string(KindBool), strconv.FormatBool(v.Bool)
	case KindInt:
		return string(KindInt), strconv.FormatInt(v.Int, 10)
	case KindDateTime:
		return string(KindDateTime), v.DateTime.UTC().Format(time.RFC3339Nano)
	case KindGUID:
		return string(KindGUID), v.GUID
	case KindReference:
		return string(KindReference), v.Ref
	default:
		return "", ""
	}
}

// DecodeText rebuilds a value from its persisted kind tag and text.
func DecodeText(kind, text string) (Value, error) {

	switch ValueKind(kind) {
	case KindString:
		return StringValue(text), nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid bool value %q: %w", text, err)
		}
		return BoolValue(b), nil
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid int value %q: %w", text, err)
		}
		return IntValue(i), nil
	case KindDateTime:
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid datetime value %q: %w", text, err)
		}
		return DateTimeValue(t), nil
	case KindGUID:
		return GUIDValue(text), nil
	case KindReference:
		return ReferenceValue(text), nil
	case "":
		return Value{}, nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %q", kind)
	}
}

// EncodeAttributes serializes an attribute map to JSON for persistence
// in a single column.
func EncodeAttributes(attrs map[string]Value) (string, error) {

	if attrs == nil {
		attrs = map[string]Value{}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(data), nil
}

// DecodeAttributes parses an attribute map persisted by EncodeAttributes.
func DecodeAttributes(data string) (map[string]Value, error) {

	attrs := map[string]Value{}
	if data == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	return attrs, nil
}
