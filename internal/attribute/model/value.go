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
	"fmt"
	"strings"
	"time"
)

// ValueKind identifies which variant of a Value is populated.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindBool      ValueKind = "bool"
	KindInt       ValueKind = "int"
	KindDateTime  ValueKind = "datetime"
	KindGUID      ValueKind = "guid"
	KindReference ValueKind = "reference"
)

// Value is a typed attribute value. Exactly one variant is populated,
// selected by Kind. Reference values carry the external identifier of
// the object they point at.
type Value struct {
	Kind     ValueKind `json:"kind"`
	Str      string    `json:"str,omitempty"`
	Bool     bool      `json:"bool,omitempty"`
	Int      int64     `json:"int,omitempty"`
	DateTime time.Time `json:"datetime,omitempty"`
	GUID     string    `json:"guid,omitempty"`
	Ref      string    `json:"ref,omitempty"`
}

// StringValue creates a string Value.
func StringValue(s string) Value {

	return Value{Kind: KindString, Str: s}
}

// BoolValue creates a bool Value.
func BoolValue(b bool) Value {

	return Value{Kind: KindBool, Bool: b}
}

// IntValue creates an integer Value.
func IntValue(i int64) Value {

	return Value{Kind: KindInt, Int: i}
}

// DateTimeValue creates a datetime Value.
func DateTimeValue(t time.Time) Value {

	return Value{Kind: KindDateTime, DateTime: t.UTC()}
}

// GUIDValue creates a guid Value.
func GUIDValue(g string) Value {

	return Value{Kind: KindGUID, GUID: g}
}

// ReferenceValue creates a reference Value pointing at the object with
// the given external identifier.
func ReferenceValue(externalID string) Value {

	return Value{Kind: KindReference, Ref: externalID}
}

// IsZero reports whether the value is the absent value.
func (v Value) IsZero() bool {

	return v.Kind == ""
}

// Equal compares two values. Values of different kinds never compare
// equal. String and guid comparisons fold case when caseSensitive is
// false; guid comparison is case-insensitive by convention unless the
// caller asks otherwise.
func (v Value) Equal(other Value, caseSensitive bool) bool {

	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		if caseSensitive {
			return v.Str == other.Str
		}
		return strings.EqualFold(v.Str, other.Str)
	case KindBool:
		return v.Bool == other.Bool
	case KindInt:
		return v.Int == other.Int
	case KindDateTime:
		return v.DateTime.Equal(other.DateTime)
	case KindGUID:
		if caseSensitive {
			return v.GUID == other.GUID
		}
		return strings.EqualFold(v.GUID, other.GUID)
	case KindReference:
		return v.Ref == other.Ref
	default:
		return false
	}
}

// Raw returns the populated variant as an untyped value, mainly for
// logging and persistence.
func (v Value) Raw() interface{} {

	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindDateTime:
		return v.DateTime
	case KindGUID:
		return v.GUID
	case KindReference:
		return v.Ref
	default:
		return nil
	}
}

// String renders the value for diagnostics.
func (v Value) String() string {

	if v.IsZero() {
		return "<absent>"
	}
	return fmt.Sprintf("%s(%v)", v.Kind, v.Raw())
}
