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

// Package row coerces the untyped column values returned by the
// database client into the scalar types the stores expect. Drivers
// return text columns as either string or []byte depending on the
// query path, so every store goes through these helpers.
package row

import "time"

// String returns the column as a string, tolerating []byte and NULL.
func String(v interface{}) string {

	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

// Bool returns the column as a bool; NULL yields false.
func Bool(v interface{}) bool {

	b, ok := v.(bool)
	return ok && b
}

// Int64 returns the column as an int64; NULL yields zero.
func Int64(v interface{}) int64 {

	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// Int returns the column as an int; NULL yields zero.
func Int(v interface{}) int {

	return int(Int64(v))
}

// Time returns the column as a time.Time; NULL yields the zero time.
func Time(v interface{}) time.Time {

	t, _ := v.(time.Time)
	return t
}

// TimePtr returns the column as a *time.Time; NULL yields nil.
func TimePtr(v interface{}) *time.Time {

	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}
