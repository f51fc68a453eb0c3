// Copyright (c) 2024 The aiservices-go Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"net/http"
)

// CallOptions are accepted by every operation. Operation option structs embed it.
type CallOptions struct {
	// Headers are sent with this call only and override service-wide and operation defaults.
	Headers http.Header
	// ReturnResponse makes Future.Await return the status code and headers along with the result.
	ReturnResponse bool
}

// Call returns the per-call options.
func (o CallOptions) Call() CallOptions {
	return o
}

// Required returns no requirements. Option structs with required fields shadow it.
func (CallOptions) Required() []Requirement {
	return nil
}

// Params is implemented by the options struct of every operation.
type Params interface {
	Call() CallOptions
	Required() []Requirement
}

// Requirement reports whether one required parameter was set.
// Presence means the field was provided, regardless of its value.
type Requirement struct {
	Name    string
	Present bool
}

// Require returns a Requirement for a pointer-valued field, which is present when non-nil.
func Require[T any](name string, v *T) Requirement {
	return Requirement{Name: name, Present: v != nil}
}

// RequireMap returns a Requirement for a map-valued field, which is present when non-nil.
func RequireMap[K comparable, V any](name string, m map[K]V) Requirement {
	return Requirement{Name: name, Present: m != nil}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns a copy of *v, or the zero value when v is nil.
func Deref[T any](v *T) T {
	var out T
	if v != nil {
		out = *v
	}
	return out
}
