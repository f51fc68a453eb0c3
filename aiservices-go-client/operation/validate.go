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
	"errors"
	"strings"

	wparams "github.com/palantir/witchcraft-go-params"
)

// ValidationError is returned when required parameters are missing. It is produced before
// any request is built, so the request executor never sees the call.
type ValidationError struct {
	Missing []string
}

var _ wparams.ParamStorer = (*ValidationError)(nil)

func (e *ValidationError) Error() string {
	return "Missing required parameters: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) SafeParams() map[string]interface{} {
	return map[string]interface{}{"missingParams": e.Missing}
}

func (e *ValidationError) UnsafeParams() map[string]interface{} {
	return nil
}

// IsValidationError returns true if err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Validate returns a *ValidationError naming every requirement that is not present, or nil.
func Validate(reqs []Requirement) error {
	var missing []string
	for _, r := range reqs {
		if !r.Present {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing}
}
