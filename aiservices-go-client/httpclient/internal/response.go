// Copyright (c) 2024 Palantir Technologies. All rights reserved.
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

package internal

import (
	"context"
	"errors"
	"io"
	"net/http"

	werror "github.com/palantir/witchcraft-go-error"
)

// DrainBody reads then closes a response's body if it is non-nil.
// This function should be deferred before a response reference is discarded.
func DrainBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}

// StatusCodeFromError retrieves the 'statusCode' parameter from the provided werror.
// If the error is not a werror or does not have the statusCode param, ok is false.
func StatusCodeFromError(err error) (statusCode int, ok bool) {
	statusCodeI, ok := werror.ParamFromError(err, "statusCode")
	if !ok {
		return 0, false
	}
	statusCode, ok = statusCodeI.(int)
	return statusCode, ok
}

// IsThrottleResponse returns true for a 429 response, or for an error decoded from one.
func IsThrottleResponse(resp *http.Response, err error) bool {
	return statusCode(resp, err) == http.StatusTooManyRequests
}

// IsUnavailableResponse returns true for a 503 response, or for an error decoded from one.
func IsUnavailableResponse(resp *http.Response, err error) bool {
	return statusCode(resp, err) == http.StatusServiceUnavailable
}

// IsConnectionFailure returns true when no response was received and the request was not canceled.
func IsConnectionFailure(resp *http.Response, err error) bool {
	if resp != nil || err == nil {
		return false
	}
	if _, ok := StatusCodeFromError(err); ok {
		return false
	}
	cause := werror.RootCause(err)
	for _, ctxErr := range []error{context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, ctxErr) || cause == ctxErr {
			return false
		}
	}
	return true
}

func statusCode(resp *http.Response, err error) int {
	if resp != nil {
		return resp.StatusCode
	}
	code, _ := StatusCodeFromError(err)
	return code
}
