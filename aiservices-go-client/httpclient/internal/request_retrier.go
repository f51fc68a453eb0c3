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
	"net/http"

	"github.com/palantir/pkg/retry"
)

// RequestRetrier manages the attempts of a single request. Only throttled (429) and
// unavailable (503) responses and connection failures are retried; everything else,
// including success, ends the loop after the attempt that produced it.
type RequestRetrier struct {
	retrier retry.Retrier

	maxAttempts  int
	attemptCount int
}

// NewRequestRetrier creates a new request retrier. maxAttempts counts the first attempt,
// so a value of 1 disables retries. Values below 1 are treated as 1.
func NewRequestRetrier(retrier retry.Retrier, maxAttempts int) *RequestRetrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RequestRetrier{
		retrier:     retrier,
		maxAttempts: maxAttempts,
	}
}

// Next returns true if another attempt should be made given the outcome of the previous one.
// The first call always returns true unless the retrier's context is done. If a retry is
// granted, Next blocks for the backoff interval before returning.
func (r *RequestRetrier) Next(prevResp *http.Response, prevErr error) bool {
	defer func() { r.attemptCount++ }()
	if r.attemptCount == 0 {
		return r.retrier.Next()
	}
	if !ShouldRetry(prevResp, prevErr) {
		return false
	}
	if r.attemptCount >= r.maxAttempts {
		return false
	}
	return r.retrier.Next()
}

// AttemptCount returns the number of attempts granted so far.
func (r *RequestRetrier) AttemptCount() int {
	return r.attemptCount
}

// ShouldRetry classifies the outcome of one attempt.
func ShouldRetry(resp *http.Response, err error) bool {
	return IsThrottleResponse(resp, err) || IsUnavailableResponse(resp, err) || IsConnectionFailure(resp, err)
}
