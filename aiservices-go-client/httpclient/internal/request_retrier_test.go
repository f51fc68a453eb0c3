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
	"fmt"
	"net/http"
	"testing"

	"github.com/palantir/pkg/retry"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ retry.Retrier = &mockRetrier{}

type mockRetrier struct {
	nextCalls int
}

func (m *mockRetrier) Reset() {}

func (m *mockRetrier) Next() bool {
	m.nextCalls++
	return true
}

func (m *mockRetrier) CurrentAttempt() int {
	return m.nextCalls
}

func TestRequestRetrier_FirstAttemptAlwaysGranted(t *testing.T) {
	mock := &mockRetrier{}
	r := NewRequestRetrier(mock, 0)
	require.True(t, r.Next(nil, nil))
	require.False(t, r.Next(&http.Response{StatusCode: http.StatusServiceUnavailable}, nil))
	assert.Equal(t, 1, mock.nextCalls)
	assert.Equal(t, 2, r.AttemptCount())
}

func TestRequestRetrier_RetriesUpToMaxAttempts(t *testing.T) {
	mock := &mockRetrier{}
	r := NewRequestRetrier(mock, 3)
	throttled := werror.Error("server returned an error", werror.SafeParam("statusCode", 429))
	require.True(t, r.Next(nil, nil))
	require.True(t, r.Next(nil, throttled))
	require.True(t, r.Next(nil, throttled))
	require.False(t, r.Next(nil, throttled))
	assert.Equal(t, 3, mock.nextCalls)
}

func TestRequestRetrier_StopsOnNonRetryable(t *testing.T) {
	for _, test := range []struct {
		Name string
		Resp *http.Response
		Err  error
	}{
		{Name: "success", Resp: &http.Response{StatusCode: http.StatusOK}},
		{Name: "bad request", Err: werror.Error("bad", werror.SafeParam("statusCode", 400))},
		{Name: "internal error", Err: werror.Error("boom", werror.SafeParam("statusCode", 500))},
		{Name: "canceled", Err: werror.Wrap(context.Canceled, "request failed")},
	} {
		t.Run(test.Name, func(t *testing.T) {
			r := NewRequestRetrier(&mockRetrier{}, 5)
			require.True(t, r.Next(nil, nil))
			assert.False(t, r.Next(test.Resp, test.Err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Resp     *http.Response
		Err      error
		Expected bool
	}{
		{Name: "429 response", Resp: &http.Response{StatusCode: 429}, Expected: true},
		{Name: "503 response", Resp: &http.Response{StatusCode: 503}, Expected: true},
		{Name: "502 response", Resp: &http.Response{StatusCode: 502}, Expected: false},
		{Name: "503 error", Err: werror.Error("unavailable", werror.SafeParam("statusCode", 503)), Expected: true},
		{Name: "connection refused", Err: fmt.Errorf("dial tcp: connection refused"), Expected: true},
		{Name: "deadline", Err: werror.Wrap(context.DeadlineExceeded, "request failed"), Expected: false},
		{Name: "nothing", Expected: false},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Expected, ShouldRetry(test.Resp, test.Err))
		})
	}
}

func TestStatusCodeFromError(t *testing.T) {
	code, ok := StatusCodeFromError(werror.Wrap(werror.Error("not found", werror.SafeParam("statusCode", 404)), "outer"))
	assert.True(t, ok)
	assert.Equal(t, 404, code)

	_, ok = StatusCodeFromError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
