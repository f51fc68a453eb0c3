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
	"context"
	"net/http"
	"sync"
)

// DetailedResponse is the envelope of a completed call.
type DetailedResponse[T any] struct {
	StatusCode int
	Headers    http.Header
	Result     T
}

// Callback receives the outcome of a call. On failure err is non-nil, result is the zero value
// and response is nil.
type Callback[T any] func(err error, result T, response *DetailedResponse[T])

// Future is a deferred call outcome, settled exactly once.
type Future[T any] struct {
	done           chan struct{}
	once           sync.Once
	returnResponse bool

	response *DetailedResponse[T]
	err      error
}

func newFuture[T any](returnResponse bool) *Future[T] {
	return &Future[T]{
		done:           make(chan struct{}),
		returnResponse: returnResponse,
	}
}

func (f *Future[T]) settle(response *DetailedResponse[T], err error) {
	f.once.Do(func() {
		f.response = response
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the call completes or ctx is done. Unless the call set ReturnResponse,
// the returned envelope carries only Result.
// A settled future yields its outcome even when ctx is already done.
func (f *Future[T]) Await(ctx context.Context) (*DetailedResponse[T], error) {
	select {
	case <-f.done:
	default:
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.returnResponse {
		return f.response, nil
	}
	return &DetailedResponse[T]{Result: f.response.Result}, nil
}

// Result blocks like Await and returns only the result.
func (f *Future[T]) Result(ctx context.Context) (T, error) {
	resp, err := f.Await(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Result, nil
}

// Then invokes cb once the future settles. If it already has, cb runs before Then returns.
func (f *Future[T]) Then(cb Callback[T]) {
	select {
	case <-f.done:
		f.complete(cb)
		return
	default:
	}
	go func() {
		<-f.done
		f.complete(cb)
	}()
}

func (f *Future[T]) complete(cb Callback[T]) {
	if f.err != nil {
		var zero T
		cb(f.err, zero, nil)
		return
	}
	cb(nil, f.response.Result, f.response)
}
