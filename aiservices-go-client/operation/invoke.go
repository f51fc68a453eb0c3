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

// Package operation turns typed operation options into request descriptors and dispatches them
// to a request executor. Every operation can be awaited as a Future or completed through a Callback;
// both styles share one code path.
package operation

import (
	"context"
	"net/http"

	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
)

// Executor performs the network I/O for one Descriptor. On success it decodes the body into output
// (a pointer to the operation's result type) and reports the status code and headers.
// Errors are returned to callers unchanged.
type Executor interface {
	Execute(ctx context.Context, desc *Descriptor, output interface{}) (*RawResponse, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, desc *Descriptor, output interface{}) (*RawResponse, error)

func (f ExecutorFunc) Execute(ctx context.Context, desc *Descriptor, output interface{}) (*RawResponse, error) {
	return f(ctx, desc, output)
}

// RawResponse is the transport-level part of a response.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
}

// Invoker binds an Executor to the service-wide default headers.
type Invoker struct {
	Executor Executor
	Headers  http.Header
}

// Invoke validates params, builds the request and dispatches it exactly once.
// Missing required parameters settle the returned Future immediately with a *ValidationError.
func Invoke[T any](ctx context.Context, inv *Invoker, params Params, build func() *Request) *Future[T] {
	call := params.Call()
	f := newFuture[T](call.ReturnResponse)

	if err := Validate(params.Required()); err != nil {
		f.settle(nil, err)
		return f
	}
	req := build()
	desc, err := req.Descriptor(inv.Headers, call.Headers)
	if err != nil {
		f.settle(nil, err)
		return f
	}

	svc1log.FromContext(ctx).Debug("Dispatching operation",
		svc1log.SafeParam("operationId", desc.OperationID),
		svc1log.SafeParam("method", desc.Method),
		svc1log.SafeParam("pathTemplate", desc.PathTemplate))

	go func() {
		var out T
		raw, err := inv.Executor.Execute(ctx, desc, &out)
		if err != nil {
			f.settle(nil, err)
			return
		}
		resp := &DetailedResponse[T]{Result: out}
		if raw != nil {
			resp.StatusCode = raw.StatusCode
			resp.Headers = raw.Headers
		}
		f.settle(resp, nil)
	}()
	return f
}

// InvokeWithCallback is Invoke completed through cb instead of a returned Future.
func InvokeWithCallback[T any](ctx context.Context, inv *Invoker, params Params, build func() *Request, cb Callback[T]) {
	Invoke[T](ctx, inv, params, build).Then(cb)
}
