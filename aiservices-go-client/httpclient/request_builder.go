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

package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-tracing/wtracing"
)

const traceIDHeaderKey = "X-B3-TraceId"

type requestBuilder struct {
	method         string
	path           string
	headers        http.Header
	query          url.Values
	bodyMiddleware *bodyMiddleware
	errorDecoder   ErrorDecoder

	configureCtx []func(context.Context) context.Context
}

// RequestParam configures a single request.
type RequestParam interface {
	apply(*requestBuilder) error
}

type requestParamFunc func(*requestBuilder) error

func (f requestParamFunc) apply(b *requestBuilder) error {
	return f(b)
}

// newRequest returns an *http.Request and the per-request Middlewares which should be
// wrapped around the client's transport while it executes.
func (c *clientImpl) newRequest(ctx context.Context, baseURL string, params ...RequestParam) (*http.Request, []Middleware, error) {
	b := &requestBuilder{
		headers:        c.initializeRequestHeaders(ctx),
		query:          make(url.Values),
		bodyMiddleware: &bodyMiddleware{bufferPool: c.bufferPool},
		errorDecoder:   c.errorDecoder,
	}

	for _, p := range params {
		if p == nil {
			continue
		}
		if err := p.apply(b); err != nil {
			return nil, nil, err
		}
	}
	for _, configure := range b.configureCtx {
		ctx = configure(ctx)
	}

	if b.method == "" {
		return nil, nil, werror.ErrorWithContextParams(ctx, "httpclient: use WithRequestMethod() to specify HTTP method")
	}

	req, err := http.NewRequestWithContext(ctx, b.method, joinURL(baseURL, b.path), nil)
	if err != nil {
		return nil, nil, werror.WrapWithContextParams(ctx, err, "failed to build new HTTP request")
	}
	req.Header = b.headers
	if q := b.query.Encode(); q != "" {
		req.URL.RawQuery = q
	}

	middlewares := append([]Middleware(nil), c.middlewares...)
	if b.errorDecoder != nil {
		middlewares = append(middlewares, errorDecoderMiddleware(b.errorDecoder))
	}
	middlewares = append(middlewares, b.bodyMiddleware, c.recoveryMiddleware)
	return req, middlewares, nil
}

func (c *clientImpl) initializeRequestHeaders(ctx context.Context) http.Header {
	headers := c.defaultHeaders.Clone()
	if headers == nil {
		headers = make(http.Header)
	}
	if !c.disableTraceHeaderPropagation {
		if traceID := wtracing.TraceIDFromContext(ctx); traceID != "" {
			headers.Set(traceIDHeaderKey, string(traceID))
		}
	}
	return headers
}

// joinURL appends path to baseURL, which may itself carry a path prefix.
func joinURL(baseURL, path string) string {
	if path == "" {
		return baseURL
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
