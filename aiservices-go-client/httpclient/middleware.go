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
	"net/http"
)

// A Middleware wraps an http.RoundTripper. It may modify the request before calling next
// and may inspect or replace the response or error it returns.
type Middleware interface {
	RoundTrip(req *http.Request, next http.RoundTripper) (*http.Response, error)
}

// MiddlewareFunc is a convenience type alias that implements Middleware.
type MiddlewareFunc func(req *http.Request, next http.RoundTripper) (*http.Response, error)

func (f MiddlewareFunc) RoundTrip(req *http.Request, next http.RoundTripper) (*http.Response, error) {
	return f(req, next)
}

type wrappedClient struct {
	baseTransport http.RoundTripper
	middleware    Middleware
}

func (c *wrappedClient) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.middleware.RoundTrip(req, c.baseTransport)
}

// wrapTransport wraps baseTransport with each middleware in turn, so the last one is the outermost.
func wrapTransport(baseTransport http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	wrapped := baseTransport
	for _, middleware := range middlewares {
		if middleware == nil {
			continue
		}
		wrapped = &wrappedClient{baseTransport: wrapped, middleware: middleware}
	}
	return wrapped
}
