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
	"crypto/x509"
	"errors"
	"math/rand"
	"net/http"
	"net/url"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient/internal"
	"github.com/palantir/pkg/bytesbuffers"
	"github.com/palantir/pkg/refreshable"
	"github.com/palantir/pkg/retry"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
)

// A Client executes requests to a configured service.
//
// The Get/Head/Post/Put/Delete methods are for conveniently setting the method type and calling Do()
type Client interface {
	// Do executes a full request. Any input or output should be specified via params.
	// By the time it is returned, the response's body will be fully read and closed
	// unless WithRawResponseBody was used.
	//
	// In the case of a response with StatusCode >= 400, Do() will return a nil response and a non-nil error.
	// Use StatusCodeFromError(err) to retrieve the code from the error
	// and WithDisableRestErrors() to disable this middleware on your client.
	Do(ctx context.Context, params ...RequestParam) (*http.Response, error)

	Get(ctx context.Context, params ...RequestParam) (*http.Response, error)
	Head(ctx context.Context, params ...RequestParam) (*http.Response, error)
	Post(ctx context.Context, params ...RequestParam) (*http.Response, error)
	Put(ctx context.Context, params ...RequestParam) (*http.Response, error)
	Delete(ctx context.Context, params ...RequestParam) (*http.Response, error)
}

type clientImpl struct {
	client             http.Client
	middlewares        []Middleware
	errorDecoder       ErrorDecoder
	recoveryMiddleware Middleware

	uris                          refreshable.StringSlice
	maxAttempts                   int
	backoffOptions                []retry.Option
	disableTraceHeaderPropagation bool
	defaultHeaders                http.Header
	bufferPool                    bytesbuffers.Pool
}

func (c *clientImpl) Get(ctx context.Context, params ...RequestParam) (*http.Response, error) {
	return c.Do(ctx, append(params, WithRequestMethod(http.MethodGet))...)
}

func (c *clientImpl) Head(ctx context.Context, params ...RequestParam) (*http.Response, error) {
	return c.Do(ctx, append(params, WithRequestMethod(http.MethodHead))...)
}

func (c *clientImpl) Post(ctx context.Context, params ...RequestParam) (*http.Response, error) {
	return c.Do(ctx, append(params, WithRequestMethod(http.MethodPost))...)
}

func (c *clientImpl) Put(ctx context.Context, params ...RequestParam) (*http.Response, error) {
	return c.Do(ctx, append(params, WithRequestMethod(http.MethodPut))...)
}

func (c *clientImpl) Delete(ctx context.Context, params ...RequestParam) (*http.Response, error) {
	return c.Do(ctx, append(params, WithRequestMethod(http.MethodDelete))...)
}

func (c *clientImpl) Do(ctx context.Context, params ...RequestParam) (*http.Response, error) {
	uris := c.uris.CurrentStringSlice()
	if len(uris) == 0 {
		return nil, werror.ErrorWithContextParams(ctx, "httpclient: no base URIs are configured")
	}
	offset := rand.Intn(len(uris))

	var resp *http.Response
	var err error
	retrier := internal.NewRequestRetrier(retry.Start(ctx, c.backoffOptions...), c.maxAttempts)
	for retrier.Next(resp, err) {
		internal.DrainBody(resp)
		// Each attempt moves to the next URI so a failing host is not retried back to back.
		uri := uris[(offset+retrier.AttemptCount()-1)%len(uris)]
		req, reqMiddlewares, buildErr := c.newRequest(ctx, uri, params...)
		if buildErr != nil {
			return nil, buildErr
		}
		resp, err = c.doOnce(req, reqMiddlewares)
		if err != nil {
			logTransportError(ctx, err)
		}
	}
	if err == nil && resp == nil {
		// The retrier refused the first attempt, which only happens once ctx is done.
		err = werror.WrapWithContextParams(ctx, ctx.Err(), "httpclient request was not attempted")
	}
	return resp, err
}

func (c *clientImpl) doOnce(req *http.Request, reqMiddlewares []Middleware) (*http.Response, error) {
	// shallow copy so we can overwrite the Transport with a wrapped one.
	clientCopy := c.client
	clientCopy.Transport = wrapTransport(clientCopy.Transport, reqMiddlewares...)

	resp, respErr := clientCopy.Do(req)
	return resp, unwrapURLError(respErr)
}

// unwrapURLError converts a *url.Error to a werror. We need this because all
// errors from the stdlib's client.Do are wrapped in *url.Error, and if we
// were to blindly return that we would lose any werror params stored on the
// underlying Err.
func unwrapURLError(respErr error) error {
	if respErr == nil {
		return nil
	}

	urlErr, ok := respErr.(*url.Error)
	if !ok {
		return respErr
	}
	params := []werror.Param{werror.SafeParam("requestMethod", urlErr.Op)}

	if parsedURL, _ := url.Parse(urlErr.URL); parsedURL != nil {
		params = append(params,
			werror.SafeParam("requestHost", parsedURL.Host),
			werror.UnsafeParam("requestPath", parsedURL.Path))
	}

	return werror.Wrap(urlErr.Err, "httpclient request failed", params...)
}

// logTransportError logs certificate details when a request fails because the server's
// certificate is not trusted, which is otherwise hard to diagnose from the error alone.
func logTransportError(ctx context.Context, err error) {
	var unknownAuthority x509.UnknownAuthorityError
	if !errors.As(err, &unknownAuthority) {
		if cause, ok := werror.RootCause(err).(x509.UnknownAuthorityError); ok {
			unknownAuthority = cause
		} else {
			return
		}
	}
	if unknownAuthority.Cert == nil {
		return
	}
	svc1log.FromContext(ctx).Error("Encountered UnknownAuthorityError.", svc1log.SafeParams(map[string]interface{}{
		"certSANs":     unknownAuthority.Cert.DNSNames,
		"certCN":       unknownAuthority.Cert.Subject.CommonName,
		"issuerCertCN": unknownAuthority.Cert.Issuer.CommonName,
	}), svc1log.Stacktrace(err))
}
