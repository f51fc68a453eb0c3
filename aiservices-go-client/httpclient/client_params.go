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
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/palantir/pkg/bytesbuffers"
	"github.com/palantir/pkg/refreshable"
	werror "github.com/palantir/witchcraft-go-error"
)

// ClientParam is a param that can be used to build a Client.
type ClientParam interface {
	apply(builder *clientBuilder) error
}

type clientParamFunc func(builder *clientBuilder) error

func (f clientParamFunc) apply(b *clientBuilder) error {
	return f(b)
}

// WithServiceName sets the value of the 'service-name' tag on the client's metrics.
func WithServiceName(serviceName string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.ServiceName = serviceName
		return nil
	})
}

// WithBaseURLs sets the base URLs for every request. This is meant to be used in conjunction with WithPath.
func WithBaseURLs(urls []string) ClientParam {
	return WithRefreshableBaseURLs(refreshable.NewStringSlice(refreshable.NewDefaultRefreshable(urls)))
}

// WithRefreshableBaseURLs sets base URLs that are read again for every request,
// so updating the refreshable redirects subsequent requests.
func WithRefreshableBaseURLs(urls refreshable.StringSlice) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.URIs = urls
		return nil
	})
}

// WithHTTPTimeout sets the timeout on the http client.
// If unset, the client defaults to 1 minute.
func WithHTTPTimeout(timeout time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.Timeout = timeout
		return nil
	})
}

// WithDialTimeout sets the timeout on the Dialer.
// If unset, the client defaults to 10 seconds.
func WithDialTimeout(timeout time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.DialTimeout = timeout
		return nil
	})
}

// WithKeepAlive sets the keep alive frequency on the Dialer.
// A zero value disables keep-alives.
func WithKeepAlive(keepAlive time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.KeepAlive = keepAlive
		return nil
	})
}

// WithIdleConnTimeout sets the timeout for idle connections.
func WithIdleConnTimeout(timeout time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.IdleConnTimeout = timeout
		return nil
	})
}

// WithTLSHandshakeTimeout sets the timeout for TLS handshakes.
func WithTLSHandshakeTimeout(timeout time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.TLSHandshakeTimeout = timeout
		return nil
	})
}

// WithResponseHeaderTimeout specifies the amount of time to wait for a server's response headers after fully
// writing the request.
func WithResponseHeaderTimeout(timeout time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.ResponseHeaderTimeout = timeout
		return nil
	})
}

// WithMaxIdleConns sets the number of reusable TCP connections the client will maintain in total and per host.
func WithMaxIdleConns(conns, connsPerHost int) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.MaxIdleConns = conns
		b.MaxIdleConnsPerHost = connsPerHost
		return nil
	})
}

// WithTLSConfig sets the underlying TLS configuration for the HTTP client.
func WithTLSConfig(conf *tls.Config) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if conf == nil {
			return werror.Error("httpclient.WithTLSConfig: config can not be nil")
		}
		b.TLSConfig = conf.Clone()
		return nil
	})
}

// WithTLSInsecureSkipVerify sets the InsecureSkipVerify field for the HTTP client's tls config.
// This option should only be used in clients that have other ways to establish trust with servers.
func WithTLSInsecureSkipVerify() ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.TLSConfig = b.TLSConfig.Clone()
		if b.TLSConfig == nil {
			b.TLSConfig = &tls.Config{}
		}
		b.TLSConfig.InsecureSkipVerify = true
		return nil
	})
}

// WithDisableHTTP2 skips the default behavior of configuring the transport with http2.ConfigureTransport.
func WithDisableHTTP2() ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.DisableHTTP2 = true
		return nil
	})
}

// WithHTTP2ReadIdleTimeout sets the interval of HTTP/2 ping health checks on idle connections.
// A zero value disables health checks.
func WithHTTP2ReadIdleTimeout(timeout, pingTimeout time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.HTTP2ReadIdleTimeout = timeout
		b.HTTP2PingTimeout = pingTimeout
		return nil
	})
}

// WithProxyURL uses the provided URL for proxying the request. Schemes http, https, socks5 and socks5h are supported.
func WithProxyURL(proxyURLString string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		proxyURL, err := url.Parse(proxyURLString)
		if err != nil {
			return werror.Wrap(err, "failed to parse proxy url")
		}
		switch proxyURL.Scheme {
		case "http", "https":
			b.Proxy = http.ProxyURL(proxyURL)
			b.SocksProxyURL = nil
		case "socks5", "socks5h":
			b.Proxy = nil
			b.SocksProxyURL = proxyURL
		default:
			return werror.Error("unsupported proxy url scheme", werror.SafeParam("scheme", proxyURL.Scheme))
		}
		return nil
	})
}

// WithNoProxy disables the use of proxies, including those read from the environment.
func WithNoProxy() ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.Proxy = nil
		b.SocksProxyURL = nil
		return nil
	})
}

// WithMiddleware will be invoked for custom HTTP behavior after the
// underlying transport is initialized. Each handler added "wraps" the previous
// round trip, so it will see the request first and the response last.
func WithMiddleware(h Middleware) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.Middlewares = append(b.Middlewares, h)
		return nil
	})
}

// WithAuthToken sets the Authorization header to a static bearerToken.
func WithAuthToken(bearerToken string) ClientParam {
	return WithAuthTokenProvider(func(_ context.Context) (string, error) {
		return bearerToken, nil
	})
}

// WithAuthTokenProvider calls provideToken() and sets the Authorization header.
func WithAuthTokenProvider(provideToken TokenProvider) ClientParam {
	return WithMiddleware(&authTokenMiddleware{provideToken: provideToken})
}

// WithBasicAuth sets the request's Authorization header to use HTTP Basic Authentication with the provided username and
// password.
func WithBasicAuth(username, password string) ClientParam {
	return WithMiddleware(&basicAuthMiddleware{user: username, password: password})
}

// WithSetHeader sets the header on every request made by the client, replacing any default value.
func WithSetHeader(key, value string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.Headers.Set(key, value)
		return nil
	})
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientParam {
	return WithSetHeader("User-Agent", userAgent)
}

// WithErrorDecoder sets a custom ErrorDecoder for the client.
func WithErrorDecoder(errorDecoder ErrorDecoder) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.ErrorDecoder = errorDecoder
		return nil
	})
}

// WithDisableRestErrors disables the middleware which sets Do()'s returned
// error to a non-nil value in the case of >= 400 HTTP response.
func WithDisableRestErrors() ClientParam {
	return WithErrorDecoder(nil)
}

// WithMaxRetries sets the number of times the client retries a throttled (429) or unavailable (503)
// response or a failed connection. The default is 0, which disables retries.
func WithMaxRetries(maxRetries int) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if maxRetries < 0 {
			return werror.Error("httpclient.WithMaxRetries: max retries can not be negative", werror.SafeParam("maxRetries", maxRetries))
		}
		b.MaxRetries = maxRetries
		return nil
	})
}

// WithInitialBackoff sets the duration of the first backoff interval. Subsequent intervals double up to MaxBackoff.
func WithInitialBackoff(initialBackoff time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.InitialBackoff = initialBackoff
		return nil
	})
}

// WithMaxBackoff sets the maximum backoff between retried calls.
func WithMaxBackoff(maxBackoff time.Duration) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.MaxBackoff = maxBackoff
		return nil
	})
}

// WithBytesBufferPool stores a bytes buffer pool on the client for use in encoding request bodies.
// This prevents allocating a new byte buffer for every request.
func WithBytesBufferPool(pool bytesbuffers.Pool) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.BytesBufferPool = pool
		return nil
	})
}

// WithDisableMetrics disables the "client.response" timer and TLS handshake meters.
func WithDisableMetrics() ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.DisableMetrics = true
		return nil
	})
}

// WithMetricsTagProviders adds tag providers to the client's metrics.
func WithMetricsTagProviders(providers ...TagsProvider) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.MetricsTagProviders = append(b.MetricsTagProviders, providers...)
		return nil
	})
}

// WithDisableTracing disables trace ID propagation in the X-B3-TraceId header.
func WithDisableTracing() ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.DisableTracing = true
		return nil
	})
}

// WithDisableRecovery disables the middleware which converts panics during a request into errors.
func WithDisableRecovery() ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.DisableRecovery = true
		return nil
	})
}
