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

// Package httpclient executes HTTP requests against the AI services. Requests are configured with
// RequestParams; clients with ClientParams or a ClientConfig.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/sdkheaders"
	"github.com/palantir/pkg/bytesbuffers"
	"github.com/palantir/pkg/refreshable"
	"github.com/palantir/pkg/retry"
	"github.com/palantir/pkg/tlsconfig"
	werror "github.com/palantir/witchcraft-go-error"
	"golang.org/x/net/proxy"
)

const (
	defaultDialTimeout           = 10 * time.Second
	defaultHTTPTimeout           = 60 * time.Second
	defaultKeepAlive             = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 10 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultHTTP2ReadIdleTimeout  = 30 * time.Second
	defaultHTTP2PingTimeout      = 15 * time.Second
	defaultMaxIdleConns          = 200
	defaultMaxIdleConnsPerHost   = 100
	defaultInitialBackoff        = 250 * time.Millisecond
	defaultMaxBackoff            = 2 * time.Second
)

type clientBuilder struct {
	ServiceName string
	URIs        refreshable.StringSlice

	Timeout               time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	ResponseHeaderTimeout time.Duration
	HTTP2ReadIdleTimeout  time.Duration
	HTTP2PingTimeout      time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	DisableHTTP2          bool
	Proxy                 func(*http.Request) (*url.URL, error)
	SocksProxyURL         *url.URL
	TLSConfig             *tls.Config

	Headers      http.Header
	Middlewares  []Middleware
	ErrorDecoder ErrorDecoder

	BytesBufferPool     bytesbuffers.Pool
	MaxRetries          int
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	DisableMetrics      bool
	DisableRecovery     bool
	DisableTracing      bool
	MetricsTagProviders []TagsProvider
}

// NewClient returns a configured client ready for use.
// We apply "sane defaults" before applying the provided params.
func NewClient(params ...ClientParam) (Client, error) {
	b, err := newClientBuilder()
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		if p == nil {
			continue
		}
		if err := p.apply(b); err != nil {
			return nil, err
		}
	}

	transport, err := b.buildTransport()
	if err != nil {
		return nil, err
	}

	var recovery Middleware
	if !b.DisableRecovery {
		recovery = recoveryMiddleware{}
	}
	uris := b.URIs
	if uris == nil {
		uris = refreshable.NewStringSlice(refreshable.NewDefaultRefreshable([]string(nil)))
	}

	return &clientImpl{
		client: http.Client{
			Transport: transport,
			Timeout:   b.Timeout,
		},
		middlewares:                   b.Middlewares,
		errorDecoder:                  b.ErrorDecoder,
		recoveryMiddleware:            recovery,
		uris:                          uris,
		maxAttempts:                   b.MaxRetries + 1,
		backoffOptions:                b.backoffOptions(),
		disableTraceHeaderPropagation: b.DisableTracing,
		defaultHeaders:                b.Headers,
		bufferPool:                    b.BytesBufferPool,
	}, nil
}

func newClientBuilder() (*clientBuilder, error) {
	defaultTLSConfig, err := tlsconfig.NewClientConfig()
	if err != nil {
		return nil, werror.Wrap(err, "failed to build default TLS configuration")
	}
	return &clientBuilder{
		Timeout:               defaultHTTPTimeout,
		DialTimeout:           defaultDialTimeout,
		KeepAlive:             defaultKeepAlive,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
		HTTP2ReadIdleTimeout:  defaultHTTP2ReadIdleTimeout,
		HTTP2PingTimeout:      defaultHTTP2PingTimeout,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		Proxy:                 http.ProxyFromEnvironment,
		TLSConfig:             defaultTLSConfig,
		Headers:               http.Header{sdkheaders.HeaderUserAgent: {sdkheaders.Default.String()}},
		ErrorDecoder:          restErrorDecoder{},
		InitialBackoff:        defaultInitialBackoff,
		MaxBackoff:            defaultMaxBackoff,
	}, nil
}

func (b *clientBuilder) buildTransport() (http.RoundTripper, error) {
	var dialer proxy.ContextDialer = &net.Dialer{
		Timeout:   b.DialTimeout,
		KeepAlive: b.KeepAlive,
	}
	if b.SocksProxyURL != nil {
		proxyDialer, err := proxy.FromURL(b.SocksProxyURL, dialer.(proxy.Dialer))
		if err != nil {
			return nil, werror.Wrap(err, "failed to construct socks5 dialer")
		}
		contextDialer, ok := proxyDialer.(proxy.ContextDialer)
		if !ok {
			return nil, werror.Error("socks5 dialer does not support contexts")
		}
		dialer = contextDialer
	}
	transport := &http.Transport{
		Proxy:                 b.Proxy,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          b.MaxIdleConns,
		MaxIdleConnsPerHost:   b.MaxIdleConnsPerHost,
		TLSClientConfig:       b.TLSConfig,
		TLSHandshakeTimeout:   b.TLSHandshakeTimeout,
		IdleConnTimeout:       b.IdleConnTimeout,
		ExpectContinueTimeout: b.ExpectContinueTimeout,
		ResponseHeaderTimeout: b.ResponseHeaderTimeout,
		DisableKeepAlives:     b.KeepAlive == 0,
	}
	if !b.DisableHTTP2 {
		if err := configureHTTP2(transport, b.HTTP2ReadIdleTimeout, b.HTTP2PingTimeout); err != nil {
			return nil, err
		}
	}
	if b.DisableMetrics {
		return transport, nil
	}
	metricsMiddleware, err := MetricsMiddleware(b.metricsServiceName(), b.MetricsTagProviders...)
	if err != nil {
		return nil, err
	}
	return wrapTransport(transport, metricsMiddleware), nil
}

func (b *clientBuilder) metricsServiceName() string {
	if b.ServiceName == "" {
		return "unknown"
	}
	return b.ServiceName
}

func (b *clientBuilder) backoffOptions() []retry.Option {
	return []retry.Option{
		retry.WithInitialBackoff(b.InitialBackoff),
		retry.WithMaxBackoff(b.MaxBackoff),
		retry.WithMultiplier(2),
		retry.WithRandomizationFactor(0.15),
	}
}
