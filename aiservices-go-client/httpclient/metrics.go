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
	"net/http/httptrace"
	"time"

	"github.com/palantir/pkg/metrics"
	werror "github.com/palantir/witchcraft-go-error"
)

const (
	MetricTagServiceName = "service-name"
	metricClientResponse = "client.response"
	metricTagFamily      = "family"
	metricTagMethod      = "method"
	metricRPCMethodName  = "method-name"

	metricTagFamilyOther = "other"

	MetricTLSHandshakeAttempt = "tls.handshake.attempt.count"
	MetricTLSHandshakeFailure = "tls.handshake.failure.count"
	MetricTLSHandshake        = "tls.handshake.count"
	CipherTagKey              = "cipher"
	NextProtocolTagKey        = "next_protocol"
	TLSVersionTagKey          = "tls_version"
)

type rpcMethodNameKey struct{}

// ContextWithRPCMethodName returns a copy of ctx carrying name, which tags the request's metrics.
func ContextWithRPCMethodName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, rpcMethodNameKey{}, name)
}

func getRPCMethodName(ctx context.Context) string {
	if name, ok := ctx.Value(rpcMethodNameKey{}).(string); ok {
		return name
	}
	return ""
}

// A TagsProvider returns metrics tags based on an http round trip.
type TagsProvider interface {
	Tags(*http.Request, *http.Response, error) metrics.Tags
}

// TagsProviderFunc is a convenience type that implements TagsProvider.
type TagsProviderFunc func(*http.Request, *http.Response, error) metrics.Tags

func (f TagsProviderFunc) Tags(req *http.Request, resp *http.Response, err error) metrics.Tags {
	return f(req, resp, err)
}

// StaticTagsProvider returns the same tags for every request.
type StaticTagsProvider metrics.Tags

func (s StaticTagsProvider) Tags(_ *http.Request, _ *http.Response, _ error) metrics.Tags {
	return metrics.Tags(s)
}

// MetricsMiddleware updates the "client.response" timer metric on every request.
// By default, metrics are tagged with 'service-name', 'method', 'method-name' and 'family' (of the
// status code).
func MetricsMiddleware(serviceName string, tagProviders ...TagsProvider) (Middleware, error) {
	serviceNameTag, err := metrics.NewTag(MetricTagServiceName, serviceName)
	if err != nil {
		return nil, werror.Wrap(err, "failed to construct service-name metric tag", werror.SafeParam("serviceName", serviceName))
	}
	return &metricsMiddleware{
		serviceNameTag: serviceNameTag,
		tags: append(
			append([]TagsProvider(nil), tagProviders...),
			TagsProviderFunc(tagStatusFamily),
			TagsProviderFunc(tagRequestMethod),
			TagsProviderFunc(tagRequestMethodName),
			StaticTagsProvider{serviceNameTag},
		)}, nil
}

type metricsMiddleware struct {
	serviceNameTag metrics.Tag
	tags           []TagsProvider
}

func (h *metricsMiddleware) RoundTrip(req *http.Request, next http.RoundTripper) (*http.Response, error) {
	start := time.Now()
	resp, err := next.RoundTrip(req.WithContext(h.tlsTraceContext(req.Context())))
	duration := time.Since(start)

	var tags metrics.Tags
	for _, tagProvider := range h.tags {
		tags = append(tags, tagProvider.Tags(req, resp, err)...)
	}
	metrics.FromContext(req.Context()).Timer(metricClientResponse, tags...).Update(duration / time.Microsecond)
	return resp, err
}

func tagStatusFamily(_ *http.Request, resp *http.Response, err error) metrics.Tags {
	if err != nil || resp == nil || resp.StatusCode < 100 || resp.StatusCode > 599 {
		return metrics.Tags{metrics.MustNewTag(metricTagFamily, metricTagFamilyOther)}
	}
	return metrics.Tags{metrics.MustNewTag(metricTagFamily, []string{"1xx", "2xx", "3xx", "4xx", "5xx"}[resp.StatusCode/100-1])}
}

func tagRequestMethod(req *http.Request, _ *http.Response, _ error) metrics.Tags {
	return metrics.Tags{metrics.MustNewTag(metricTagMethod, req.Method)}
}

func tagRequestMethodName(req *http.Request, _ *http.Response, _ error) metrics.Tags {
	rpcMethodName := getRPCMethodName(req.Context())
	if rpcMethodName == "" {
		return metrics.Tags{metrics.MustNewTag(metricRPCMethodName, "RPCMethodNameMissing")}
	}
	tag, err := metrics.NewTag(metricRPCMethodName, rpcMethodName)
	if err == nil {
		return metrics.Tags{tag}
	}
	return metrics.Tags{metrics.MustNewTag(metricRPCMethodName, "RPCMethodNameInvalid")}
}

func (h *metricsMiddleware) tlsTraceContext(ctx context.Context) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		TLSHandshakeStart: func() {
			metrics.FromContext(ctx).Meter(MetricTLSHandshakeAttempt, h.serviceNameTag).Mark(1)
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			tags := metrics.Tags{h.serviceNameTag}
			if cipherSuite := tls.CipherSuiteName(state.CipherSuite); cipherSuite != "" {
				tags = append(tags, metrics.MustNewTag(CipherTagKey, cipherSuite))
			}
			if state.NegotiatedProtocol != "" {
				tags = append(tags, metrics.MustNewTag(NextProtocolTagKey, state.NegotiatedProtocol))
			}
			if tlsVersion := tlsVersionString(state.Version); tlsVersion != "" {
				tags = append(tags, metrics.MustNewTag(TLSVersionTagKey, tlsVersion))
			}
			if err != nil {
				metrics.FromContext(ctx).Meter(MetricTLSHandshakeFailure, tags...).Mark(1)
			} else {
				metrics.FromContext(ctx).Meter(MetricTLSHandshake, tags...).Mark(1)
			}
		},
	})
}

func tlsVersionString(version uint16) string {
	switch version {
	case tls.VersionTLS12:
		return "TLS12"
	case tls.VersionTLS13:
		return "TLS13"
	}
	return ""
}
