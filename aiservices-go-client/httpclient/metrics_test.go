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
	"net/http/httptest"
	"testing"

	"github.com/palantir/pkg/metrics"
	"github.com/palantir/pkg/tlsconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTagsProviderFunc struct {
	key, val string
}

func (ftpf fakeTagsProviderFunc) Tags(_ *http.Request, _ *http.Response, _ error) metrics.Tags {
	return metrics.Tags{
		metrics.MustNewTag(ftpf.key, ftpf.val),
	}
}

func TestRoundTripperWithMetrics(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	for _, tc := range []struct {
		name           string
		statusCode     int // 0 means the connection fails
		rpcMethodName  string
		tagsProviders  []TagsProvider
		expectedFamily string
		expectedRPC    string
		expectedCustom metrics.Tags
	}{
		{
			name:           "2xx with method name",
			statusCode:     200,
			rpcMethodName:  "Analyze",
			expectedFamily: "2xx",
			expectedRPC:    "Analyze",
		},
		{
			name:           "4xx without method name",
			statusCode:     404,
			expectedFamily: "4xx",
			expectedRPC:    "RPCMethodNameMissing",
		},
		{
			name:           "5xx with custom tags",
			statusCode:     503,
			rpcMethodName:  "Classify",
			tagsProviders:  []TagsProvider{fakeTagsProviderFunc{key: "foo", val: "bar"}, fakeTagsProviderFunc{key: "bar", val: "baz"}},
			expectedFamily: "5xx",
			expectedRPC:    "Classify",
			expectedCustom: metrics.Tags{metrics.MustNewTag("foo", "bar"), metrics.MustNewTag("bar", "baz")},
		},
		{
			name:           "connection failure",
			rpcMethodName:  "ListModels",
			expectedFamily: "other",
			expectedRPC:    "ListModels",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rootRegistry := metrics.NewRootMetricsRegistry()
			ctx := metrics.WithRegistry(context.Background(), rootRegistry)

			serverURL := closedURL
			if tc.statusCode > 0 {
				server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
					rw.WriteHeader(tc.statusCode)
				}))
				defer server.Close()
				serverURL = server.URL
			}

			client, err := NewClient(
				WithServiceName("my-service"),
				WithMetricsTagProviders(tc.tagsProviders...),
				WithBaseURLs([]string{serverURL}))
			require.NoError(t, err)

			_, err = client.Do(ctx, WithRequestMethod(http.MethodPost), WithRPCMethodName(tc.rpcMethodName))
			if tc.statusCode == 200 {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}

			found := false
			rootRegistry.Each(func(name string, tags metrics.Tags, value metrics.MetricVal) {
				if name != metricClientResponse {
					return
				}
				found = true
				expectedTags := append(
					append(metrics.Tags(nil), tc.expectedCustom...),
					metrics.MustNewTag("method", http.MethodPost),
					metrics.MustNewTag("family", tc.expectedFamily),
					metrics.MustNewTag("service-name", "my-service"),
					metrics.MustNewTag("method-name", tc.expectedRPC))
				assert.Equal(t, expectedTags.ToSet(), tags.ToSet())
			})
			assert.True(t, found, "did not find client.response metric")
		})
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	rootRegistry := metrics.NewRootMetricsRegistry()
	ctx := metrics.WithRegistry(context.Background(), rootRegistry)

	client, err := NewClient(WithBaseURLs([]string{srv.URL}), WithDisableMetrics(), WithDisableRestErrors())
	require.NoError(t, err)
	_, err = client.Get(ctx)
	require.NoError(t, err)

	rootRegistry.Each(func(name string, _ metrics.Tags, _ metrics.MetricVal) {
		t.Errorf("unexpected metric %s", name)
	})
}

func TestMetricsMiddleware_SuccessfulTLSHandshake(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	rootRegistry := metrics.NewRootMetricsRegistry()
	ctx := metrics.WithRegistry(context.Background(), rootRegistry)
	tlsConf, err := tlsconfig.NewClientConfig(tlsconfig.ClientRootCAs(tlsconfig.CertPoolFromCerts(srv.Certificate())))
	require.NoError(t, err)
	client, err := NewClient(WithServiceName("test-service"), WithTLSConfig(tlsConf), WithBaseURLs([]string{srv.URL}), WithDisableRestErrors())
	require.NoError(t, err)

	_, err = client.Get(ctx, WithRPCMethodName("test-endpoint"))
	require.NoError(t, err)

	attempt := false
	success := false
	failure := false
	rootRegistry.Each(func(name string, tags metrics.Tags, value metrics.MetricVal) {
		tagMap := tags.ToMap()
		switch name {
		case MetricTLSHandshakeAttempt:
			attempt = true
			assert.Equal(t, "test-service", tagMap[MetricTagServiceName])
		case MetricTLSHandshakeFailure:
			failure = true
		case MetricTLSHandshake:
			success = true
			assert.Equal(t, "test-service", tagMap[MetricTagServiceName])
			_, ok := tagMap[CipherTagKey]
			assert.True(t, ok)
			_, ok = tagMap[TLSVersionTagKey]
			assert.True(t, ok)
		}
	})
	assert.True(t, attempt, "no tls handshake attempt registered")
	assert.True(t, success, "no successful tls handshake attempt registered")
	assert.False(t, failure, "failed tls handshake attempt registered")
}

func TestMetricsMiddleware_FailedTLSHandshake(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	rootRegistry := metrics.NewRootMetricsRegistry()
	ctx := metrics.WithRegistry(context.Background(), rootRegistry)
	client, err := NewClient(WithServiceName("test-service"), WithBaseURLs([]string{srv.URL}))
	require.NoError(t, err)

	_, err = client.Get(ctx, WithRPCMethodName("test-endpoint"))
	require.Error(t, err)

	attempt := false
	success := false
	failure := false
	rootRegistry.Each(func(name string, tags metrics.Tags, value metrics.MetricVal) {
		tagMap := tags.ToMap()
		switch name {
		case MetricTLSHandshakeAttempt:
			attempt = true
		case MetricTLSHandshakeFailure:
			failure = true
			assert.Equal(t, "test-service", tagMap[MetricTagServiceName])
		case MetricTLSHandshake:
			success = true
		}
	})
	assert.True(t, attempt, "no tls handshake attempt registered")
	assert.False(t, success, "successful tls handshake attempt registered")
	assert.True(t, failure, "no failed tls handshake attempt registered")
}
