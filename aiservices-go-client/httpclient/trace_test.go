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

package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/palantir/witchcraft-go-tracing/wtracing"
	"github.com/palantir/witchcraft-go-tracing/wzipkin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracing(t *testing.T) {
	for _, testCase := range []struct {
		name            string
		clientParams    []httpclient.ClientParam
		ongoingSpanName string
		shouldPropagate bool
	}{
		{
			name:            "no ongoing span",
			shouldPropagate: false,
		},
		{
			name:            "ongoing span",
			ongoingSpanName: "operation",
			shouldPropagate: true,
		},
		{
			name:            "ongoing span, tracing disabled",
			clientParams:    []httpclient.ClientParam{httpclient.WithDisableTracing()},
			ongoingSpanName: "operation",
			shouldPropagate: false,
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			tracer := mustNewTracer()
			ctx := wtracing.ContextWithTracer(context.Background(), tracer)

			var expectedTraceID string
			if testCase.ongoingSpanName != "" {
				span := tracer.StartSpan(testCase.ongoingSpanName)
				defer span.Finish()
				ctx = wtracing.ContextWithSpan(ctx, span)
				expectedTraceID = string(span.Context().TraceID)
			}

			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				if testCase.shouldPropagate {
					assert.Equal(t, expectedTraceID, req.Header.Get("X-B3-TraceId"))
				} else {
					assert.Empty(t, req.Header.Get("X-B3-TraceId"))
				}
				rw.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client, err := httpclient.NewClient(append(testCase.clientParams, httpclient.WithBaseURLs([]string{server.URL}))...)
			require.NoError(t, err)

			resp, err := client.Do(ctx, httpclient.WithRequestMethod(http.MethodGet))
			require.NoError(t, err)
			assert.NotNil(t, resp)
		})
	}
}

func mustNewTracer() wtracing.Tracer {
	tracer, err := wzipkin.NewTracer(&testReporter{})
	if err != nil {
		panic(err)
	}
	return tracer
}

type testReporter struct {
	spans []wtracing.SpanModel
}

func (r *testReporter) Send(span wtracing.SpanModel) {
	r.spans = append(r.spans, span)
}

func (r *testReporter) Close() error {
	return nil
}
