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
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDecoderMiddlewares(t *testing.T) {
	ctx := context.Background()
	verify404 := func(t *testing.T, err error) {
		t.Helper()
		code, ok := httpclient.StatusCodeFromError(err)
		assert.True(t, ok)
		assert.Equal(t, 404, code)
	}
	for _, tc := range []struct {
		name         string
		handler      http.HandlerFunc
		decoderParam httpclient.ClientParam // or nil for default
		requestParam httpclient.RequestParam
		verify       func(*testing.T, *url.URL, error)
	}{
		{
			name: "200 OK",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(200)
			},
			verify: func(t *testing.T, _ *url.URL, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:         "404 DisableRestErrors",
			handler:      http.NotFound,
			decoderParam: httpclient.WithDisableRestErrors(),
			verify: func(t *testing.T, _ *url.URL, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:    "404 default handler",
			handler: http.NotFound,
			verify: func(t *testing.T, u *url.URL, err error) {
				verify404(t, err)
				assert.EqualError(t, err, "httpclient request failed: 404 Not Found")
				safeParams, unsafeParams := werror.ParamsFromError(err)
				assert.Equal(t, map[string]interface{}{"requestHost": u.Host, "requestMethod": "Get", "statusCode": 404}, safeParams)
				assert.Equal(t, map[string]interface{}{
					"requestPath":  "/path",
					"responseBody": "404 page not found\n",
					"errorMessage": "404 page not found",
				}, unsafeParams)
			},
		},
		{
			name: "404 no body",
			handler: func(rw http.ResponseWriter, req *http.Request) {
				rw.WriteHeader(404)
			},
			verify: func(t *testing.T, u *url.URL, err error) {
				verify404(t, err)
				safeParams, unsafeParams := werror.ParamsFromError(err)
				assert.Equal(t, map[string]interface{}{"requestHost": u.Host, "requestMethod": "Get", "statusCode": 404}, safeParams)
				assert.Equal(t, map[string]interface{}{"requestPath": "/path"}, unsafeParams)
				_, ok := httpclient.ErrorMessageFromError(err)
				assert.False(t, ok)
			},
		},
		{
			name: "404 service json with transaction id",
			handler: func(rw http.ResponseWriter, req *http.Request) {
				rw.Header().Set("Content-Type", "application/json")
				rw.Header().Set(httpclient.TransactionIDHeader, "tx-123")
				rw.WriteHeader(404)
				_, _ = rw.Write([]byte(`{"code":404,"error":"Model not found"}`))
			},
			verify: func(t *testing.T, u *url.URL, err error) {
				verify404(t, err)
				msg, ok := httpclient.ErrorMessageFromError(err)
				assert.True(t, ok)
				assert.Equal(t, "Model not found", msg)
				txID, ok := httpclient.TransactionIDFromError(err)
				assert.True(t, ok)
				assert.Equal(t, "tx-123", txID)
			},
		},
		{
			name: "401 plain text body",
			handler: func(rw http.ResponseWriter, req *http.Request) {
				rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
				rw.WriteHeader(http.StatusUnauthorized)
				_, _ = rw.Write([]byte("Unauthorized\n"))
			},
			verify: func(t *testing.T, u *url.URL, err error) {
				code, ok := httpclient.StatusCodeFromError(err)
				assert.True(t, ok)
				assert.Equal(t, http.StatusUnauthorized, code)
				msg, ok := httpclient.ErrorMessageFromError(err)
				assert.True(t, ok)
				assert.Equal(t, "Unauthorized", msg)
			},
		},
		{
			name:         "404 custom simple decoder",
			handler:      http.NotFound,
			decoderParam: httpclient.WithErrorDecoder(fooErrorDecoder{}),
			verify: func(t *testing.T, u *url.URL, err error) {
				assert.EqualError(t, err, "httpclient request failed: foo error")
				safeParams, unsafeParams := werror.ParamsFromError(err)
				assert.Equal(t, map[string]interface{}{"requestHost": u.Host, "requestMethod": "Get"}, safeParams)
				assert.Equal(t, map[string]interface{}{"requestPath": "/path"}, unsafeParams)
			},
		},
		{
			name:         "404 request-scoped body-reading decoder",
			handler:      http.NotFound,
			requestParam: httpclient.WithRequestErrorDecoder(bodyReadingErrorDecoder{}),
			verify: func(t *testing.T, u *url.URL, err error) {
				assert.EqualError(t, err, "httpclient request failed: error from body: 404 page not found\n")
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(tc.handler)
			defer ts.Close()
			tsURL, err := url.Parse(ts.URL)
			require.NoError(t, err)

			client, err := httpclient.NewClient(httpclient.WithBaseURLs([]string{ts.URL}), httpclient.WithNoProxy(), tc.decoderParam)
			require.NoError(t, err)

			_, err = client.Get(ctx, httpclient.WithPath("/path"), tc.requestParam)
			tc.verify(t, tsURL, err)
		})
	}
}

type fooErrorDecoder struct{}

func (d fooErrorDecoder) Handles(resp *http.Response) bool {
	return true
}

func (d fooErrorDecoder) DecodeError(resp *http.Response) error {
	return fmt.Errorf("foo error")
}

type bodyReadingErrorDecoder struct{}

func (bodyReadingErrorDecoder) Handles(resp *http.Response) bool {
	return resp.StatusCode == http.StatusNotFound
}

func (bodyReadingErrorDecoder) DecodeError(resp *http.Response) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}
	return fmt.Errorf("error from body: %s", b)
}

func TestErrorParamLookupIgnoresSafety(t *testing.T) {
	err := werror.Wrap(
		werror.Error("service error",
			werror.SafeParam("transactionId", "tx-9"),
			werror.UnsafeParam("errorMessage", "model not found")),
		"request failed")

	msg, ok := httpclient.ErrorMessageFromError(err)
	assert.True(t, ok)
	assert.Equal(t, "model not found", msg)

	txID, ok := httpclient.TransactionIDFromError(err)
	assert.True(t, ok)
	assert.Equal(t, "tx-9", txID)

	_, ok = httpclient.ErrorMessageFromError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
