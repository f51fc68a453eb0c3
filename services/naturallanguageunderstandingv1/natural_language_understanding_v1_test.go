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

package naturallanguageunderstandingv1_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/aiservices/aiservices-go/aiservices-go-client/operation"
	"github.com/aiservices/aiservices-go/aiservices-go-client/service"
	nlu "github.com/aiservices/aiservices-go/services/naturallanguageunderstandingv1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVersion = "2019-07-12"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*nlu.NaturalLanguageUnderstandingV1, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(rw, req)
	}))
	t.Cleanup(server.Close)

	client, err := nlu.New(service.Config{
		URL:           server.URL,
		Version:       testVersion,
		Authenticator: service.NoAuthAuthenticator{},
		Headers:       http.Header{"X-Watson-Learning-Opt-Out": {"true"}},
	})
	require.NoError(t, err)
	return client, &hits
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNew(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(service.CredentialsFileEnvVar, "")
	t.Setenv("VCAP_SERVICES", "")
	t.Setenv("NATURAL_LANGUAGE_UNDERSTANDING_URL", "")

	_, err := nlu.New(service.Config{Authenticator: service.NoAuthAuthenticator{}})
	require.Error(t, err)

	client, err := nlu.New(service.Config{Version: testVersion, Authenticator: service.NoAuthAuthenticator{}})
	require.NoError(t, err)
	assert.Equal(t, nlu.DefaultServiceURL, client.ServiceURL())
	assert.Equal(t, nlu.DefaultServiceName, client.Config().ServiceName)
	assert.Equal(t, nlu.DefaultServiceVersion, client.Config().ServiceVersion)
}

func TestAnalyze(t *testing.T) {
	client, hits := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/v1/analyze", req.URL.Path)
		assert.Equal(t, testVersion, req.URL.Query().Get("version"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, "true", req.Header.Get("X-Watson-Learning-Opt-Out"))
		assert.Equal(t, "service_name=natural-language-understanding;service_version=v1;operation_id=analyze", req.Header.Get("X-IBMCloud-SDK-Analytics"))
		assert.Contains(t, req.Header.Get("User-Agent"), "aiservices-go-sdk")

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{
			"features": map[string]interface{}{
				"keywords": map[string]interface{}{"limit": float64(2)},
				"metadata": map[string]interface{}{},
			},
			"text":  "IBM is an American multinational technology company",
			"clean": false,
		}, body)

		rw.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(rw, `{"language":"en","usage":{"features":1,"text_characters":52,"text_units":1},`+
			`"keywords":[{"text":"IBM","relevance":0.99,"count":1}]}`)
	})

	res, err := client.Analyze(testContext(t), &nlu.AnalyzeOptions{
		Features: &nlu.Features{
			Keywords: &nlu.KeywordsOptions{Limit: operation.Ptr(int64(2))},
			Metadata: &nlu.MetadataOptions{},
		},
		Text:  operation.Ptr("IBM is an American multinational technology company"),
		Clean: operation.Ptr(false),
	}).Result(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, "en", *res.Language)
	assert.Equal(t, int64(52), *res.Usage.TextCharacters)
	require.Len(t, res.Keywords, 1)
	assert.Equal(t, "IBM", *res.Keywords[0].Text)
	assert.Equal(t, 0.99, *res.Keywords[0].Relevance)
}

func TestAnalyze_MissingFeatures(t *testing.T) {
	client, hits := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {})

	for _, opts := range []*nlu.AnalyzeOptions{nil, {Text: operation.Ptr("hello")}} {
		_, err := client.Analyze(testContext(t), opts).Await(testContext(t))
		require.Error(t, err)
		assert.True(t, operation.IsValidationError(err))
		assert.EqualError(t, err, "Missing required parameters: features")

		done := make(chan error, 1)
		client.AnalyzeWithCallback(testContext(t), opts, func(err error, result nlu.AnalysisResults, resp *operation.DetailedResponse[nlu.AnalysisResults]) {
			assert.Nil(t, resp)
			done <- err
		})
		assert.EqualError(t, <-done, "Missing required parameters: features")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestListModels_ReturnResponse(t *testing.T) {
	client, _ := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/v1/models", req.URL.Path)
		assert.Equal(t, "service_name=natural-language-understanding;service_version=v1;operation_id=listModels", req.Header.Get("X-IBMCloud-SDK-Analytics"))
		rw.Header().Set("Content-Type", "application/json")
		rw.Header().Set(httpclient.TransactionIDHeader, "txn-models")
		_, _ = io.WriteString(rw, `{"models":[{"model_id":"m1","status":"available","language":"en"}]}`)
	})

	resp, err := client.ListModels(testContext(t), nil).Await(testContext(t))
	require.NoError(t, err)
	assert.Zero(t, resp.StatusCode)
	assert.Nil(t, resp.Headers)
	require.Len(t, resp.Result.Models, 1)
	assert.Equal(t, "m1", *resp.Result.Models[0].ModelID)

	opts := &nlu.ListModelsOptions{CallOptions: operation.CallOptions{ReturnResponse: true}}
	resp, err = client.ListModels(testContext(t), opts).Await(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "txn-models", resp.Headers.Get(httpclient.TransactionIDHeader))
	assert.Equal(t, "available", *resp.Result.Models[0].Status)
}

func TestListModels_CallbackMatchesFuture(t *testing.T) {
	client, hits := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(rw, `{"models":[{"model_id":"m1"}]}`)
	})

	fromFuture, err := client.ListModels(testContext(t), &nlu.ListModelsOptions{}).Result(testContext(t))
	require.NoError(t, err)

	type outcome struct {
		err    error
		result nlu.ListModelsResults
		resp   *operation.DetailedResponse[nlu.ListModelsResults]
	}
	done := make(chan outcome, 1)
	client.ListModelsWithCallback(testContext(t), nil, func(err error, result nlu.ListModelsResults, resp *operation.DetailedResponse[nlu.ListModelsResults]) {
		done <- outcome{err: err, result: result, resp: resp}
	})
	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, fromFuture, got.result)
	require.NotNil(t, got.resp)
	assert.Equal(t, http.StatusOK, got.resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestDeleteModel(t *testing.T) {
	client, _ := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/v1/models/model%201", req.URL.EscapedPath())
		assert.Equal(t, "false", req.Header.Get("X-Watson-Learning-Opt-Out"))
		assert.Empty(t, req.Header.Get("Content-Type"))
		_, _ = io.WriteString(rw, `{"deleted":"model 1"}`)
	})

	res, err := client.DeleteModel(testContext(t), &nlu.DeleteModelOptions{
		ModelID:     operation.Ptr("model 1"),
		CallOptions: operation.CallOptions{Headers: http.Header{"X-Watson-Learning-Opt-Out": {"false"}}},
	}).Result(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "model 1", *res.Deleted)
}

func TestDeleteModel_MissingModelID(t *testing.T) {
	client, hits := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {})

	_, err := client.DeleteModel(testContext(t), nil).Await(testContext(t))
	require.Error(t, err)
	assert.EqualError(t, err, "Missing required parameters: model_id")
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestDeleteModel_ServiceError(t *testing.T) {
	client, _ := newTestClient(t, func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(rw, `{"error":"model not found","code":404}`)
	})

	_, futureErr := client.DeleteModel(testContext(t), &nlu.DeleteModelOptions{ModelID: operation.Ptr("missing")}).Await(testContext(t))
	require.Error(t, futureErr)

	done := make(chan error, 1)
	client.DeleteModelWithCallback(testContext(t), &nlu.DeleteModelOptions{ModelID: operation.Ptr("missing")}, func(err error, result nlu.DeleteModelResults, resp *operation.DetailedResponse[nlu.DeleteModelResults]) {
		assert.Zero(t, result)
		assert.Nil(t, resp)
		done <- err
	})
	callbackErr := <-done
	require.Error(t, callbackErr)

	for _, err := range []error{futureErr, callbackErr} {
		code, ok := httpclient.StatusCodeFromError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, code)
		msg, ok := httpclient.ErrorMessageFromError(err)
		assert.True(t, ok)
		assert.Equal(t, "model not found", msg)
	}
}
