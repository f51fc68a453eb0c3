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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	werror "github.com/palantir/witchcraft-go-error"
)

// WithRPCMethodName configures the request's context with the RPC method name, like "classify".
// This is read by the metrics middleware.
func WithRPCMethodName(name string) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.configureCtx = append(b.configureCtx, func(ctx context.Context) context.Context {
			return ContextWithRPCMethodName(ctx, name)
		})
		return nil
	})
}

// WithRequestMethod sets the HTTP method of the request, e.g. GET or POST.
func WithRequestMethod(method string) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		if method == "" {
			return werror.Error("httpclient.WithRequestMethod: method can not be empty")
		}
		b.method = strings.ToUpper(method)
		return nil
	})
}

// WithPath sets the path for the request. This will be joined with
// one of the base URLs set on the client.
func WithPath(path string) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.path = path
		return nil
	})
}

// WithPathf sets the path for the request from a format string.
func WithPathf(format string, args ...interface{}) RequestParam {
	return WithPath(fmt.Sprintf(format, args...))
}

// WithHeader sets a header on a request.
func WithHeader(key, value string) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.headers.Set(key, value)
		return nil
	})
}

// WithHeaders sets every header in headers on a request, replacing any values already present for those names.
func WithHeaders(headers http.Header) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		for k, v := range headers {
			b.headers[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
		return nil
	})
}

// WithQueryValues adds query values to a request.
func WithQueryValues(query url.Values) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		for k, v := range query {
			b.query[k] = append(b.query[k], v...)
		}
		return nil
	})
}

// WithRequestBody provides a struct to marshal and use as the request body.
// Encoding is handled by the encoder passed to WithRequestBody.
// Example:
//
//	input := nlu.Features{Keywords: &nlu.KeywordsOptions{}}
//	resp, err := client.Do(..., WithRequestBody(input, codecs.JSON), ...)
func WithRequestBody(input interface{}, encoder codecs.Encoder) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.bodyMiddleware.requestInput = input
		b.bodyMiddleware.requestEncoder = encoder
		b.headers.Set("Content-Type", encoder.ContentType())
		return nil
	})
}

// WithJSONRequest sets the request body to the input marshaled using the JSON codec.
func WithJSONRequest(input interface{}) RequestParam {
	return WithRequestBody(input, codecs.JSON)
}

// WithRawRequestBodyProvider uses the io.ReadCloser returned by getBody as the request body.
// getBody is called once per attempt, so retried requests send the full body again.
func WithRawRequestBodyProvider(getBody func() io.ReadCloser) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.bodyMiddleware.requestInput = bodyProvider(func() (io.ReadCloser, error) {
			return getBody(), nil
		})
		b.bodyMiddleware.requestEncoder = nil
		b.headers.Set("Content-Type", "application/octet-stream")
		return nil
	})
}

// WithMultipartRequest sets the request body to form encoded as multipart/form-data.
// The form is encoded on first use and the encoded bytes are reused by retries,
// so readers inside the form are consumed only once.
func WithMultipartRequest(form *codecs.Form) RequestParam {
	var (
		once    sync.Once
		encoded []byte
		encErr  error
	)
	return requestParamFunc(func(b *requestBuilder) error {
		once.Do(func() {
			encoded, encErr = codecs.Multipart.Marshal(form)
		})
		if encErr != nil {
			return werror.Wrap(encErr, "failed to encode multipart request body")
		}
		b.bodyMiddleware.requestInput = inMemoryBody(encoded)
		b.bodyMiddleware.requestEncoder = nil
		b.headers.Set("Content-Type", form.ContentType())
		return nil
	})
}

// WithResponseBody provides a struct into which the body middleware will decode the response body.
// Decoding is handled by the decoder passed to WithResponseBody.
// Example:
//
//	var output vr.Classifiers
//	resp, err := client.Do(..., WithResponseBody(&output, codecs.JSON), ...)
//	return output, nil
//
// In the case of an empty response, output will be unmodified.
func WithResponseBody(output interface{}, decoder codecs.Decoder) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.bodyMiddleware.responseOutput = output
		b.bodyMiddleware.responseDecoder = decoder
		b.headers.Set("Accept", decoder.Accept())
		return nil
	})
}

// WithJSONResponse unmarshals the response body using the JSON codec.
// The request will return an error if decoding fails.
func WithJSONResponse(output interface{}) RequestParam {
	return WithResponseBody(output, codecs.JSON)
}

// WithRawResponseBody configures the request such that the response
// body will not be read or drained after the request is executed.
// In this case, it is the responsibility of the caller to read and
// close the returned reader.
// Example:
//
//	resp, err := client.Do(..., WithRawResponseBody(), ...)
//	defer resp.Body.Close()
//	model, err := io.ReadAll(resp.Body)
func WithRawResponseBody() RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.bodyMiddleware.rawOutput = true
		b.bodyMiddleware.responseOutput = nil
		b.bodyMiddleware.responseDecoder = nil
		b.headers.Set("Accept", "application/octet-stream")
		return nil
	})
}

// WithRequestErrorDecoder sets an ErrorDecoder to use for this request only. It will take precedence over any
// ErrorDecoder set on the client. If this request-scoped ErrorDecoder does not handle the response, the client-scoped
// ErrorDecoder will not be consulted.
func WithRequestErrorDecoder(errorDecoder ErrorDecoder) RequestParam {
	return requestParamFunc(func(b *requestBuilder) error {
		b.errorDecoder = errorDecoder
		return nil
	})
}
