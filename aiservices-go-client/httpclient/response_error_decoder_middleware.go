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
	"io"
	"net/http"
	"strings"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient/internal"
	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	werror "github.com/palantir/witchcraft-go-error"
)

const (
	// TransactionIDHeader carries the service's identifier for a request, useful when reporting problems.
	TransactionIDHeader = "X-Global-Transaction-Id"

	maxErrorBodyBytes = 16 * 1024
)

// ErrorDecoder implementations declare whether or not they should be used to handle certain http responses, and return
// decoded errors when invoked. Custom implementations can be used when consumers expect structured errors in response bodies.
type ErrorDecoder interface {
	// Handles returns whether or not the decoder considers the response an error.
	Handles(resp *http.Response) bool
	// DecodeError returns a decoded error, or an error encountered while trying to decode.
	// DecodeError should never return nil.
	DecodeError(resp *http.Response) error
}

// errorDecoderMiddleware intercepts a round trip's response.
// If the supplied ErrorDecoder handles the response, we return the error as decoded by ErrorDecoder.
// In this case, the *http.Response returned will be nil.
func errorDecoderMiddleware(errorDecoder ErrorDecoder) Middleware {
	return MiddlewareFunc(func(req *http.Request, next http.RoundTripper) (*http.Response, error) {
		resp, err := next.RoundTrip(req)
		// if error is already set, it is more severe than our HTTP error. Just return it.
		if resp == nil || err != nil {
			return nil, err
		}
		if errorDecoder.Handles(resp) {
			defer internal.DrainBody(resp)
			return nil, errorDecoder.DecodeError(resp)
		}
		return resp, nil
	})
}

// restErrorDecoder is our default error decoder.
// It handles responses of status code >= 400. The returned werror carries the
// 'statusCode' safe parameter, the 'transactionId' safe parameter when the service
// sent one, and the service's error message as the unsafe 'errorMessage' parameter.
//
// Use StatusCodeFromError(err) and ErrorMessageFromError(err) to read them back,
// and WithDisableRestErrors() to disable this middleware on your client.
type restErrorDecoder struct{}

var _ ErrorDecoder = restErrorDecoder{}

func (d restErrorDecoder) Handles(resp *http.Response) bool {
	return resp.StatusCode >= http.StatusBadRequest
}

func (d restErrorDecoder) DecodeError(resp *http.Response) error {
	params := []werror.Param{werror.SafeParam("statusCode", resp.StatusCode)}
	if txID := resp.Header.Get(TransactionIDHeader); txID != "" {
		params = append(params, werror.SafeParam("transactionId", txID))
	}
	if resp.Body != nil {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if err != nil {
			return werror.Wrap(err, "server returned an error and failed to read body", params...)
		}
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			params = append(params, werror.UnsafeParam("responseBody", string(body)))
			if msg := serviceErrorMessage(resp.Header.Get("Content-Type"), body); msg != "" {
				params = append(params, werror.UnsafeParam("errorMessage", msg))
			}
		}
	}
	return werror.Error(resp.Status, params...)
}

// serviceErrorMessage extracts the human readable message from an error body. The services report errors
// in several shapes: {"errors":[{"message":...}]}, {"error":...}, {"message":...} and {"errorMessage":...}.
// Non-JSON bodies are returned as text.
func serviceErrorMessage(contentType string, body []byte) string {
	if !strings.Contains(contentType, "json") {
		return plainErrorMessage(body)
	}
	var decoded struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Error        interface{} `json:"error"`
		Message      string      `json:"message"`
		ErrorMessage string      `json:"errorMessage"`
	}
	if err := codecs.JSON.Unmarshal(body, &decoded); err != nil {
		return plainErrorMessage(body)
	}
	switch {
	case len(decoded.Errors) > 0 && decoded.Errors[0].Message != "":
		return decoded.Errors[0].Message
	case decoded.Error != nil:
		if s, ok := decoded.Error.(string); ok {
			return s
		}
		if m, ok := decoded.Error.(map[string]interface{}); ok {
			if s, ok := m["description"].(string); ok {
				return s
			}
		}
	}
	if decoded.Message != "" {
		return decoded.Message
	}
	return decoded.ErrorMessage
}

func plainErrorMessage(body []byte) string {
	var text string
	if err := codecs.Plain.Unmarshal(body, &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// StatusCodeFromError retrieves the 'statusCode' parameter from the provided werror.
// If the error is not a werror or does not have the statusCode param, ok is false.
//
// The default client error decoder sets the statusCode parameter on its returned errors. Note that, if a custom error
// decoder is used, this function will only return a status code for the error if the custom decoder sets a 'statusCode'
// parameter on the error.
func StatusCodeFromError(err error) (statusCode int, ok bool) {
	return internal.StatusCodeFromError(err)
}

// ErrorMessageFromError retrieves the message the service reported in its error body.
func ErrorMessageFromError(err error) (string, bool) {
	return stringParamFromError(err, "errorMessage")
}

// TransactionIDFromError retrieves the service transaction ID of a failed request.
func TransactionIDFromError(err error) (string, bool) {
	return stringParamFromError(err, "transactionId")
}

// stringParamFromError looks up key among both safe and unsafe params.
// The boolean werror.ParamFromError returns reports safety, not presence.
func stringParamFromError(err error, key string) (string, bool) {
	v, _ := werror.ParamFromError(err, key)
	s, ok := v.(string)
	return s, ok
}
