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

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient/internal"
	"github.com/palantir/pkg/bytesbuffers"
	werror "github.com/palantir/witchcraft-go-error"
)

type bodyMiddleware struct {
	requestInput   interface{}
	requestEncoder codecs.Encoder

	// if rawOutput is true, the body of the response is not drained before returning. It is the responsibility of
	// the caller to read from and close the response body.
	rawOutput       bool
	responseOutput  interface{}
	responseDecoder codecs.Decoder

	bufferPool bytesbuffers.Pool
}

func (b *bodyMiddleware) RoundTrip(req *http.Request, next http.RoundTripper) (*http.Response, error) {
	cleanup, err := b.setRequestBody(req)
	if err != nil {
		return nil, err
	}

	resp, respErr := next.RoundTrip(req)
	cleanup()

	if err := b.readResponse(req.Context(), resp, respErr); err != nil {
		return nil, err
	}
	return resp, nil
}

// setRequestBody returns a function that should be called once the request has been completed.
func (b *bodyMiddleware) setRequestBody(req *http.Request) (func(), error) {
	noop := func() {}
	if b.requestInput == nil {
		return noop, nil
	}

	// With no encoder the input must already know how to set itself as a body.
	if b.requestEncoder == nil {
		body, ok := b.requestInput.(requestBody)
		if !ok {
			return nil, werror.ErrorWithContextParams(req.Context(), "requestEncoder is nil but requestInput is not a request body",
				werror.SafeParam("requestInputType", fmt.Sprintf("%T", b.requestInput)))
		}
		return noop, body.setRequestBody(req)
	}

	if b.bufferPool != nil {
		buf := b.bufferPool.Get()
		cleanup := func() {
			b.bufferPool.Put(buf)
		}
		if err := b.requestEncoder.Encode(buf, b.requestInput); err != nil {
			cleanup()
			return nil, werror.WrapWithContextParams(req.Context(), err, "failed to encode request object")
		}
		return cleanup, inMemoryBody(buf.Bytes()).setRequestBody(req)
	}

	encoded, err := b.requestEncoder.Marshal(b.requestInput)
	if err != nil {
		return nil, werror.WrapWithContextParams(req.Context(), err, "failed to encode request object")
	}
	return noop, inMemoryBody(encoded).setRequestBody(req)
}

func (b *bodyMiddleware) readResponse(ctx context.Context, resp *http.Response, respErr error) error {
	if respErr != nil {
		return respErr
	}
	if resp == nil || resp.Body == nil {
		return nil
	}
	if b.rawOutput {
		return nil
	}
	defer internal.DrainBody(resp)

	if b.responseOutput == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	// Empty bodies leave the output untouched.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return werror.WrapWithContextParams(ctx, err, "failed to read response body")
	}
	if len(data) == 0 {
		return nil
	}
	if err := b.responseDecoder.Unmarshal(data, b.responseOutput); err != nil {
		return werror.WrapWithContextParams(ctx, err, "failed to decode response body",
			werror.SafeParam("contentType", resp.Header.Get("Content-Type")))
	}
	return nil
}
