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
	"bytes"
	"io"
	"net/http"
)

// requestBody sets the Body, GetBody and ContentLength fields of an outgoing request.
type requestBody interface {
	setRequestBody(req *http.Request) error
}

// inMemoryBody is an already encoded body. It can be replayed by the transport on redirects.
type inMemoryBody []byte

func (b inMemoryBody) setRequestBody(req *http.Request) error {
	req.ContentLength = int64(len(b))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

// bodyProvider opens a fresh reader for every attempt of the request.
type bodyProvider func() (io.ReadCloser, error)

func (p bodyProvider) setRequestBody(req *http.Request) error {
	body, err := p()
	if err != nil {
		return err
	}
	req.ContentLength = -1
	req.Body = body
	req.GetBody = p
	return nil
}
