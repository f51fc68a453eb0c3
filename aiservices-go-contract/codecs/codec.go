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

package codecs

import (
	"io"
)

// Decoder is what is used to decode the response body of an HTTP request.
type Decoder interface {
	// Accept returns the value for the Accept header sent with requests expecting this encoding.
	Accept() string
	Decode(r io.Reader, v interface{}) error
	Unmarshal(data []byte, v interface{}) error
}

// Encoder is what is used to encode the request body of an HTTP request.
type Encoder interface {
	// ContentType returns the value for the Content-Type header.
	ContentType() string
	Encode(w io.Writer, v interface{}) error
	Marshal(v interface{}) ([]byte, error)
}

// Codec combines an Encoder and a Decoder for the same media type.
type Codec interface {
	Decoder
	Encoder
}
