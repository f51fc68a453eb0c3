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
	"bytes"
	"encoding/json"
	"io"

	"github.com/palantir/pkg/safejson"
	werror "github.com/palantir/witchcraft-go-error"
)

const (
	contentTypeJSON = "application/json"
)

// JSON codec encodes and decodes JSON requests and responses using github.com/palantir/pkg/safejson.
// On Decode, it sets UseNumber on the json.Decoder so that large numbers survive interface{} targets.
// On Encode, HTML escaping is disabled so that analyzed html and xpath values are sent as written.
var JSON Codec = codecJSON{}

// JSONIndent is JSON with two-space indentation on Encode/Marshal. Decoding is identical to JSON.
var JSONIndent Codec = codecJSON{indent: "  "}

type codecJSON struct {
	indent string
}

func (codecJSON) Accept() string {
	return contentTypeJSON
}

func (codecJSON) Decode(r io.Reader, v interface{}) error {
	if unmarshaler, ok := v.(json.Unmarshaler); ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return werror.Wrap(err, "read failed")
		}
		return werror.Wrap(unmarshaler.UnmarshalJSON(data), "UnmarshalJSON")
	}
	if err := safejson.Decoder(r).Decode(v); err != nil {
		return werror.Wrap(err, "json.Decode")
	}
	return nil
}

func (c codecJSON) Unmarshal(data []byte, v interface{}) error {
	return c.Decode(bytes.NewReader(data), v)
}

func (codecJSON) ContentType() string {
	return contentTypeJSON
}

func (c codecJSON) Encode(w io.Writer, v interface{}) error {
	if marshaler, ok := v.(json.Marshaler); ok && c.indent == "" {
		out, err := marshaler.MarshalJSON()
		if err != nil {
			return werror.Wrap(err, "MarshalJSON")
		}
		_, err = w.Write(out)
		return werror.Wrap(err, "write failed")
	}
	enc := safejson.Encoder(w)
	if c.indent != "" {
		enc.SetIndent("", c.indent)
	}
	return werror.Wrap(enc.Encode(v), "json.Encode")
}

func (c codecJSON) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
