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
	"fmt"
	"io"
	"net/url"

	werror "github.com/palantir/witchcraft-go-error"
)

const (
	contentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// FormURLEncoded codec encodes url.Values as application/x-www-form-urlencoded bodies,
// which token endpoints expect. Decode fills a *url.Values.
var FormURLEncoded Codec = codecFormURLEncoded{}

type codecFormURLEncoded struct{}

func (codecFormURLEncoded) Accept() string {
	return contentTypeFormURLEncoded
}

func (c codecFormURLEncoded) Decode(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return werror.Wrap(err, "failed to read form body")
	}
	return c.Unmarshal(data, v)
}

func (codecFormURLEncoded) Unmarshal(data []byte, v interface{}) error {
	out, ok := v.(*url.Values)
	if !ok {
		return werror.Error("failed to decode form body into unsupported type",
			werror.SafeParam("type", fmt.Sprintf("%T", v)))
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return werror.Wrap(err, "failed to parse form body")
	}
	*out = values
	return nil
}

func (codecFormURLEncoded) ContentType() string {
	return contentTypeFormURLEncoded
}

func (c codecFormURLEncoded) Encode(w io.Writer, v interface{}) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return werror.Wrap(err, "write failed")
}

func (codecFormURLEncoded) Marshal(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case url.Values:
		return []byte(t.Encode()), nil
	case *url.Values:
		return []byte(t.Encode()), nil
	case map[string]string:
		values := make(url.Values, len(t))
		for k, val := range t {
			values.Set(k, val)
		}
		return []byte(values.Encode()), nil
	}
	return nil, werror.Error("failed to encode unsupported type as form body",
		werror.SafeParam("type", fmt.Sprintf("%T", v)))
}
