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

package codecs_test

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormURLEncodedCodec(t *testing.T) {
	in := url.Values{
		"grant_type": {"urn:ibm:params:oauth:grant-type:apikey"},
		"apikey":     {"a b&c"},
	}
	var buf bytes.Buffer
	require.NoError(t, codecs.FormURLEncoded.Encode(&buf, in))
	assert.Equal(t, "apikey=a+b%26c&grant_type=urn%3Aibm%3Aparams%3Aoauth%3Agrant-type%3Aapikey", buf.String())

	var out url.Values
	require.NoError(t, codecs.FormURLEncoded.Decode(&buf, &out))
	assert.Equal(t, in, out)

	fromMap, err := codecs.FormURLEncoded.Marshal(map[string]string{"response_type": "cloud_iam"})
	require.NoError(t, err)
	assert.Equal(t, "response_type=cloud_iam", string(fromMap))
}

func TestFormURLEncodedCodec_Unsupported(t *testing.T) {
	_, err := codecs.FormURLEncoded.Marshal(42)
	require.Error(t, err)

	var s string
	require.Error(t, codecs.FormURLEncoded.Unmarshal([]byte("a=b"), &s))
}
