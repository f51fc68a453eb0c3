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
	"net"
	"strings"
	"testing"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	"github.com/stretchr/testify/require"
)

func TestPlainCodec(t *testing.T) {
	var str string
	var ip net.IP
	for _, test := range []struct {
		Name  string
		Data  string
		Value interface{}
	}{
		{
			Name:  "string",
			Data:  "Unauthorized",
			Value: &str,
		},
		{
			Name:  "text unmarshaler",
			Data:  "10.0.0.1",
			Value: &ip,
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			err := codecs.Plain.Decode(strings.NewReader(test.Data), test.Value)
			require.NoError(t, err)
			var buf bytes.Buffer
			err = codecs.Plain.Encode(&buf, test.Value)
			require.NoError(t, err)

			require.Equal(t, test.Data, buf.String())
		})
	}
}

func TestPlainCodec_Unsupported(t *testing.T) {
	var n int
	require.Error(t, codecs.Plain.Unmarshal([]byte("1"), &n))
	_, err := codecs.Plain.Marshal(n)
	require.Error(t, err)
}
