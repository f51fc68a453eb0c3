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

package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestServicesConfig_UnmarshalAndMerge(t *testing.T) {
	const input = `
max-num-retries: 2
read-timeout: 30s
api-token: default-token
metrics:
  tags:
    team: vision
services:
  natural-language-understanding:
    uris:
      - https://nlu.example.com/api
    read-timeout: 60s
    metrics:
      tags:
        region: us-south
  visual-recognition:
    uris:
      - https://vr.example.com/api
    basic-auth:
      user: apikey
      password: secret
    security:
      insecure-skip-verify: true
`
	var conf httpclient.ServicesConfig
	require.NoError(t, yaml.UnmarshalStrict([]byte(input), &conf))

	nlu := conf.ClientConfig("natural-language-understanding")
	assert.Equal(t, "natural-language-understanding", nlu.ServiceName)
	assert.Equal(t, []string{"https://nlu.example.com/api"}, nlu.URIs)
	require.NotNil(t, nlu.ReadTimeout)
	assert.Equal(t, time.Minute, *nlu.ReadTimeout)
	require.NotNil(t, nlu.MaxNumRetries)
	assert.Equal(t, 2, *nlu.MaxNumRetries)
	require.NotNil(t, nlu.APIToken)
	assert.Equal(t, "default-token", *nlu.APIToken)
	assert.Equal(t, map[string]string{"team": "vision", "region": "us-south"}, nlu.Metrics.Tags)

	vr := conf.ClientConfig("visual-recognition")
	require.NotNil(t, vr.BasicAuth)
	assert.Equal(t, "apikey", vr.BasicAuth.User)
	require.NotNil(t, vr.Security.InsecureSkipVerify)
	assert.True(t, *vr.Security.InsecureSkipVerify)

	unknown := conf.ClientConfig("unknown")
	assert.Empty(t, unknown.URIs)
	require.NotNil(t, unknown.ReadTimeout)
	assert.Equal(t, 30*time.Second, *unknown.ReadTimeout)
}

func TestServicesConfig_RejectsUnknownFields(t *testing.T) {
	var conf httpclient.ServicesConfig
	require.Error(t, yaml.UnmarshalStrict([]byte("not-a-field: true\n"), &conf))
}

func TestWithConfig(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("file-token\n"), 0600))

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer file-token", req.Header.Get("Authorization"))
	}))
	defer server.Close()

	client, err := httpclient.NewClient(httpclient.WithConfig(httpclient.ClientConfig{
		ServiceName:  "natural-language-understanding",
		URIs:         []string{server.URL},
		APITokenFile: &tokenFile,
	}))
	require.NoError(t, err)

	_, err = client.Get(context.Background())
	require.NoError(t, err)
}

func TestWithConfig_MissingTokenFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := httpclient.NewClient(httpclient.WithConfig(httpclient.ClientConfig{APITokenFile: &missing}))
	require.Error(t, err)
}
