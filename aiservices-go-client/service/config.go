// Copyright (c) 2024 The aiservices-go Authors. All rights reserved.
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

// Package service provides the base service shared by every generated service client: static
// configuration, authentication, credential discovery and the request executor that turns
// operation descriptors into HTTP calls.
package service

import (
	"net/http"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	werror "github.com/palantir/witchcraft-go-error"
)

// Config is the static configuration of one service client.
type Config struct {
	// ServiceName is the name used for analytics headers, metrics and credential lookup.
	ServiceName string `json:"service-name,omitempty" yaml:"service-name,omitempty"`
	// ServiceVersion is the API version of the service, e.g. "v3".
	ServiceVersion string `json:"service-version,omitempty" yaml:"service-version,omitempty"`
	// URL is the base URL of the service. Discovered credentials and the service's default are used when empty.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Version is the API release date sent as the "version" query parameter of every request. Required.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Authenticator authenticates every request. When nil, credentials are discovered with ReadCredentials.
	Authenticator Authenticator `json:"-" yaml:"-"`
	// Headers are sent with every request, e.g. X-Watson-Learning-Opt-Out.
	Headers http.Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	// DisableSSLVerification disables server certificate verification for the service and token endpoints.
	DisableSSLVerification bool `json:"disable-ssl-verification,omitempty" yaml:"disable-ssl-verification,omitempty"`
	// HTTPClient configures the transport.
	HTTPClient httpclient.ClientConfig `json:"http-client,omitempty" yaml:"http-client,omitempty"`
}

func (c Config) validate() error {
	if c.ServiceName == "" {
		return werror.Error("service name must be set")
	}
	if c.Version == "" {
		return werror.Error("version must be set", werror.SafeParam("serviceName", c.ServiceName))
	}
	return nil
}
