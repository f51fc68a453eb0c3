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

package main

import (
	"os"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/aiservices/aiservices-go/aiservices-go-client/service"
	werror "github.com/palantir/witchcraft-go-error"
	"gopkg.in/yaml.v2"
)

// config is the YAML configuration file of the command.
type config struct {
	NaturalLanguageUnderstanding serviceConfig `yaml:"natural-language-understanding,omitempty"`
	VisualRecognition            serviceConfig `yaml:"visual-recognition,omitempty"`
	// Clients holds transport defaults and per-service overrides keyed by service name.
	Clients httpclient.ServicesConfig `yaml:"clients,omitempty"`
}

type serviceConfig struct {
	service.Config `yaml:",inline"`
	// Auth is used instead of discovered credentials when set.
	Auth *service.Credentials `yaml:"auth,omitempty"`
}

func loadConfig(path string) (config, error) {
	var conf config
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, werror.Wrap(err, "failed to read configuration file", werror.SafeParam("path", path))
	}
	if err := yaml.UnmarshalStrict(data, &conf); err != nil {
		return config{}, werror.Wrap(err, "failed to parse configuration file", werror.SafeParam("path", path))
	}
	return conf, nil
}

// resolve returns the service configuration for serviceName with the transport settings of
// conf.Clients merged beneath the service's own, and the authenticator built from Auth.
func (conf config) resolve(sc serviceConfig, serviceName string) (service.Config, error) {
	out := sc.Config
	out.ServiceName = serviceName
	out.HTTPClient = httpclient.MergeClientConfig(sc.HTTPClient, conf.Clients.ClientConfig(serviceName))
	if sc.Auth != nil {
		auth, err := service.AuthenticatorFromCredentials(*sc.Auth)
		if err != nil {
			return service.Config{}, err
		}
		out.Authenticator = auth
		if out.URL == "" {
			out.URL = sc.Auth.URL
		}
	}
	return out, nil
}
