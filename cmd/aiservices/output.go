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
	"io"
	"strings"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	werror "github.com/palantir/witchcraft-go-error"
	"gopkg.in/yaml.v2"
)

// writeOutput encodes v as indented JSON or as YAML. YAML output keeps the JSON field names and order.
func writeOutput(w io.Writer, format string, v interface{}) error {
	if format != outputYAML {
		if err := codecs.JSONIndent.Encode(w, v); err != nil {
			return werror.Wrap(err, "failed to write result")
		}
		return nil
	}
	data, err := codecs.JSON.Marshal(v)
	if err != nil {
		return werror.Wrap(err, "failed to encode result")
	}
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return werror.Wrap(err, "failed to convert result to YAML")
	}
	if err := codecs.YAML.Encode(w, doc); err != nil {
		return werror.Wrap(err, "failed to write result")
	}
	return nil
}

func parseHeader(h string) (string, string, error) {
	name, value, ok := strings.Cut(h, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", werror.Error("header must have the form 'Name: value'", werror.UnsafeParam("header", h))
	}
	return name, strings.TrimSpace(value), nil
}
