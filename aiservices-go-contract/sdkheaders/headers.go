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

package sdkheaders

import (
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const (
	// HeaderUserAgent identifies the SDK and platform.
	HeaderUserAgent = "User-Agent"
	// HeaderAnalytics carries the service name, service version and operation id of every request.
	HeaderAnalytics = "X-IBMCloud-SDK-Analytics"

	sdkModule = "github.com/aiservices/aiservices-go"
	sdkName   = "aiservices-go-sdk"
)

// Default is a Builder with products for this SDK and the Go runtime.
// Use Clone() to derive a more specific stack without modifying Default.
var Default = Builder{
	products: []Product{goProduct(), sdkProduct()},
}

// Analytics renders the analytics header value for one operation.
func Analytics(serviceName, serviceVersion, operationID string) string {
	return fmt.Sprintf("service_name=%s;service_version=%s;operation_id=%s", serviceName, serviceVersion, operationID)
}

// ForOperation returns the headers every operation of a service sends by default.
func ForOperation(serviceName, serviceVersion, operationID string) http.Header {
	h := make(http.Header)
	h.Set(HeaderUserAgent, Default.String())
	h.Set(HeaderAnalytics, Analytics(serviceName, serviceVersion, operationID))
	return h
}

func sdkProduct() Product {
	p := Product{name: sdkName, version: "unknown"}
	if mod := detectModule(sdkModule); mod != nil && mod.Version != "" && mod.Version != "(devel)" {
		p.version = strings.TrimPrefix(mod.Version, "v")
	}
	return p
}

func goProduct() Product {
	return Product{
		name:     "golang",
		version:  strings.TrimPrefix(runtime.Version(), "go"),
		comments: []string{fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}
}

var readBuildInfo = sync.OnceValues(debug.ReadBuildInfo)

func detectModule(path string) *debug.Module {
	info, ok := readBuildInfo()
	if !ok {
		return nil
	}
	if info.Main.Path == path {
		return &info.Main
	}
	for _, mod := range info.Deps {
		if mod.Path == path {
			return mod
		}
	}
	return nil
}
