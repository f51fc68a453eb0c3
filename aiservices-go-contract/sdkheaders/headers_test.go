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
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	for _, test := range []struct {
		Name        string
		Product     Product
		ExpectedErr string
	}{
		{
			Name:        "empty",
			ExpectedErr: "product name is not valid for User-Agent",
		},
		{
			Name:        "empty version",
			Product:     Product{name: "test"},
			ExpectedErr: "product version is not valid for User-Agent",
		},
		{
			Name:    "ok product",
			Product: Product{name: "aiservices-go-sdk", version: "1.0.0"},
		},
		{
			Name: "ok product with comments",
			Product: Product{
				name:     "golang",
				version:  "1.21.0",
				comments: []string{"linux/amd64", "cgo"},
			},
		},
		{
			Name:        "invalid name",
			Product:     Product{name: ";;", version: "1.0.0"},
			ExpectedErr: "product name is not valid for User-Agent",
		},
		{
			Name:        "invalid comment",
			Product:     Product{name: "foo", version: "1.0.0", comments: []string{"a;b"}},
			ExpectedErr: "product comment is not valid for User-Agent",
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			p, err := NewProduct(test.Product.name, test.Product.version, test.Product.comments...)
			if test.ExpectedErr == "" {
				require.NoError(t, err)
				assert.Equal(t, test.Product, p)
			} else {
				require.EqualError(t, err, test.ExpectedErr)
			}
		})
	}
}

func TestBuilder_String(t *testing.T) {
	b := &Builder{}
	assert.Equal(t, "", b.String())

	b.Push(Product{name: "foo", version: "1.0.0", comments: []string{"comment one"}})
	assert.Equal(t, "foo/1.0.0 (comment one)", b.String())

	clone := b.Clone()
	clone.Push(Product{name: "bar", version: "2.0.0"})
	assert.Equal(t, "bar/2.0.0 foo/1.0.0 (comment one)", clone.String())
	assert.Equal(t, "foo/1.0.0 (comment one)", b.String(), "clone must not modify original")
}

func TestForOperation(t *testing.T) {
	h := ForOperation("natural-language-understanding", "v1", "analyze")
	assert.Equal(t, "service_name=natural-language-understanding;service_version=v1;operation_id=analyze", h.Get(HeaderAnalytics))

	ua := h.Get(HeaderUserAgent)
	assert.True(t, strings.HasPrefix(ua, "aiservices-go-sdk/"), ua)
	assert.Contains(t, ua, "golang/"+strings.TrimPrefix(runtime.Version(), "go"))
	assert.Contains(t, ua, runtime.GOOS+"/"+runtime.GOARCH)
}
