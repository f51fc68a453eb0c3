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

package codecs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipart_RoundTrip(t *testing.T) {
	form := codecs.NewForm(
		codecs.FormPart{Name: "name", Value: "dogs"},
		codecs.FormPart{Name: "beagle_positive_examples", Filename: "beagle.zip", Value: strings.NewReader("zipdata")},
		codecs.FormPart{Name: "images_file", Filename: "dog.jpg", ContentType: "image/jpeg", Value: []byte{0xff, 0xd8}},
	)
	assert.True(t, strings.HasPrefix(form.ContentType(), "multipart/form-data; boundary="))

	data, err := codecs.Multipart.Marshal(form)
	require.NoError(t, err)

	parsed, err := codecs.ReadForm(bytes.NewReader(data), form.ContentType())
	require.NoError(t, err)
	require.Len(t, parsed.Parts, 3)

	name, ok := parsed.Part("name")
	require.True(t, ok)
	assert.Equal(t, []byte("dogs"), name.Value)
	assert.Empty(t, name.Filename)

	examples, ok := parsed.Part("beagle_positive_examples")
	require.True(t, ok)
	assert.Equal(t, "beagle.zip", examples.Filename)
	assert.Equal(t, "application/octet-stream", examples.ContentType)
	assert.Equal(t, []byte("zipdata"), examples.Value)

	image, ok := parsed.Part("images_file")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", image.ContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, image.Value)

	_, ok = parsed.Part("missing")
	assert.False(t, ok)
}

func TestMultipart_Errors(t *testing.T) {
	_, err := codecs.Multipart.Marshal("not a form")
	require.Error(t, err)

	_, err = codecs.ReadForm(strings.NewReader(""), "application/json")
	require.Error(t, err)

	err = codecs.Multipart.Unmarshal([]byte("x"), &codecs.Form{})
	require.Error(t, err)
}

func TestYAML(t *testing.T) {
	type conf struct {
		URL     string `yaml:"url"`
		Version string `yaml:"version"`
	}
	var c conf
	require.NoError(t, codecs.YAML.Unmarshal([]byte("url: https://example.com\nversion: v3\n"), &c))
	assert.Equal(t, conf{URL: "https://example.com", Version: "v3"}, c)

	out, err := codecs.YAML.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "url: https://example.com\nversion: v3\n", string(out))
}
