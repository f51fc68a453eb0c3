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
	"os"
	"path/filepath"
	"strings"

	werror "github.com/palantir/witchcraft-go-error"
	"github.com/spf13/cobra"
)

// Flag accessors return nil for flags the user did not set, so unset options are never sent.

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func int64Flag(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

func float32Flag(cmd *cobra.Command, name string) *float32 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat32(name)
	return &v
}

func stringSliceFlag(cmd *cobra.Command, name string) []string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetStringSlice(name)
	return v
}

// fileSet opens files for upload and closes them together.
type fileSet struct {
	files []*os.File
}

func (s *fileSet) open(path string) (io.Reader, *string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, werror.Wrap(err, "failed to open file", werror.UnsafeParam("path", path))
	}
	s.files = append(s.files, f)
	name := filepath.Base(path)
	return f, &name, nil
}

// openFlag opens the file named by the flag, returning a nil reader when the flag is unset.
func (s *fileSet) openFlag(cmd *cobra.Command, name string) (io.Reader, *string, error) {
	path := stringFlag(cmd, name)
	if path == nil {
		return nil, nil, nil
	}
	return s.open(*path)
}

// openExamples opens the files of class=path pairs.
func (s *fileSet) openExamples(pairs []string) (map[string]io.Reader, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	examples := make(map[string]io.Reader, len(pairs))
	for _, pair := range pairs {
		class, path, ok := strings.Cut(pair, "=")
		if !ok || class == "" || path == "" {
			return nil, werror.Error("positive examples must have the form class=path", werror.UnsafeParam("value", pair))
		}
		r, _, err := s.open(path)
		if err != nil {
			return nil, err
		}
		examples[class] = r
	}
	return examples, nil
}

func (s *fileSet) Close() {
	for _, f := range s.files {
		_ = f.Close()
	}
}
