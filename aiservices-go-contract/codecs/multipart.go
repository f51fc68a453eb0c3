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

package codecs

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	werror "github.com/palantir/witchcraft-go-error"
)

const (
	contentTypeMultipart = "multipart/form-data"
)

// FormPart is a single field of a multipart/form-data body.
// Parts carrying Filename or ContentType are written as file parts, others as plain form fields.
type FormPart struct {
	Name        string
	Filename    string
	ContentType string
	// Value is a string, []byte or io.Reader.
	Value interface{}
}

// Form is an ordered multipart/form-data body with a fixed boundary.
type Form struct {
	boundary string
	Parts    []FormPart
}

// NewForm returns a Form with a random boundary.
func NewForm(parts ...FormPart) *Form {
	return &Form{
		boundary: multipart.NewWriter(io.Discard).Boundary(),
		Parts:    parts,
	}
}

// ReadForm parses a multipart/form-data body using the boundary declared in contentType.
// All part contents are buffered in memory as []byte values.
func ReadForm(r io.Reader, contentType string) (*Form, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, werror.Wrap(err, "failed to parse multipart content type")
	}
	if !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return nil, werror.Error("content type is not multipart", werror.SafeParam("contentType", mediaType))
	}
	form := &Form{boundary: params["boundary"]}
	if err := Multipart.Decode(r, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Boundary returns the multipart boundary used when encoding f.
func (f *Form) Boundary() string {
	return f.boundary
}

// ContentType returns the Content-Type header value including the boundary parameter.
func (f *Form) ContentType() string {
	return mime.FormatMediaType(contentTypeMultipart, map[string]string{"boundary": f.boundary})
}

// Part returns the first part named name.
func (f *Form) Part(name string) (FormPart, bool) {
	for _, p := range f.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return FormPart{}, false
}

// Multipart codec encodes *Form values. Decode fills a *Form whose boundary is already known, see ReadForm.
var Multipart Codec = codecMultipart{}

type codecMultipart struct{}

func (codecMultipart) Accept() string {
	return contentTypeMultipart
}

func (codecMultipart) Decode(r io.Reader, v interface{}) error {
	form, ok := v.(*Form)
	if !ok || form.boundary == "" {
		return werror.Error("multipart data can only be decoded into a *codecs.Form with a boundary")
	}
	mr := multipart.NewReader(r, form.boundary)
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return werror.Wrap(err, "failed to read multipart part")
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return werror.Wrap(err, "failed to read multipart part content", werror.SafeParam("part", p.FormName()))
		}
		form.Parts = append(form.Parts, FormPart{
			Name:        p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Value:       data,
		})
	}
}

func (c codecMultipart) Unmarshal(data []byte, v interface{}) error {
	return c.Decode(bytes.NewReader(data), v)
}

// ContentType omits the boundary; callers should prefer (*Form).ContentType.
func (codecMultipart) ContentType() string {
	return contentTypeMultipart
}

func (codecMultipart) Encode(w io.Writer, v interface{}) error {
	form, ok := v.(*Form)
	if !ok {
		return werror.Error("multipart encoding requires a *codecs.Form", werror.SafeParam("type", fmt.Sprintf("%T", v)))
	}
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(form.boundary); err != nil {
		return werror.Wrap(err, "invalid multipart boundary")
	}
	for _, part := range form.Parts {
		if err := writePart(mw, part); err != nil {
			return werror.Wrap(err, "failed to write multipart part", werror.SafeParam("part", part.Name))
		}
	}
	return werror.Wrap(mw.Close(), "failed to close multipart writer")
}

func (c codecMultipart) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(mw *multipart.Writer, part FormPart) error {
	var pw io.Writer
	var err error
	if part.Filename == "" && part.ContentType == "" {
		pw, err = mw.CreateFormField(part.Name)
	} else {
		h := make(textproto.MIMEHeader)
		disposition := map[string]string{"name": part.Name}
		if part.Filename != "" {
			disposition["filename"] = part.Filename
		}
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", disposition))
		contentType := part.ContentType
		if contentType == "" {
			contentType = contentTypeBinary
		}
		h.Set("Content-Type", contentType)
		pw, err = mw.CreatePart(h)
	}
	if err != nil {
		return err
	}
	switch val := part.Value.(type) {
	case string:
		_, err = io.WriteString(pw, val)
	case nil:
	default:
		err = Binary.Encode(pw, val)
	}
	return err
}
