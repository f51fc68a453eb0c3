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

package operation

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	werror "github.com/palantir/witchcraft-go-error"
)

// ResponseType selects how the request executor treats a successful response body.
type ResponseType int

const (
	// ResponseJSON decodes the body as JSON into the operation's result type.
	ResponseJSON ResponseType = iota
	// ResponseStream hands the open body to the caller as an io.ReadCloser.
	ResponseStream
)

// Descriptor is the fully resolved description of one request, ready for the request executor.
type Descriptor struct {
	OperationID  string
	Method       string
	PathTemplate string
	// Path is PathTemplate with every placeholder substituted.
	Path         string
	PathParams   map[string]string
	Query        url.Values
	Body         interface{}
	Form         []codecs.FormPart
	Headers      http.Header
	ResponseType ResponseType
}

// Request collects the pieces of one operation call. Absent optional values are
// never recorded, so they do not appear in the resulting Descriptor.
type Request struct {
	OperationID  string
	Method       string
	PathTemplate string
	ResponseType ResponseType

	pathParams map[string]string
	query      url.Values
	body       interface{}
	form       []codecs.FormPart
	headers    http.Header
}

// NewRequest starts a Request. defaultHeaders are the operation's own defaults and are copied.
func NewRequest(operationID, method, pathTemplate string, defaultHeaders http.Header) *Request {
	return &Request{
		OperationID:  operationID,
		Method:       method,
		PathTemplate: pathTemplate,
		pathParams:   make(map[string]string),
		query:        make(url.Values),
		headers:      defaultHeaders.Clone(),
	}
}

// PathParam sets the value for the {name} placeholder.
func (r *Request) PathParam(name string, value *string) *Request {
	if value != nil {
		r.pathParams[name] = *value
	}
	return r
}

// Query adds a query-string field when value is present.
func (r *Request) Query(name string, value interface{}) *Request {
	if s, ok := formatOptional(value); ok {
		r.query.Set(name, s)
	}
	return r
}

// Header sets an operation header when value is present.
func (r *Request) Header(name string, value interface{}) *Request {
	if s, ok := formatOptional(value); ok {
		if r.headers == nil {
			r.headers = make(http.Header)
		}
		r.headers.Set(name, s)
	}
	return r
}

// JSONBody sets the JSON request body. Optional fields of body should be tagged omitempty.
func (r *Request) JSONBody(body interface{}) *Request {
	r.body = body
	return r
}

// FormField adds a plain multipart field when value is present.
func (r *Request) FormField(name string, value interface{}) *Request {
	if s, ok := formatOptional(value); ok {
		r.form = append(r.form, codecs.FormPart{Name: name, Value: s})
	}
	return r
}

// FormFile adds a multipart file part when data is non-nil. A typed nil such as (*os.File)(nil)
// counts as absent. Empty filename and contentType are left for the encoder to default.
func (r *Request) FormFile(name string, data io.Reader, filename, contentType *string) *Request {
	if isNilReader(data) {
		return r
	}
	part := codecs.FormPart{Name: name, Value: data}
	if filename != nil {
		part.Filename = *filename
	}
	if contentType != nil {
		part.ContentType = *contentType
	}
	r.form = append(r.form, part)
	return r
}

var placeholderPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// Descriptor resolves r into a Descriptor. Headers are layered in increasing precedence:
// serviceHeaders, the operation's headers, then callHeaders.
func (r *Request) Descriptor(serviceHeaders, callHeaders http.Header) (*Descriptor, error) {
	var missing []string
	path := placeholderPattern.ReplaceAllStringFunc(r.PathTemplate, func(token string) string {
		name := token[1 : len(token)-1]
		v, ok := r.pathParams[name]
		if !ok {
			missing = append(missing, name)
			return token
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return nil, werror.Error("path template has unresolved placeholders",
			werror.SafeParam("operationId", r.OperationID),
			werror.SafeParam("pathTemplate", r.PathTemplate),
			werror.SafeParam("placeholders", missing))
	}
	if r.body != nil && len(r.form) > 0 {
		return nil, werror.Error("request cannot carry both a JSON body and form fields",
			werror.SafeParam("operationId", r.OperationID))
	}

	pathParams := make(map[string]string, len(r.pathParams))
	for k, v := range r.pathParams {
		pathParams[k] = v
	}
	var query url.Values
	if len(r.query) > 0 {
		query = make(url.Values, len(r.query))
		for k, v := range r.query {
			query[k] = append([]string(nil), v...)
		}
	}
	var form []codecs.FormPart
	if len(r.form) > 0 {
		form = append(form, r.form...)
	}
	return &Descriptor{
		OperationID:  r.OperationID,
		Method:       r.Method,
		PathTemplate: r.PathTemplate,
		Path:         path,
		PathParams:   pathParams,
		Query:        query,
		Body:         r.body,
		Form:         form,
		Headers:      MergeHeaders(serviceHeaders, r.headers, callHeaders),
		ResponseType: r.ResponseType,
	}, nil
}

// MergeHeaders layers header sets; a name present in a later set replaces all values from earlier sets.
func MergeHeaders(layers ...http.Header) http.Header {
	merged := make(http.Header)
	for _, layer := range layers {
		for k, v := range layer {
			merged[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return merged
}

func isNilReader(data io.Reader) bool {
	if data == nil {
		return true
	}
	switch rv := reflect.ValueOf(data); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func formatOptional(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case *bool:
		if v == nil {
			return "", false
		}
		return strconv.FormatBool(*v), true
	case *int64:
		if v == nil {
			return "", false
		}
		return strconv.FormatInt(*v, 10), true
	case *float32:
		if v == nil {
			return "", false
		}
		return strconv.FormatFloat(float64(*v), 'f', -1, 32), true
	case *float64:
		if v == nil {
			return "", false
		}
		return strconv.FormatFloat(*v, 'f', -1, 64), true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return strings.Join(v, ","), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface()), true
}
