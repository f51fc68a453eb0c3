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

package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/palantir/pkg/refreshable"
	werror "github.com/palantir/witchcraft-go-error"
)

// Authentication types, as named in credential files and the AUTH_TYPE environment variable.
const (
	AuthTypeNoAuth      = "noauth"
	AuthTypeBasic       = "basic"
	AuthTypeBearerToken = "bearertoken"
	AuthTypeIAM         = "iam"
	AuthTypeCP4D        = "cp4d"
)

// Authenticator adds credentials to outgoing requests.
type Authenticator interface {
	AuthenticationType() string
	// Authenticate sets the Authorization header of req. It may block to obtain a token.
	Authenticate(req *http.Request) error
	// Validate reports configuration problems before any request is made.
	Validate() error
}

// middleware adapts an Authenticator to the httpclient middleware chain.
func middleware(a Authenticator) httpclient.Middleware {
	return httpclient.MiddlewareFunc(func(req *http.Request, next http.RoundTripper) (*http.Response, error) {
		if err := a.Authenticate(req); err != nil {
			return nil, werror.WrapWithContextParams(req.Context(), err, "failed to authenticate request",
				werror.SafeParam("authType", a.AuthenticationType()))
		}
		return next.RoundTrip(req)
	})
}

// NoAuthAuthenticator sends requests without credentials.
type NoAuthAuthenticator struct{}

func (NoAuthAuthenticator) AuthenticationType() string { return AuthTypeNoAuth }

func (NoAuthAuthenticator) Authenticate(*http.Request) error { return nil }

func (NoAuthAuthenticator) Validate() error { return nil }

// BasicAuthenticator sends a username and password with every request.
type BasicAuthenticator struct {
	Username string
	Password string
}

func (a *BasicAuthenticator) AuthenticationType() string { return AuthTypeBasic }

func (a *BasicAuthenticator) Authenticate(req *http.Request) error {
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

func (a *BasicAuthenticator) Validate() error {
	if a.Username == "" || a.Password == "" {
		return werror.Error("basic authentication requires a username and password")
	}
	if hasBadChars(a.Username) || hasBadChars(a.Password) {
		return werror.Error("basic authentication credentials must not start or end with curly brackets or quotes")
	}
	return nil
}

// BearerTokenAuthenticator sends a token managed by the application. Refreshing the token
// before it expires is the application's responsibility; use SetToken to replace it.
type BearerTokenAuthenticator struct {
	token *refreshable.DefaultRefreshable
}

// NewBearerTokenAuthenticator returns an authenticator sending token.
func NewBearerTokenAuthenticator(token string) *BearerTokenAuthenticator {
	return &BearerTokenAuthenticator{token: refreshable.NewDefaultRefreshable(token)}
}

func (a *BearerTokenAuthenticator) AuthenticationType() string { return AuthTypeBearerToken }

// SetToken replaces the token sent with subsequent requests.
func (a *BearerTokenAuthenticator) SetToken(token string) {
	_ = a.token.Update(token)
}

func (a *BearerTokenAuthenticator) currentToken() string {
	return a.token.Current().(string)
}

func (a *BearerTokenAuthenticator) Authenticate(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.currentToken())
	return nil
}

func (a *BearerTokenAuthenticator) Validate() error {
	if a.currentToken() == "" {
		return werror.Error("bearer token authentication requires a token")
	}
	return nil
}

// tokenSource is implemented by authenticators that obtain tokens from a token endpoint.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

func authenticateWithToken(src tokenSource, req *http.Request) error {
	token, err := src.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func hasBadChars(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasSuffix(s, "}") ||
		strings.HasPrefix(s, `"`) || strings.HasSuffix(s, `"`)
}
