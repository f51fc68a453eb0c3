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
	"sync"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/golang-jwt/jwt/v5"
	werror "github.com/palantir/witchcraft-go-error"
)

const cp4dTokenPath = "/v1/preauth/validateAuth"

// CP4DAuthenticator obtains access tokens from a Cloud Pak for Data cluster using a username and
// password. The token's lifetime is read from its exp and iat claims.
type CP4DAuthenticator struct {
	// URL is the base URL of the cluster, without the token path.
	URL      string
	Username string
	Password string

	DisableSSLVerification bool

	initOnce sync.Once
	initErr  error
	client   httpclient.Client
	cache    tokenCache
}

type cp4dTokenResponse struct {
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

func (a *CP4DAuthenticator) AuthenticationType() string { return AuthTypeCP4D }

func (a *CP4DAuthenticator) Validate() error {
	if a.URL == "" {
		return werror.Error("cp4d authentication requires the cluster url")
	}
	if a.Username == "" || a.Password == "" {
		return werror.Error("cp4d authentication requires a username and password")
	}
	if hasBadChars(a.Username) || hasBadChars(a.Password) {
		return werror.Error("cp4d credentials must not start or end with curly brackets or quotes")
	}
	return nil
}

func (a *CP4DAuthenticator) Authenticate(req *http.Request) error {
	return authenticateWithToken(a, req)
}

// Token returns a valid access token, requesting a new one when needed.
func (a *CP4DAuthenticator) Token(ctx context.Context) (string, error) {
	a.initOnce.Do(a.init)
	if a.initErr != nil {
		return "", a.initErr
	}
	return a.cache.Token(ctx)
}

func (a *CP4DAuthenticator) init() {
	params := []httpclient.ClientParam{
		httpclient.WithServiceName("cp4d"),
		httpclient.WithBaseURLs([]string{a.URL}),
		httpclient.WithBasicAuth(a.Username, a.Password),
	}
	if a.DisableSSLVerification {
		params = append(params, httpclient.WithTLSInsecureSkipVerify())
	}
	a.client, a.initErr = httpclient.NewClient(params...)
	a.cache.name = AuthTypeCP4D
	a.cache.fetch = a.requestToken
}

func (a *CP4DAuthenticator) requestToken(ctx context.Context) (accessToken, error) {
	var resp cp4dTokenResponse
	if _, err := a.client.Get(ctx,
		httpclient.WithRPCMethodName("validateAuth"),
		httpclient.WithPath(cp4dTokenPath),
		httpclient.WithJSONResponse(&resp),
	); err != nil {
		return accessToken{}, err
	}
	return parseJWTLifetime(resp.AccessToken)
}

// parseJWTLifetime reads the lifetime of a token without verifying its signature; the token is only
// forwarded to the service, which performs verification.
func parseJWTLifetime(token string) (accessToken, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return accessToken{}, werror.Wrap(err, "failed to parse access token")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return accessToken{}, werror.Error("access token has no valid exp claim")
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return accessToken{}, werror.Error("access token has no valid iat claim")
	}
	return newAccessToken(token, iat.Time, exp.Time), nil
}
