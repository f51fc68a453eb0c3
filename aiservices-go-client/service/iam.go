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
	"net/url"
	"sync"
	"time"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	werror "github.com/palantir/witchcraft-go-error"
)

const (
	// DefaultIAMURL is the token endpoint used when IAMAuthenticator.URL is empty.
	DefaultIAMURL = "https://iam.cloud.ibm.com/identity/token"

	iamGrantType = "urn:ibm:params:oauth:grant-type:apikey"
	// The token endpoint requires client credentials; these are the public defaults.
	iamDefaultClientID     = "bx"
	iamDefaultClientSecret = "bx"
)

// IAMAuthenticator exchanges an API key for access tokens at an IAM token endpoint. Tokens are cached
// and refreshed once 80% of their lifetime has elapsed.
type IAMAuthenticator struct {
	APIKey string
	// URL is the token endpoint. Defaults to DefaultIAMURL.
	URL string
	// ClientID and ClientSecret are sent as basic auth to the token endpoint. Set both or neither.
	ClientID     string
	ClientSecret string

	DisableSSLVerification bool

	initOnce sync.Once
	initErr  error
	client   httpclient.Client
	cache    tokenCache
}

type iamTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Expiration   int64  `json:"expiration"`
}

func (a *IAMAuthenticator) AuthenticationType() string { return AuthTypeIAM }

func (a *IAMAuthenticator) Validate() error {
	if a.APIKey == "" {
		return werror.Error("iam authentication requires an api key")
	}
	if hasBadChars(a.APIKey) {
		return werror.Error("iam api key must not start or end with curly brackets or quotes")
	}
	if (a.ClientID == "") != (a.ClientSecret == "") {
		return werror.Error("iam client id and client secret must be set together")
	}
	return nil
}

func (a *IAMAuthenticator) Authenticate(req *http.Request) error {
	return authenticateWithToken(a, req)
}

// Token returns a valid access token, requesting a new one when needed.
func (a *IAMAuthenticator) Token(ctx context.Context) (string, error) {
	a.initOnce.Do(a.init)
	if a.initErr != nil {
		return "", a.initErr
	}
	return a.cache.Token(ctx)
}

func (a *IAMAuthenticator) init() {
	tokenURL := a.URL
	if tokenURL == "" {
		tokenURL = DefaultIAMURL
	}
	clientID, clientSecret := a.ClientID, a.ClientSecret
	if clientID == "" {
		clientID, clientSecret = iamDefaultClientID, iamDefaultClientSecret
	}
	params := []httpclient.ClientParam{
		httpclient.WithServiceName("iam"),
		httpclient.WithBaseURLs([]string{tokenURL}),
		httpclient.WithBasicAuth(clientID, clientSecret),
	}
	if a.DisableSSLVerification {
		params = append(params, httpclient.WithTLSInsecureSkipVerify())
	}
	a.client, a.initErr = httpclient.NewClient(params...)
	a.cache.name = AuthTypeIAM
	a.cache.fetch = a.requestToken
}

func (a *IAMAuthenticator) requestToken(ctx context.Context) (accessToken, error) {
	form := url.Values{
		"grant_type":    {iamGrantType},
		"apikey":        {a.APIKey},
		"response_type": {"cloud_iam"},
	}
	var resp iamTokenResponse
	if _, err := a.client.Post(ctx,
		httpclient.WithRPCMethodName("requestToken"),
		httpclient.WithRequestBody(form, codecs.FormURLEncoded),
		httpclient.WithJSONResponse(&resp),
	); err != nil {
		return accessToken{}, err
	}
	expiration := time.Unix(resp.Expiration, 0)
	issuedAt := expiration.Add(-time.Duration(resp.ExpiresIn) * time.Second)
	return newAccessToken(resp.AccessToken, issuedAt, expiration), nil
}
