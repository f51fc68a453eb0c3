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
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/aiservices/aiservices-go/aiservices-go-client/operation"
	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	"github.com/palantir/pkg/refreshable"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
	wparams "github.com/palantir/witchcraft-go-params"
)

const versionQueryParam = "version"

// BaseService is the request executor shared by the operations of one service.
type BaseService struct {
	conf    Config
	auth    Authenticator
	urls    *refreshable.DefaultRefreshable
	client  httpclient.Client
	invoker *operation.Invoker
}

var _ operation.Executor = (*BaseService)(nil)

// NewBaseService validates conf and builds the HTTP client. The service URL is conf.URL, else the URL of
// discovered credentials, else defaultURL. params are applied after the configuration.
func NewBaseService(conf Config, defaultURL string, params ...httpclient.ClientParam) (*BaseService, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	auth, serviceURL := conf.Authenticator, conf.URL
	if auth == nil || serviceURL == "" {
		creds, err := ReadCredentials(conf.ServiceName)
		if err != nil {
			return nil, err
		}
		if serviceURL == "" {
			serviceURL = creds.URL
		}
		if auth == nil {
			if auth, err = AuthenticatorFromCredentials(creds); err != nil {
				return nil, werror.Wrap(err, "failed to configure authentication", werror.SafeParam("serviceName", conf.ServiceName))
			}
		}
		if creds.DisableSSL {
			conf.DisableSSLVerification = true
		}
	}
	if serviceURL == "" {
		serviceURL = defaultURL
	}
	if err := validateServiceURL(serviceURL); err != nil {
		return nil, err
	}
	if err := auth.Validate(); err != nil {
		return nil, err
	}

	urls := refreshable.NewDefaultRefreshable([]string{serviceURL})
	clientConf := conf.HTTPClient
	clientConf.ServiceName = conf.ServiceName
	clientParams := []httpclient.ClientParam{
		httpclient.WithConfig(clientConf),
		httpclient.WithRefreshableBaseURLs(refreshable.NewStringSlice(urls)),
		httpclient.WithMiddleware(middleware(auth)),
	}
	if conf.DisableSSLVerification {
		clientParams = append(clientParams, httpclient.WithTLSInsecureSkipVerify())
	}
	client, err := httpclient.NewClient(append(clientParams, params...)...)
	if err != nil {
		return nil, err
	}

	conf.Authenticator = auth
	conf.Headers = conf.Headers.Clone()
	s := &BaseService{
		conf:   conf,
		auth:   auth,
		urls:   urls,
		client: client,
	}
	s.invoker = &operation.Invoker{Executor: s, Headers: conf.Headers}
	return s, nil
}

// Invoker returns the invoker operations dispatch through.
func (s *BaseService) Invoker() *operation.Invoker {
	return s.invoker
}

// Config returns the effective configuration, including the discovered authenticator.
func (s *BaseService) Config() Config {
	return s.conf
}

// Authenticator returns the authenticator applied to every request.
func (s *BaseService) Authenticator() Authenticator {
	return s.auth
}

// ServiceURL returns the base URL requests are currently sent to.
func (s *BaseService) ServiceURL() string {
	return s.urls.Current().([]string)[0]
}

// SetServiceURL changes the base URL for subsequent requests.
func (s *BaseService) SetServiceURL(serviceURL string) error {
	if err := validateServiceURL(serviceURL); err != nil {
		return err
	}
	return s.urls.Update([]string{serviceURL})
}

func validateServiceURL(serviceURL string) error {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return werror.Wrap(err, "invalid service url")
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return werror.Error("service url must be an absolute http or https url", werror.UnsafeParam("url", serviceURL))
	}
	return nil
}

// Execute sends desc and decodes a successful response into output. Stream responses are stored
// into output, which must then be an *io.ReadCloser the caller closes.
func (s *BaseService) Execute(ctx context.Context, desc *operation.Descriptor, output interface{}) (*operation.RawResponse, error) {
	query := make(url.Values, len(desc.Query)+1)
	for k, v := range desc.Query {
		query[k] = v
	}
	query.Set(versionQueryParam, s.conf.Version)

	params := []httpclient.RequestParam{
		httpclient.WithRPCMethodName(desc.OperationID),
		httpclient.WithRequestMethod(desc.Method),
		httpclient.WithPath(desc.Path),
		httpclient.WithQueryValues(query),
	}
	headers := desc.Headers
	switch {
	case len(desc.Form) > 0:
		params = append(params, httpclient.WithMultipartRequest(codecs.NewForm(desc.Form...)))
		// The encoder's Content-Type carries the boundary.
		if ct := headers.Get("Content-Type"); strings.HasPrefix(ct, "multipart/") && !strings.Contains(ct, "boundary=") {
			headers = headers.Clone()
			headers.Del("Content-Type")
		}
	case desc.Body != nil:
		params = append(params, httpclient.WithJSONRequest(desc.Body))
	}
	if desc.ResponseType == operation.ResponseStream {
		params = append(params, httpclient.WithRawResponseBody())
	} else {
		params = append(params, httpclient.WithJSONResponse(output))
	}
	params = append(params, httpclient.WithHeaders(headers))

	resp, err := s.client.Do(ctx, params...)
	if err != nil {
		return nil, err
	}
	svc1log.FromContext(ctx).Debug("Operation completed",
		svc1log.Params(wparams.NewSafeAndUnsafeParamStorer(
			map[string]interface{}{
				"operationId":   desc.OperationID,
				"statusCode":    resp.StatusCode,
				"transactionId": resp.Header.Get(httpclient.TransactionIDHeader),
			},
			map[string]interface{}{
				"path": desc.Path,
			})))

	if desc.ResponseType == operation.ResponseStream {
		body, ok := output.(*io.ReadCloser)
		if !ok {
			_ = resp.Body.Close()
			return nil, werror.ErrorWithContextParams(ctx, "stream responses require an *io.ReadCloser output",
				werror.SafeParam("operationId", desc.OperationID))
		}
		*body = resp.Body
	}
	return &operation.RawResponse{StatusCode: resp.StatusCode, Headers: resp.Header}, nil
}

// DefaultHeaders returns a copy of the headers sent with every request of the service.
func (s *BaseService) DefaultHeaders() http.Header {
	return s.conf.Headers.Clone()
}
