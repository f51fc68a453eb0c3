// Copyright (c) 2024 Palantir Technologies. All rights reserved.
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

package httpclient

import (
	"os"
	"strings"
	"time"

	"github.com/palantir/pkg/metrics"
	"github.com/palantir/pkg/tlsconfig"
	werror "github.com/palantir/witchcraft-go-error"
)

// ServicesConfig is the top-level transport configuration for all service clients. It supports
// setting default values and overriding those values per service. Use ClientConfig(serviceName)
// to retrieve a specific service's configuration, and WithConfig to apply it to a Client.
type ServicesConfig struct {
	// Default values will be used for any field which is not set for a specific client.
	Default ClientConfig `json:",inline" yaml:",inline"`
	// Services is a map of serviceName (e.g. "natural-language-understanding") to service-specific configuration.
	Services map[string]ClientConfig `json:"services,omitempty" yaml:"services,omitempty"`
}

// ClientConfig represents the transport configuration for a single service client.
type ClientConfig struct {
	ServiceName string `json:"-" yaml:"-"`
	// URIs is a list of fully specified base URIs for the service. These can optionally include a path
	// which will be prepended to the request path.
	URIs []string `json:"uris,omitempty" yaml:"uris,omitempty"`
	// APIToken is a string which, if provided, will be used as a Bearer token in the Authorization header.
	// This takes precedence over APITokenFile.
	APIToken *string `json:"api-token,omitempty" yaml:"api-token,omitempty"`
	// APITokenFile is an on-disk location containing a Bearer token.
	APITokenFile *string `json:"api-token-file,omitempty" yaml:"api-token-file,omitempty"`
	// BasicAuth is used when neither APIToken nor APITokenFile is set.
	BasicAuth *BasicAuth `json:"basic-auth,omitempty" yaml:"basic-auth,omitempty"`
	// DisableHTTP2, if true, will prevent the client from modifying the *tls.Config object to support H2 connections.
	DisableHTTP2 *bool `json:"disable-http2,omitempty" yaml:"disable-http2,omitempty"`
	// ProxyFromEnvironment enables reading HTTP proxy information from environment variables. Defaults to true.
	ProxyFromEnvironment *bool `json:"proxy-from-environment,omitempty" yaml:"proxy-from-environment,omitempty"`
	// ProxyURL uses the provided URL for proxying the request. Schemes http, https, and socks5 are supported.
	ProxyURL *string `json:"proxy-url,omitempty" yaml:"proxy-url,omitempty"`

	// MaxNumRetries controls the number of times the client will retry throttled or unavailable responses
	// and failed connections. Defaults to 0.
	MaxNumRetries *int `json:"max-num-retries,omitempty" yaml:"max-num-retries,omitempty"`
	// InitialBackoff controls the duration of the first backoff interval. This delay will double for each subsequent backoff, capped at the MaxBackoff value.
	InitialBackoff *time.Duration `json:"initial-backoff,omitempty" yaml:"initial-backoff,omitempty"`
	// MaxBackoff controls the maximum duration the client will sleep before retrying a request.
	MaxBackoff *time.Duration `json:"max-backoff,omitempty" yaml:"max-backoff,omitempty"`

	// ConnectTimeout is the maximum time for the net.Dialer to connect to the remote host.
	ConnectTimeout *time.Duration `json:"connect-timeout,omitempty" yaml:"connect-timeout,omitempty"`
	// ReadTimeout and WriteTimeout bound whole requests; the larger of the two is used as the http.Client timeout.
	ReadTimeout  *time.Duration `json:"read-timeout,omitempty" yaml:"read-timeout,omitempty"`
	WriteTimeout *time.Duration `json:"write-timeout,omitempty" yaml:"write-timeout,omitempty"`
	// IdleConnTimeout sets the timeout for idle connections.
	IdleConnTimeout *time.Duration `json:"idle-conn-timeout,omitempty" yaml:"idle-conn-timeout,omitempty"`
	// TLSHandshakeTimeout sets the timeout for TLS handshakes
	TLSHandshakeTimeout *time.Duration `json:"tls-handshake-timeout,omitempty" yaml:"tls-handshake-timeout,omitempty"`
	// ResponseHeaderTimeout, if non-zero, specifies the amount of time to wait for a server's response headers after fully
	// writing the request. Image uploads can take a while to be processed, so this is unset by default.
	ResponseHeaderTimeout *time.Duration `json:"response-header-timeout,omitempty" yaml:"response-header-timeout,omitempty"`
	// KeepAlive sets the time to keep idle connections alive. If set to 0, the client will not keep connections alive.
	KeepAlive *time.Duration `json:"keep-alive,omitempty" yaml:"keep-alive,omitempty"`
	// HTTP2ReadIdleTimeout sets the maximum time to wait before sending periodic health checks (pings) for an HTTP/2 connection.
	HTTP2ReadIdleTimeout *time.Duration `json:"http2-read-idle-timeout,omitempty" yaml:"http2-read-idle-timeout,omitempty"`
	// HTTP2PingTimeout is the maximum time to wait for a ping response in an HTTP/2 connection.
	HTTP2PingTimeout *time.Duration `json:"http2-ping-timeout,omitempty" yaml:"http2-ping-timeout,omitempty"`
	// MaxIdleConns sets the number of reusable TCP connections the client will maintain.
	MaxIdleConns *int `json:"max-idle-conns,omitempty" yaml:"max-idle-conns,omitempty"`
	// MaxIdleConnsPerHost sets the number of reusable TCP connections the client will maintain per destination.
	MaxIdleConnsPerHost *int `json:"max-idle-conns-per-host,omitempty" yaml:"max-idle-conns-per-host,omitempty"`

	// Metrics allows disabling metric emission or adding additional static tags to the client metrics.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	// Security configures the TLS configuration for the client. It accepts file paths which should be
	// absolute paths or relative to the process's current working directory.
	Security SecurityConfig `json:"security,omitempty" yaml:"security,omitempty"`
}

// BasicAuth represents the configuration for HTTP Basic Authorization
type BasicAuth struct {
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

type MetricsConfig struct {
	// Enabled can be used to disable metrics with an explicit 'false'. Metrics are enabled if this is unset.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Tags allows setting arbitrary additional tags on the metrics emitted by the client.
	Tags map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type SecurityConfig struct {
	CAFiles  []string `json:"ca-files,omitempty" yaml:"ca-files,omitempty"`
	CertFile string   `json:"cert-file,omitempty" yaml:"cert-file,omitempty"`
	KeyFile  string   `json:"key-file,omitempty" yaml:"key-file,omitempty"`

	// InsecureSkipVerify disables server certificate verification. It matches the services'
	// disable_ssl_verification option and should only be used against trusted private deployments.
	InsecureSkipVerify *bool `json:"insecure-skip-verify,omitempty" yaml:"insecure-skip-verify,omitempty"`
}

// ClientConfig returns the default configuration merged with service-specific configuration.
// If the serviceName is not in the service map, an empty configuration (plus defaults) is used.
func (c ServicesConfig) ClientConfig(serviceName string) ClientConfig {
	conf := c.Services[serviceName]
	conf.ServiceName = serviceName
	return MergeClientConfig(conf, c.Default)
}

// MergeClientConfig merges two instances of ClientConfig, preferring values from conf over defaults.
// The ServiceName field is not affected.
func MergeClientConfig(conf, defaults ClientConfig) ClientConfig {
	if len(conf.URIs) == 0 {
		conf.URIs = defaults.URIs
	}
	mergePtr(&conf.APIToken, defaults.APIToken)
	mergePtr(&conf.APITokenFile, defaults.APITokenFile)
	mergePtr(&conf.BasicAuth, defaults.BasicAuth)
	mergePtr(&conf.DisableHTTP2, defaults.DisableHTTP2)
	mergePtr(&conf.ProxyFromEnvironment, defaults.ProxyFromEnvironment)
	mergePtr(&conf.ProxyURL, defaults.ProxyURL)
	mergePtr(&conf.MaxNumRetries, defaults.MaxNumRetries)
	mergePtr(&conf.InitialBackoff, defaults.InitialBackoff)
	mergePtr(&conf.MaxBackoff, defaults.MaxBackoff)
	mergePtr(&conf.ConnectTimeout, defaults.ConnectTimeout)
	mergePtr(&conf.ReadTimeout, defaults.ReadTimeout)
	mergePtr(&conf.WriteTimeout, defaults.WriteTimeout)
	mergePtr(&conf.IdleConnTimeout, defaults.IdleConnTimeout)
	mergePtr(&conf.TLSHandshakeTimeout, defaults.TLSHandshakeTimeout)
	mergePtr(&conf.ResponseHeaderTimeout, defaults.ResponseHeaderTimeout)
	mergePtr(&conf.KeepAlive, defaults.KeepAlive)
	mergePtr(&conf.HTTP2ReadIdleTimeout, defaults.HTTP2ReadIdleTimeout)
	mergePtr(&conf.HTTP2PingTimeout, defaults.HTTP2PingTimeout)
	mergePtr(&conf.MaxIdleConns, defaults.MaxIdleConns)
	mergePtr(&conf.MaxIdleConnsPerHost, defaults.MaxIdleConnsPerHost)
	mergePtr(&conf.Metrics.Enabled, defaults.Metrics.Enabled)
	mergePtr(&conf.Security.InsecureSkipVerify, defaults.Security.InsecureSkipVerify)

	if len(defaults.Metrics.Tags) != 0 {
		tags := make(map[string]string, len(defaults.Metrics.Tags)+len(conf.Metrics.Tags))
		for k, v := range defaults.Metrics.Tags {
			tags[k] = v
		}
		for k, v := range conf.Metrics.Tags {
			tags[k] = v
		}
		conf.Metrics.Tags = tags
	}
	if conf.Security.CAFiles == nil {
		conf.Security.CAFiles = defaults.Security.CAFiles
	}
	if conf.Security.CertFile == "" {
		conf.Security.CertFile = defaults.Security.CertFile
	}
	if conf.Security.KeyFile == "" {
		conf.Security.KeyFile = defaults.Security.KeyFile
	}
	return conf
}

func mergePtr[T any](dst **T, fallback *T) {
	if *dst == nil {
		*dst = fallback
	}
}

// WithConfig applies every field set in config. Unset fields keep the client's defaults.
func WithConfig(c ClientConfig) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		params, err := configToParams(c)
		if err != nil {
			return err
		}
		for _, p := range params {
			if err := p.apply(b); err != nil {
				return err
			}
		}
		return nil
	})
}

func configToParams(c ClientConfig) ([]ClientParam, error) {
	var params []ClientParam

	if c.ServiceName != "" {
		params = append(params, WithServiceName(c.ServiceName))
	}
	if len(c.URIs) > 0 {
		params = append(params, WithBaseURLs(c.URIs))
	}

	switch {
	case c.APIToken != nil:
		params = append(params, WithAuthToken(*c.APIToken))
	case c.APITokenFile != nil:
		token, err := os.ReadFile(*c.APITokenFile)
		if err != nil {
			return nil, werror.Wrap(err, "failed to read api-token-file", werror.SafeParam("file", *c.APITokenFile))
		}
		params = append(params, WithAuthToken(strings.TrimSpace(string(token))))
	case c.BasicAuth != nil && c.BasicAuth.User != "" && c.BasicAuth.Password != "":
		params = append(params, WithBasicAuth(c.BasicAuth.User, c.BasicAuth.Password))
	}

	if c.DisableHTTP2 != nil && *c.DisableHTTP2 {
		params = append(params, WithDisableHTTP2())
	}
	if c.ProxyFromEnvironment != nil && !*c.ProxyFromEnvironment {
		params = append(params, WithNoProxy())
	}
	if c.ProxyURL != nil {
		params = append(params, WithProxyURL(*c.ProxyURL))
	}

	if c.MaxNumRetries != nil {
		params = append(params, WithMaxRetries(*c.MaxNumRetries))
	}
	if c.InitialBackoff != nil {
		params = append(params, WithInitialBackoff(*c.InitialBackoff))
	}
	if c.MaxBackoff != nil {
		params = append(params, WithMaxBackoff(*c.MaxBackoff))
	}

	if c.ConnectTimeout != nil {
		params = append(params, WithDialTimeout(*c.ConnectTimeout))
	}
	if c.ReadTimeout != nil || c.WriteTimeout != nil {
		var timeout time.Duration
		for _, t := range []*time.Duration{c.ReadTimeout, c.WriteTimeout} {
			if t != nil && *t > timeout {
				timeout = *t
			}
		}
		params = append(params, WithHTTPTimeout(timeout))
	}
	if c.IdleConnTimeout != nil {
		params = append(params, WithIdleConnTimeout(*c.IdleConnTimeout))
	}
	if c.TLSHandshakeTimeout != nil {
		params = append(params, WithTLSHandshakeTimeout(*c.TLSHandshakeTimeout))
	}
	if c.ResponseHeaderTimeout != nil {
		params = append(params, WithResponseHeaderTimeout(*c.ResponseHeaderTimeout))
	}
	if c.KeepAlive != nil {
		params = append(params, WithKeepAlive(*c.KeepAlive))
	}
	if c.HTTP2ReadIdleTimeout != nil || c.HTTP2PingTimeout != nil {
		params = append(params, WithHTTP2ReadIdleTimeout(
			derefPtr(c.HTTP2ReadIdleTimeout, defaultHTTP2ReadIdleTimeout),
			derefPtr(c.HTTP2PingTimeout, defaultHTTP2PingTimeout)))
	}
	if c.MaxIdleConns != nil || c.MaxIdleConnsPerHost != nil {
		params = append(params, WithMaxIdleConns(
			derefPtr(c.MaxIdleConns, defaultMaxIdleConns),
			derefPtr(c.MaxIdleConnsPerHost, defaultMaxIdleConnsPerHost)))
	}

	if c.Metrics.Enabled != nil && !*c.Metrics.Enabled {
		params = append(params, WithDisableMetrics())
	}
	if len(c.Metrics.Tags) > 0 {
		tags, err := metrics.NewTags(c.Metrics.Tags)
		if err != nil {
			return nil, werror.Wrap(err, "invalid metrics tags")
		}
		params = append(params, WithMetricsTagProviders(StaticTagsProvider(tags)))
	}

	tlsParams, err := tlsParamsFromConfig(c.Security)
	if err != nil {
		return nil, err
	}
	if tlsParams != nil {
		params = append(params, tlsParams)
	}
	if c.Security.InsecureSkipVerify != nil && *c.Security.InsecureSkipVerify {
		params = append(params, WithTLSInsecureSkipVerify())
	}
	return params, nil
}

func tlsParamsFromConfig(c SecurityConfig) (ClientParam, error) {
	var tlsParams []tlsconfig.ClientParam
	if len(c.CAFiles) > 0 {
		tlsParams = append(tlsParams, tlsconfig.ClientRootCAFiles(c.CAFiles...))
	}
	if c.CertFile != "" && c.KeyFile != "" {
		tlsParams = append(tlsParams, tlsconfig.ClientKeyPairFiles(c.CertFile, c.KeyFile))
	}
	if len(tlsParams) == 0 {
		return nil, nil
	}
	tlsConfig, err := tlsconfig.NewClientConfig(tlsParams...)
	if err != nil {
		return nil, werror.Wrap(err, "failed to build TLS configuration")
	}
	return WithTLSConfig(tlsConfig), nil
}

func derefPtr[T any](ptr *T, defaultVal T) T {
	if ptr == nil {
		return defaultVal
	}
	return *ptr
}
