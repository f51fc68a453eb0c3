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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	"github.com/joho/godotenv"
	werror "github.com/palantir/witchcraft-go-error"
)

const (
	// CredentialsFileEnvVar names the environment variable pointing at a credentials file.
	CredentialsFileEnvVar = "IBM_CREDENTIALS_FILE"
	// CredentialsFileName is the credentials file looked up in the working and home directories.
	CredentialsFileName = "ibm-credentials.env"

	vcapServicesEnvVar = "VCAP_SERVICES"
)

// Credentials are the connection details of one service, as found in credential files,
// VCAP_SERVICES or the environment.
type Credentials struct {
	AuthType     string `json:"auth-type,omitempty" yaml:"auth-type,omitempty"`
	APIKey       string `json:"apikey,omitempty" yaml:"apikey,omitempty"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty"`
	Username     string `json:"username,omitempty" yaml:"username,omitempty"`
	Password     string `json:"password,omitempty" yaml:"password,omitempty"`
	IAMURL       string `json:"iam-url,omitempty" yaml:"iam-url,omitempty"`
	ClientID     string `json:"client-id,omitempty" yaml:"client-id,omitempty"`
	ClientSecret string `json:"client-secret,omitempty" yaml:"client-secret,omitempty"`
	BearerToken  string `json:"bearer-token,omitempty" yaml:"bearer-token,omitempty"`
	// AuthURL is the Cloud Pak for Data cluster URL.
	AuthURL    string `json:"auth-url,omitempty" yaml:"auth-url,omitempty"`
	DisableSSL bool   `json:"disable-ssl,omitempty" yaml:"disable-ssl,omitempty"`
}

// IsEmpty returns true if no authentication detail was found.
func (c Credentials) IsEmpty() bool {
	return c.AuthType == "" && c.APIKey == "" && c.Username == "" && c.Password == "" && c.BearerToken == ""
}

// ReadCredentials discovers the credentials of serviceName. Sources are merged in increasing precedence:
// the credentials file (IBM_CREDENTIALS_FILE, ./ibm-credentials.env or $HOME/ibm-credentials.env, the
// first that exists), the VCAP_SERVICES entry for the service, and <SERVICE_NAME>_* environment variables.
func ReadCredentials(serviceName string) (Credentials, error) {
	var creds Credentials
	prefix := envPrefix(serviceName)

	if path := credentialsFilePath(); path != "" {
		values, err := godotenv.Read(path)
		if err != nil {
			return Credentials{}, werror.Wrap(err, "failed to read credentials file", werror.SafeParam("path", path))
		}
		creds.apply(prefix, func(key string) string { return values[key] })
	}
	if err := creds.applyVCAP(serviceName); err != nil {
		return Credentials{}, err
	}
	creds.apply(prefix, os.Getenv)
	return creds, nil
}

func envPrefix(serviceName string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(serviceName)) + "_"
}

func credentialsFilePath() string {
	if path := os.Getenv(CredentialsFileEnvVar); path != "" {
		return path
	}
	candidates := []string{CredentialsFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, CredentialsFileName))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// apply overwrites every field whose <prefix><KEY> lookup is non-empty.
func (c *Credentials) apply(prefix string, lookup func(string) string) {
	for key, field := range map[string]*string{
		"AUTH_TYPE":     &c.AuthType,
		"APIKEY":        &c.APIKey,
		"URL":           &c.URL,
		"USERNAME":      &c.Username,
		"PASSWORD":      &c.Password,
		"IAM_URL":       &c.IAMURL,
		"CLIENT_ID":     &c.ClientID,
		"CLIENT_SECRET": &c.ClientSecret,
		"BEARER_TOKEN":  &c.BearerToken,
		"AUTH_URL":      &c.AuthURL,
	} {
		if v := lookup(prefix + key); v != "" {
			*field = v
		}
	}
	if v := lookup(prefix + "DISABLE_SSL"); v != "" {
		if disable, err := strconv.ParseBool(v); err == nil {
			c.DisableSSL = disable
		}
	}
}

type vcapCredentials struct {
	APIKey   string `json:"apikey"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	IAMURL   string `json:"iam_url"`
}

type vcapEntry struct {
	Name        string          `json:"name"`
	Credentials vcapCredentials `json:"credentials"`
}

func (c *Credentials) applyVCAP(serviceName string) error {
	raw := os.Getenv(vcapServicesEnvVar)
	if raw == "" {
		return nil
	}
	var services map[string][]vcapEntry
	if err := codecs.JSON.Unmarshal([]byte(raw), &services); err != nil {
		return werror.Wrap(err, "failed to parse VCAP_SERVICES")
	}
	entry, ok := findVCAPEntry(services, serviceName)
	if !ok {
		return nil
	}
	values := map[string]string{
		"APIKEY":   entry.Credentials.APIKey,
		"URL":      entry.Credentials.URL,
		"USERNAME": entry.Credentials.Username,
		"PASSWORD": entry.Credentials.Password,
		"IAM_URL":  entry.Credentials.IAMURL,
	}
	c.apply("", func(key string) string { return values[key] })
	return nil
}

// findVCAPEntry prefers the first entry listed under the service's own key, then any entry with a matching name.
func findVCAPEntry(services map[string][]vcapEntry, serviceName string) (vcapEntry, bool) {
	if entries := services[serviceName]; len(entries) > 0 {
		return entries[0], true
	}
	for _, entries := range services {
		for _, entry := range entries {
			if entry.Name == serviceName {
				return entry, true
			}
		}
	}
	return vcapEntry{}, false
}

// AuthenticatorFromCredentials builds the authenticator described by creds. Without an explicit auth type,
// an API key selects IAM, a bearer token selects bearer token authentication and a username selects basic
// authentication. A basic auth username of "apikey" is treated as an IAM API key.
func AuthenticatorFromCredentials(creds Credentials) (Authenticator, error) {
	authType := strings.ToLower(creds.AuthType)
	if authType == "" {
		switch {
		case creds.APIKey != "":
			authType = AuthTypeIAM
		case creds.BearerToken != "":
			authType = AuthTypeBearerToken
		case creds.Username != "" || creds.Password != "":
			authType = AuthTypeBasic
		default:
			return nil, werror.Error("no credentials found: provide an authenticator or set credentials")
		}
	}
	if authType == AuthTypeBasic && creds.Username == "apikey" {
		authType = AuthTypeIAM
		creds.APIKey = creds.Password
	}

	var auth Authenticator
	switch authType {
	case AuthTypeIAM:
		auth = &IAMAuthenticator{
			APIKey:                 creds.APIKey,
			URL:                    creds.IAMURL,
			ClientID:               creds.ClientID,
			ClientSecret:           creds.ClientSecret,
			DisableSSLVerification: creds.DisableSSL,
		}
	case AuthTypeBasic:
		auth = &BasicAuthenticator{Username: creds.Username, Password: creds.Password}
	case AuthTypeBearerToken:
		auth = NewBearerTokenAuthenticator(creds.BearerToken)
	case AuthTypeCP4D, "icp4d":
		auth = &CP4DAuthenticator{
			URL:                    creds.AuthURL,
			Username:               creds.Username,
			Password:               creds.Password,
			DisableSSLVerification: creds.DisableSSL,
		}
	case AuthTypeNoAuth:
		auth = NoAuthAuthenticator{}
	default:
		return nil, werror.Error("unsupported authentication type", werror.SafeParam("authType", creds.AuthType))
	}
	if err := auth.Validate(); err != nil {
		return nil, err
	}
	return auth, nil
}
