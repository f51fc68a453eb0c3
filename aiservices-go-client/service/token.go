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
	"sync"
	"time"

	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
)

// refreshFraction is the share of a token's lifetime after which it is refreshed.
const refreshFraction = 0.8

type accessToken struct {
	value      string
	expiration time.Time
	refreshAt  time.Time
}

func newAccessToken(value string, issuedAt, expiration time.Time) accessToken {
	lifetime := expiration.Sub(issuedAt)
	return accessToken{
		value:      value,
		expiration: expiration,
		refreshAt:  issuedAt.Add(time.Duration(float64(lifetime) * refreshFraction)),
	}
}

// tokenCache hands out a cached token and fetches a new one once the cached token is due for refresh.
// Concurrent callers share a single fetch.
type tokenCache struct {
	name  string
	fetch func(ctx context.Context) (accessToken, error)
	now   func() time.Time

	mu      sync.Mutex
	current *accessToken
}

func (c *tokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.current != nil && now.Before(c.current.refreshAt) {
		return c.current.value, nil
	}
	tok, err := c.fetch(ctx)
	if err != nil {
		if c.current != nil && now.Before(c.current.expiration) {
			svc1log.FromContext(ctx).Warn("Failed to refresh access token, using unexpired cached token",
				svc1log.SafeParam("tokenSource", c.name),
				svc1log.Stacktrace(err))
			return c.current.value, nil
		}
		return "", werror.WrapWithContextParams(ctx, err, "failed to obtain access token", werror.SafeParam("tokenSource", c.name))
	}
	if tok.value == "" {
		return "", werror.ErrorWithContextParams(ctx, "token endpoint returned an empty access token", werror.SafeParam("tokenSource", c.name))
	}
	c.current = &tok
	svc1log.FromContext(ctx).Debug("Obtained access token",
		svc1log.SafeParam("tokenSource", c.name),
		svc1log.SafeParam("expiration", tok.expiration.UTC().Format(time.RFC3339)))
	return tok.value, nil
}

func (c *tokenCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
