// Copyright 2026 The Ofisi Authors
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

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "ofisi", time.Hour)

	token, err := issuer.Issue("u-1")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestToken_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "ofisi", -time.Minute)

	token, err := issuer.Issue("u-1")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestToken_WrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "ofisi", time.Hour)
	other := NewTokenIssuer([]byte("another-secret-also-32-bytes-long!"), "ofisi", time.Hour)

	token, err := issuer.Issue("u-1")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_GarbageRejected(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "ofisi", time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
