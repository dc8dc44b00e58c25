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

package identity

import (
	"context"
	"testing"

	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepo) AddCredentials(ctx context.Context, credentials *Credentials) error {
	args := m.Called(ctx, credentials)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepo) GetCredentials(ctx context.Context, userID string) (*Credentials, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Credentials), args.Error(1)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

func testHasher() *PasswordHasher {
	// Cheap parameters so the suite stays fast.
	return NewPasswordHasher(1024, 1, 1, 16, 32)
}

func newTestService(repo *mockRepo) *Service {
	auditLogger := new(mockAudit)
	auditLogger.On("Log", mock.Anything, mock.Anything).Return()
	return NewService(repo, testHasher(), auditLogger)
}

func TestIdentity_NewUser_HashesPassword(t *testing.T) {
	service := newTestService(new(mockRepo))

	user, creds, err := service.NewUser("alice", "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, creds.UserID)
	assert.NotEqual(t, "correct-horse", creds.PasswordHash)

	ok, err := testHasher().Verify("correct-horse", creds.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdentity_NewUser_ShortPasswordRejected(t *testing.T) {
	service := newTestService(new(mockRepo))

	_, _, err := service.NewUser("alice", "alice@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

// TestPurpose: Validates authentication success and the uniform failure
// behavior for unknown users and wrong passwords.
// Security: The two failure modes must be indistinguishable to callers.
func TestIdentity_Authenticate(t *testing.T) {
	repo := new(mockRepo)
	service := newTestService(repo)
	ctx := context.Background()

	hash, err := testHasher().Hash("correct-horse")
	require.NoError(t, err)

	user := &User{ID: "u-1", Username: "alice"}
	repo.On("GetByUsername", ctx, "alice").Return(user, nil)
	repo.On("GetByUsername", ctx, "nobody").Return(nil, ErrUserNotFound)
	repo.On("GetCredentials", ctx, "u-1").Return(&Credentials{UserID: "u-1", PasswordHash: hash}, nil)

	got, err := service.Authenticate(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	_, err = service.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
