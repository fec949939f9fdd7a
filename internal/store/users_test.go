package store

import (
	"context"
	"testing"

	"go-pos-store/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, s *Store, username, password string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: password,
		Role:     "cashier",
		FullName: "Test User",
		IsActive: true,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestCreateUserHashesPassword(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice", "secret123")

	assert.NotEqual(t, "secret123", user.Password)

	stored, err := s.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "alice", "secret123")

	err := s.CreateUser(context.Background(), &models.User{
		Username: "alice", Password: "other", Role: "admin", IsActive: true,
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestLoginSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "alice", "secret123")

	user, err := s.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password, "login result must not carry the hash")
	require.NotNil(t, user.LastLogin)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "alice", "secret123")

	inactive := createTestUser(t, s, "bob", "secret123")
	active := false
	_, err := s.UpdateUser(ctx, inactive.ID, UserUpdate{IsActive: &active})
	require.NoError(t, err)

	cases := map[string]struct {
		username, password string
	}{
		"wrong password": {"alice", "wrong"},
		"unknown user":   {"nobody", "secret123"},
		"inactive user":  {"bob", "secret123"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Login(ctx, tc.username, tc.password)
			assert.ErrorIs(t, err, ErrNoMatch)
			assert.EqualError(t, err, ErrNoMatch.Error(), "failure cause must not leak")
		})
	}
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "alice", "secret123")

	newPass := "changed456"
	_, err := s.UpdateUser(ctx, user.ID, UserUpdate{Password: &newPass})
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrNoMatch)
	_, err = s.Login(ctx, "alice", "changed456")
	assert.NoError(t, err)
}

func TestUpdateUserEmptyPasswordKeepsOld(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "alice", "secret123")

	empty := ""
	_, err := s.UpdateUser(ctx, user.ID, UserUpdate{Password: &empty})
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "secret123")
	assert.NoError(t, err)
}

func TestVerifyPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "alice", "secret123")

	ok, err := s.VerifyPassword(ctx, user.ID, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyPassword(ctx, user.ID, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.VerifyPassword(ctx, 9999, "secret123")
	require.NoError(t, err)
	assert.False(t, ok, "missing user must look like a wrong password")
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "alice", "secret123")

	require.NoError(t, s.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, user.ID), ErrNotFound)

	_, err := s.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
