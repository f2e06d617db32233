package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{Email: "test@example.com", Username: "testuser", Password: "hash"}

	require.NoError(t, user.BeforeCreate(nil))
	assert.NotEmpty(t, user.ID)

	existing := &User{ID: "existing-id-123", Username: "other"}
	require.NoError(t, existing.BeforeCreate(nil))
	assert.Equal(t, "existing-id-123", existing.ID)
}

func TestUser_ProfileHidesPrivateFields(t *testing.T) {
	user := &User{
		ID:       "u1",
		Email:    "alice@test.com",
		Username: "alice",
		FullName: "Alice Liddell",
		Avatar:   "https://cdn/avatar.png",
		Password: "secret-hash",
	}

	assert.Equal(t, Profile{Username: "alice", FullName: "Alice Liddell", Avatar: "https://cdn/avatar.png"}, user.Profile())

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice@test.com")
	assert.NotContains(t, string(raw), "secret-hash")
}
