package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_BeforeCreate(t *testing.T) {
	u := &User{}
	require.NoError(t, u.BeforeCreate(nil))

	_, err := uuid.Parse(u.ID)
	assert.NoError(t, err)
	assert.NotNil(t, u.Bookings)
	assert.NotNil(t, u.Reviews)

	fixed := &User{ID: "keep-me"}
	require.NoError(t, fixed.BeforeCreate(nil))
	assert.Equal(t, "keep-me", fixed.ID)
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{ID: "1", Email: "a@x.com", PasswordHash: "$2a$10$secret"}

	payload, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "secret")
	assert.NotContains(t, string(payload), "PasswordHash")
}

func TestUser_ApplyProfile(t *testing.T) {
	stored := &User{
		ID:           "u1",
		Username:     "old",
		Email:        "old@x.com",
		PasswordHash: "hash",
		AssetPath:    "user_images/u1.png",
		IsAdmin:      false,
		Bookings:     []string{"b1"},
	}
	incoming := &User{
		ID:          "u1",
		Username:    "new",
		Email:       "new@x.com",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: "+44 20 7946 0000",
		IsAdmin:     true,
		AssetPath:   "../../etc/passwd",
	}

	stored.ApplyProfile(incoming)

	assert.Equal(t, "new", stored.Username)
	assert.Equal(t, "new@x.com", stored.Email)
	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "Lovelace", stored.LastName)
	assert.Equal(t, "+44 20 7946 0000", stored.PhoneNumber)
	assert.Equal(t, "hash", stored.PasswordHash)
	assert.False(t, stored.IsAdmin)
	assert.Equal(t, "user_images/u1.png", stored.AssetPath)
	assert.Equal(t, []string{"b1"}, stored.Bookings)
}
