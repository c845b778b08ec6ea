package service_test

import (
	"cardparty/internal/service"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	auth := service.NewAuthService("owner", "hunter2", "test-secret")

	resp, err := auth.Login("owner", "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.UserID, "user_"))
	require.NotEmpty(t, resp.Token)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := service.NewAuthService("owner", "hunter2", "test-secret")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "owner", password: "nope"},
		{name: "wrong username", username: "nobody", password: "hunter2"},
		{name: "empty", username: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(tt.username, tt.password)
			assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		})
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	auth := service.NewAuthService("owner", "hunter2", "test-secret")
	other := service.NewAuthService("owner", "hunter2", "different-secret")

	resp, err := auth.Login("owner", "hunter2")
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = auth.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
