package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	branchID := int64(3)
	signed, err := tokens.GenerateToken(7, 1, &branchID, RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, int64(1), claims.OrgID)
	require.NotNil(t, claims.BranchID)
	assert.Equal(t, branchID, *claims.BranchID)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestTokenService_OrgWideTokenHasNoBranch(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	signed, err := tokens.GenerateToken(7, 1, nil, "manager")
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(signed)
	require.NoError(t, err)
	assert.Nil(t, claims.BranchID)
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	signed, err := NewTokenService("secret-a", time.Hour).GenerateToken(7, 1, nil, "staff")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).ValidateToken(signed)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	tokens := &TokenService{secret: []byte("test-secret"), expiresIn: -time.Minute}

	signed, err := tokens.GenerateToken(7, 1, nil, "staff")
	require.NoError(t, err)

	_, err = tokens.ValidateToken(signed)
	assert.Error(t, err)
}

func TestTokenService_RequiresIdentity(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	_, err := tokens.GenerateToken(0, 1, nil, "staff")
	assert.Error(t, err)

	_, err = tokens.GenerateToken(7, 0, nil, "staff")
	assert.Error(t, err)
}
