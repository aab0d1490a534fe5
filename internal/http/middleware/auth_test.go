package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"washhub/internal/service"
)

func TestAuth_InjectsTenantScope(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour)
	branchID := int64(3)
	signed, err := tokens.GenerateToken(7, 1, &branchID, "staff")
	require.NoError(t, err)

	var sawClaims bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(7), claims.UserID)

		tc, ok := TenantFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(1), tc.OrgID)
		require.NotNil(t, tc.BranchID)
		assert.Equal(t, branchID, *tc.BranchID)
		sawClaims = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/pricing-rules", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	Auth(tokens)(next).ServeHTTP(rec, req)

	assert.True(t, sawClaims)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_RejectsBadRequests(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var handlerRan bool
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				handlerRan = true
			})
			req := httptest.NewRequest(http.MethodGet, "/api/pricing-rules", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			Auth(tokens)(next).ServeHTTP(rec, req)

			assert.False(t, handlerRan)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
