package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rabbit-bot/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_TokenRoundTrip(t *testing.T) {
	auth := middleware.NewAuth("secret")

	token, err := auth.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestAuth_RejectsForeignAndExpiredTokens(t *testing.T) {
	auth := middleware.NewAuth("secret")

	foreign, err := middleware.NewAuth("other").GenerateToken("ops", time.Hour)
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.Error(t, err)

	expired, err := auth.GenerateToken("ops", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.Error(t, err)
}

func TestAuth_NoSecret(t *testing.T) {
	auth := middleware.NewAuth("")

	_, err := auth.GenerateToken("ops", time.Hour)
	assert.ErrorIs(t, err, middleware.ErrNoSecret)
	_, err = auth.ValidateToken("anything")
	assert.ErrorIs(t, err, middleware.ErrNoSecret)
}

func TestAuth_WithAuth(t *testing.T) {
	auth := middleware.NewAuth("secret")
	handler := auth.WithAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(middleware.GetSubject(r)))
	})
	token, err := auth.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ops", rec.Body.String())
			}
		})
	}
}
