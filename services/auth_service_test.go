package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/todo-app/config"
)

func newUserInfoServer(t *testing.T, handler http.HandlerFunc) *ProviderUserInfoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewProviderUserInfoClient(config.OAuthConfig{ServerURL: srv.URL, HTTPTimeout: time.Second})
}

func TestProviderUserInfoClient_FetchUserInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("returns identity claims", func(t *testing.T) {
		var gotPath, gotToken string
		client := newUserInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotToken = r.URL.Query().Get("token")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"openId":"u1","name":"Alice","email":"alice@example.com","loginMethod":"google"}`))
		})

		info, err := client.FetchUserInfo(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "/api/userinfo", gotPath)
		assert.Equal(t, "abc123", gotToken)
		assert.Equal(t, "u1", info.OpenID)
		require.NotNil(t, info.Name)
		assert.Equal(t, "Alice", *info.Name)
		require.NotNil(t, info.Email)
		assert.Equal(t, "alice@example.com", *info.Email)
		require.NotNil(t, info.LoginMethod)
		assert.Equal(t, "google", *info.LoginMethod)
	})

	t.Run("absent attributes stay nil", func(t *testing.T) {
		client := newUserInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"openId":"u2"}`))
		})

		info, err := client.FetchUserInfo(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "u2", info.OpenID)
		assert.Nil(t, info.Name)
		assert.Nil(t, info.Email)
		assert.Nil(t, info.LoginMethod)
	})

	t.Run("token is query encoded", func(t *testing.T) {
		var gotToken string
		client := newUserInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.URL.Query().Get("token")
			_, _ = w.Write([]byte(`{"openId":"u1"}`))
		})

		_, err := client.FetchUserInfo(ctx, "a+b&c=d")
		require.NoError(t, err)
		assert.Equal(t, "a+b&c=d", gotToken)
	})

	t.Run("non-2xx is rejected without retry", func(t *testing.T) {
		calls := 0
		client := newUserInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.FetchUserInfo(ctx, "expired")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProviderRejected)
		assert.True(t, IsExternalError(err))
		assert.Equal(t, http.StatusUnauthorized, GetErrorDetails(err)["status"])
		assert.Equal(t, 1, calls)
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newUserInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := client.FetchUserInfo(ctx, "tok")
		require.Error(t, err)
		assert.True(t, IsExternalError(err))
	})

	t.Run("missing openId", func(t *testing.T) {
		client := newUserInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"name":"Alice"}`))
		})

		_, err := client.FetchUserInfo(ctx, "tok")
		require.Error(t, err)
		assert.True(t, IsExternalError(err))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		client := NewProviderUserInfoClient(config.OAuthConfig{ServerURL: srv.URL, HTTPTimeout: 50 * time.Millisecond})

		_, err := client.FetchUserInfo(ctx, "tok")
		require.Error(t, err)
		assert.True(t, IsExternalError(err))
	})

	t.Run("unconfigured server", func(t *testing.T) {
		client := NewProviderUserInfoClient(config.OAuthConfig{})

		_, err := client.FetchUserInfo(ctx, "tok")
		require.Error(t, err)
		assert.True(t, IsExternalError(err))
	})
}
