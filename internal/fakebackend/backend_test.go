package fakebackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-inventory-ui/internal/fakebackend"
	"github.com/stretchr/testify/require"
)

func TestBackend_SigninAndProfile(t *testing.T) {
	backend := fakebackend.NewSeeded("secret")
	server := httptest.NewServer(backend)
	defer server.Close()

	resp, err := http.Post(server.URL+"/auth/signin", "application/json", bytes.NewBufferString(`{"username":"sales","password":"password"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var signin struct {
		Username string   `json:"username"`
		Roles    []string `json:"roles"`
		JWTToken string   `json:"jwtToken"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signin))
	require.Equal(t, "sales", signin.Username)
	require.Equal(t, []string{"ROLE_SALES"}, signin.Roles)
	require.NotEmpty(t, signin.JWTToken)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+signin.JWTToken)
	profileResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer profileResp.Body.Close()
	require.Equal(t, http.StatusOK, profileResp.StatusCode)

	require.Equal(t, 1, backend.CountRequests(http.MethodGet, "/auth/user"))
}

func TestBackend_RejectsUnknownTokens(t *testing.T) {
	backend := fakebackend.NewSeeded("secret")
	server := httptest.NewServer(backend)
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/users/all", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	accessToken, err := backend.IssueToken("admin")
	require.NoError(t, err)
	backend.RevokeAll()
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBackend_BadCredentials(t *testing.T) {
	server := httptest.NewServer(fakebackend.NewSeeded("secret"))
	defer server.Close()

	resp, err := http.Post(server.URL+"/auth/signin", "application/json", bytes.NewBufferString(`{"username":"admin","password":"wrong"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
