package api_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthFlow(t *testing.T) {
	requireServer(t)

	email := fmt.Sprintf("flow_%d@example.com", time.Now().UnixNano())
	registerResp := makeRequest("POST", "/auth/register", map[string]string{
		"email":      email,
		"password":   "secret-password-1",
		"first_name": "Flow",
		"last_name":  "Test",
	}, "")
	assert.True(t, registerResp.IsSuccess(), "Failed to register: %s", registerResp.Message)

	loginResp := makeRequest("POST", "/auth/login", map[string]string{
		"email":    email,
		"password": "secret-password-1",
	}, "")
	assert.True(t, loginResp.IsSuccess())
	assert.NotEmpty(t, loginResp.GetString("access_token"))
	assert.NotEmpty(t, loginResp.GetString("refresh_token"))

	refreshResp := makeRequest("POST", "/auth/refresh", map[string]string{
		"refresh_token": loginResp.GetString("refresh_token"),
	}, "")
	assert.True(t, refreshResp.IsSuccess())
	assert.NotEmpty(t, refreshResp.GetString("access_token"))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	requireServer(t)

	resp := makeRequest("POST", "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong-password-1",
	}, "")
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, 401, resp.StatusCode)
}
