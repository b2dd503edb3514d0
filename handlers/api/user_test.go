package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, "")

	resp, body := env.request(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name":     "Dana",
		"email":    "dana@x.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "dana@x.com", user["email"])
	// Password hash never leaves the server
	assert.NotContains(t, user, "PasswordHash")

	resp, body = env.request(t, http.MethodPost, "/api/users/login", map[string]interface{}{
		"email":    "DANA@x.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t, "")

	resp, _ := env.request(t, http.MethodPost, "/api/users/login", map[string]interface{}{
		"email":    "a@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t, "")

	resp, _ := env.request(t, http.MethodPost, "/api/users", map[string]interface{}{
		"email":    "A@x.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
