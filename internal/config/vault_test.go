package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVault_Success(t *testing.T) {
	// Mock Vault server returning KV v2 style response
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/modelts" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Vault-Token") != "test-token" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		resp := map[string]any{
			"data": map[string]any{
				"data": map[string]any{
					"password": "db-pass",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_TOKEN", "test-token")

	val, err := resolveVault(context.Background(), "secret/data/modelts#password")
	require.NoError(t, err)
	assert.Equal(t, "db-pass", val)
}

func TestResolveVault_MissingKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"data": map[string]any{
				"data": map[string]any{
					"username": "admin",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_TOKEN", "test-token")

	_, err := resolveVault(context.Background(), "secret/data/modelts#nonexistent")
	assert.Error(t, err, "missing key")
}

func TestResolveVault_InvalidFormat(t *testing.T) {
	t.Setenv("VAULT_ADDR", "http://localhost:8200")
	t.Setenv("VAULT_TOKEN", "test-token")

	_, err := resolveVault(context.Background(), "no-hash-separator")
	assert.Error(t, err, "invalid format")
}

func TestResolveVault_MissingEnv(t *testing.T) {
	t.Setenv("VAULT_ADDR", "")
	t.Setenv("VAULT_TOKEN", "")

	_, err := resolveVault(context.Background(), "secret/data/path#key")
	assert.Error(t, err, "VAULT_ADDR not set")
}

func TestResolveValue_Vault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"data": map[string]any{
				"data": map[string]any{
					"db_pass": "hunter2",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_TOKEN", "test-token")

	val, err := ResolveValue("${VAULT:secret/data/modelts#db_pass}")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", val)
}

func TestResolveVault_NonStringValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"port": 5432},
		})
	}))
	defer server.Close()

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_TOKEN", "test-token")

	_, err := resolveVault(context.Background(), "secret/db#port")
	assert.Error(t, err, "non-string value")
}
