package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

func TestServeCommandArgs(t *testing.T) {
	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")

	_, err = execute(t, "serve", "a.md", "b.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")

	_, err = execute(t, "serve", t.TempDir()+"/missing.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deck source not found")
}

func TestValidateServeConfig(t *testing.T) {
	tests := []struct {
		name    string
		server  entities.ServerConfig
		wantErr string
	}{
		{name: "valid", server: entities.ServerConfig{Host: "localhost", Port: 3010}},
		{name: "zero port", server: entities.ServerConfig{Host: "localhost", Port: 0}, wantErr: "invalid port number"},
		{name: "port too high", server: entities.ServerConfig{Host: "localhost", Port: 99999}, wantErr: "invalid port number"},
		{name: "empty host", server: entities.ServerConfig{Port: 3010}, wantErr: "invalid host"},
		{name: "host with space", server: entities.ServerConfig{Host: "invalid host!", Port: 3010}, wantErr: "invalid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServeConfig(&entities.Config{Server: tt.server})
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3010", serverURL("localhost", 3010))
	assert.Equal(t, "http://127.0.0.1:8080", serverURL("127.0.0.1", 8080))
	assert.Equal(t, "http://[::1]:8080", serverURL("::1", 8080))
}
