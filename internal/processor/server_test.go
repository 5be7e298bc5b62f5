// SPDX-License-Identifier: MIT

package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatusServerDisabledOnEmptyAddr(t *testing.T) {
	assert.Nil(t, NewStatusServer("", nil))
}

func TestStatusServerServesProcessedDestinations(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "race bytes")

	_, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)

	server := NewStatusServer("127.0.0.1:0", env.p)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count        int               `json:"count"`
		Destinations map[string]string `json:"destinations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	for _, dest := range body.Destinations {
		assert.Contains(t, dest, "Formula 1 - S05E03 - Race.mkv")
	}
}

func TestStatusServerReportsLastPass(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "race bytes")

	_, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)

	server := NewStatusServer("127.0.0.1:0", env.p)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		LastPass *Report `json:"last_pass"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.LastPass)
	assert.Equal(t, 1, body.LastPass.Linked)
}
