// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigureAttachesServiceField(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "sportarr-test"})

	lg := WithComponent("matcher")
	lg.Info().Str("event", "test.event").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "sportarr-test", entry["service"])
	require.Equal(t, "matcher", entry["component"])
	require.Equal(t, "test.event", entry["event"])
}

func TestFromContextCarriesPassID(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})

	ctx := ContextWithPassID(context.Background(), "pass-123")
	require.Equal(t, "pass-123", PassIDFromContext(ctx))

	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("with pass")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "pass-123", entry["pass_id"])
}
