package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("ruido"))
}

func TestOp_AgregaCampos(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{zl: zerolog.New(&buf)}
	l.Op("t1", "sale.create").Info().Msg("commit")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "t1", line["tenant_id"])
	assert.Equal(t, "sale.create", line["op"])
	assert.Equal(t, "commit", line["message"])
}
