package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "json")
	log.Debug("hidden")
	log.Info("movement recorded", "qty", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "movement recorded", rec["msg"])
	assert.Equal(t, float64(3), rec["qty"])
}

func TestDevTextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "dev", "text")
	log.Debug("visible", "k", "v")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "k=v")
}
