package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"tron/internal/logging"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New("warn", "json", &buf)
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	logger.WithField("symbol", "SPY").Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "kept", entry["msg"])
	require.Equal(t, "SPY", entry["symbol"])
	require.Equal(t, "warning", entry["level"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New("info", "", &buf)
	require.NoError(t, err)

	logger.Info("hello")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestNew_Invalid(t *testing.T) {
	_, err := logging.New("loud", "text", &bytes.Buffer{})
	require.ErrorContains(t, err, "log level")

	_, err = logging.New("info", "xml", &bytes.Buffer{})
	require.ErrorContains(t, err, "log format")
}
