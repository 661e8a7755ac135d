package phris

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "models/yolov8n.onnx", cfg.Detect.Model)
	assert.Equal(t, 640, cfg.Detect.InputWidth)
	assert.Equal(t, float32(0.5), cfg.Detect.BoxThreshold)
	assert.Equal(t, 2, cfg.Detect.PoolSize)

	assert.True(t, cfg.Pose.Enabled)
	assert.Equal(t, "models/yolov8n-pose.onnx", cfg.Pose.Model)

	assert.Equal(t, 1280, cfg.Capture.Width)
	assert.Equal(t, 720, cfg.Capture.Height)
	assert.Equal(t, 30, cfg.Capture.FPS)

	assert.Equal(t, 30, cfg.Tracker.TrackBuffer)
	assert.Equal(t, float32(0.5), cfg.Tracker.TrackThresh)
	assert.Equal(t, float32(0.6), cfg.Tracker.HighThresh)
	assert.Equal(t, float32(0.8), cfg.Tracker.MatchThresh)

	assert.Equal(t, 70, cfg.Risk.AlertScore)
	assert.Equal(t, 30, cfg.Risk.CleanupEvery)
	assert.Equal(t, time.Minute, cfg.Risk.MaxAge)

	assert.Equal(t, time.Second, cfg.Alert.Interval)
	assert.Equal(t, "localhost:8080", cfg.HTTP.Addr)
}

func TestLoadConfigFile(t *testing.T) {

	content := `detect:
  model: custom/person.onnx
  pool_size: 4
capture:
  file: footage/shift.mp4
  fps: 25
zones:
  file: zones/factory.yaml
  margin: 20
risk:
  alert_score: 80
  max_age: 90s
alert:
  webhook_url: http://alerts.local/hook
http:
  addr: 0.0.0.0:9000
`

	path := filepath.Join(t.TempDir(), "phris.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "custom/person.onnx", cfg.Detect.Model)
	assert.Equal(t, 4, cfg.Detect.PoolSize)
	assert.Equal(t, "footage/shift.mp4", cfg.Capture.File)
	assert.Equal(t, 25, cfg.Capture.FPS)
	assert.Equal(t, "zones/factory.yaml", cfg.Zones.File)
	assert.Equal(t, 20, cfg.Zones.Margin)
	assert.Equal(t, 80, cfg.Risk.AlertScore)
	assert.Equal(t, 90*time.Second, cfg.Risk.MaxAge)
	assert.Equal(t, "http://alerts.local/hook", cfg.Alert.WebhookURL)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr)

	// unset values keep their defaults
	assert.Equal(t, 640, cfg.Detect.InputWidth)
	assert.Equal(t, time.Second, cfg.Alert.Interval)
}

func TestLoadConfigMissingFile(t *testing.T) {

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {

	base := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Detect.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Detect.PoolSize = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Pose.Model = ""
	assert.Error(t, cfg.Validate())

	// disabled pose does not need a model
	cfg.Pose.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Capture.FPS = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Risk.AlertScore = 120
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Risk.CleanupEvery = 0
	assert.Error(t, cfg.Validate())
}
