/*
Package phris implements the core video pipeline of the Proactive Human
Risk Intelligence System.  Each frame flows through person detection,
multi-object tracking, pose estimation, danger zone lookup, and risk
scoring before the annotated result is streamed to connected clients as
MJPEG.
*/
package phris

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DetectConfig configures the person detection model
type DetectConfig struct {
	// Model is the path to the ONNX person detection model
	Model string `mapstructure:"model"`
	// InputWidth of the model tensor
	InputWidth int `mapstructure:"input_width"`
	// InputHeight of the model tensor
	InputHeight int `mapstructure:"input_height"`
	// BoxThreshold is the minimum detection confidence
	BoxThreshold float32 `mapstructure:"box_threshold"`
	// NMSThreshold for suppressing overlapping boxes
	NMSThreshold float32 `mapstructure:"nms_threshold"`
	// PoolSize is the number of detector instances inferencing in
	// parallel
	PoolSize int `mapstructure:"pool_size"`
}

// PoseConfig configures the pose estimation model
type PoseConfig struct {
	// Enabled turns pose estimation and posture scoring on
	Enabled bool `mapstructure:"enabled"`
	// Model is the path to the ONNX pose estimation model
	Model string `mapstructure:"model"`
	// InputWidth of the model tensor
	InputWidth int `mapstructure:"input_width"`
	// InputHeight of the model tensor
	InputHeight int `mapstructure:"input_height"`
	// BoxThreshold is the minimum person confidence
	BoxThreshold float32 `mapstructure:"box_threshold"`
}

// CaptureConfig configures the video source
type CaptureConfig struct {
	// Device is the camera device ID used when File is empty
	Device int `mapstructure:"device"`
	// File is a video file looped as the source instead of a camera
	File string `mapstructure:"file"`
	// Width requested from the camera
	Width int `mapstructure:"width"`
	// Height requested from the camera
	Height int `mapstructure:"height"`
	// FPS requested from the camera
	FPS int `mapstructure:"fps"`
}

// TrackerConfig configures BYTE tracking
type TrackerConfig struct {
	// TrackBuffer is the number of frames a lost person is kept before
	// removal
	TrackBuffer int `mapstructure:"track_buffer"`
	// TrackThresh splits detections into high and low confidence sets
	TrackThresh float32 `mapstructure:"track_thresh"`
	// HighThresh is the minimum confidence to start a new track
	HighThresh float32 `mapstructure:"high_thresh"`
	// MatchThresh is the IoU matching threshold for association
	MatchThresh float32 `mapstructure:"match_thresh"`
	// TrailLength is the number of center points kept for trail drawing
	TrailLength int `mapstructure:"trail_length"`
}

// ZonesConfig configures the danger zone definitions
type ZonesConfig struct {
	// File is a YAML zones definition, the built in factory floor
	// layout is used when empty
	File string `mapstructure:"file"`
	// Margin grows each danger zone outward by this many pixels
	Margin int `mapstructure:"margin"`
}

// RiskConfig configures scoring and profile retention
type RiskConfig struct {
	// AlertScore is the risk score above which an alert is raised
	AlertScore int `mapstructure:"alert_score"`
	// CleanupEvery is the frame interval between profile sweeps
	CleanupEvery int `mapstructure:"cleanup_every"`
	// MaxAge is how long an unseen person's profile is retained
	MaxAge time.Duration `mapstructure:"max_age"`
}

// AlertConfig configures alert delivery
type AlertConfig struct {
	// Interval is the minimum time between alerts
	Interval time.Duration `mapstructure:"interval"`
	// WebhookURL receives alert events as JSON POSTs when set
	WebhookURL string `mapstructure:"webhook_url"`
	// WebhookTimeout bounds each webhook request
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
}

// HTTPConfig configures the MJPEG streaming server
type HTTPConfig struct {
	// Addr is the listen address in address:port form
	Addr string `mapstructure:"addr"`
}

// RenderConfig configures overlay drawing
type RenderConfig struct {
	// LineThickness of boxes, zone borders, and skeleton limbs
	LineThickness int `mapstructure:"line_thickness"`
	// SiteName is drawn as a watermark when set
	SiteName string `mapstructure:"site_name"`
	// FontFile is an optional TTF font used for the site name, allows
	// names in non Latin scripts
	FontFile string `mapstructure:"font_file"`
	// FontSize of the TTF font in points
	FontSize float64 `mapstructure:"font_size"`
}

// Config is the full pipeline configuration
type Config struct {
	Detect  DetectConfig  `mapstructure:"detect"`
	Pose    PoseConfig    `mapstructure:"pose"`
	Capture CaptureConfig `mapstructure:"capture"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Zones   ZonesConfig   `mapstructure:"zones"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Alert   AlertConfig   `mapstructure:"alert"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Render  RenderConfig  `mapstructure:"render"`
}

// SetDefaults registers the default configuration values on a viper
// instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("detect.model", "models/yolov8n.onnx")
	v.SetDefault("detect.input_width", 640)
	v.SetDefault("detect.input_height", 640)
	v.SetDefault("detect.box_threshold", 0.5)
	v.SetDefault("detect.nms_threshold", 0.45)
	v.SetDefault("detect.pool_size", 2)

	v.SetDefault("pose.enabled", true)
	v.SetDefault("pose.model", "models/yolov8n-pose.onnx")
	v.SetDefault("pose.input_width", 640)
	v.SetDefault("pose.input_height", 640)
	v.SetDefault("pose.box_threshold", 0.5)

	v.SetDefault("capture.device", 0)
	v.SetDefault("capture.file", "")
	v.SetDefault("capture.width", 1280)
	v.SetDefault("capture.height", 720)
	v.SetDefault("capture.fps", 30)

	v.SetDefault("tracker.track_buffer", 30)
	v.SetDefault("tracker.track_thresh", 0.5)
	v.SetDefault("tracker.high_thresh", 0.6)
	v.SetDefault("tracker.match_thresh", 0.8)
	v.SetDefault("tracker.trail_length", 50)

	v.SetDefault("zones.file", "")
	v.SetDefault("zones.margin", 0)

	v.SetDefault("risk.alert_score", 70)
	v.SetDefault("risk.cleanup_every", 30)
	v.SetDefault("risk.max_age", time.Minute)

	v.SetDefault("alert.interval", time.Second)
	v.SetDefault("alert.webhook_url", "")
	v.SetDefault("alert.webhook_timeout", 5*time.Second)

	v.SetDefault("http.addr", "localhost:8080")

	v.SetDefault("render.line_thickness", 2)
	v.SetDefault("render.site_name", "")
	v.SetDefault("render.font_file", "")
	v.SetDefault("render.font_size", 20)
}

// LoadConfig reads configuration from the given file, falling back to
// defaults for any unset value.  An empty path loads pure defaults
func LoadConfig(path string) (*Config, error) {

	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values are usable
func (c *Config) Validate() error {

	if c.Detect.Model == "" {
		return fmt.Errorf("detect.model is required")
	}

	if c.Detect.PoolSize < 1 {
		return fmt.Errorf("detect.pool_size must be at least 1")
	}

	if c.Pose.Enabled && c.Pose.Model == "" {
		return fmt.Errorf("pose.model is required when pose is enabled")
	}

	if c.Capture.FPS < 1 {
		return fmt.Errorf("capture.fps must be at least 1")
	}

	if c.Risk.AlertScore < 0 || c.Risk.AlertScore > 100 {
		return fmt.Errorf("risk.alert_score must be 0-100")
	}

	if c.Risk.CleanupEvery < 1 {
		return fmt.Errorf("risk.cleanup_every must be at least 1")
	}

	return nil
}
