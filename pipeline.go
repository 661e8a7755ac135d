package phris

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/alert"
	"github.com/phris-ai/phris/detect"
	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/pose"
	"github.com/phris-ai/phris/preprocess"
	"github.com/phris-ai/phris/render"
	"github.com/phris-ai/phris/risk"
	"github.com/phris-ai/phris/tracker"
	"github.com/phris-ai/phris/zone"
)

// Pipeline runs the frame processing loop: capture, detect, track,
// pose, zone lookup, risk scoring, alerting, and overlay rendering
type Pipeline struct {
	cfg   *Config
	log   *zap.Logger
	stats *Stats
	hub   *streamHub

	detPool *detect.Pool
	poseEst detect.PoseEstimator

	bt    *tracker.BYTETracker
	trail *tracker.Trail

	zones  *zone.Set
	engine *risk.Engine
	alerts *alert.Manager

	typeface *render.Typeface

	// resizers are created once the source frame size is known
	detResizer  *preprocess.Resizer
	poseResizer *preprocess.Resizer
}

// NewPipeline assembles a pipeline from configuration, loading the
// models and zone definitions
func NewPipeline(cfg *Config, log *zap.Logger) (*Pipeline, error) {

	p := &Pipeline{
		cfg:   cfg,
		log:   log,
		stats: NewStats(),
		hub:   newStreamHub(),
	}

	// zone definitions
	var (
		zoneSet *zone.Set
		err     error
	)

	if cfg.Zones.File != "" {
		zoneSet, err = zone.LoadFile(cfg.Zones.File)

		if err != nil {
			return nil, fmt.Errorf("loading zones: %w", err)
		}

		log.Info("loaded zones file",
			zap.String("file", cfg.Zones.File),
			zap.Int("zones", len(zoneSet.Zones())))
	} else {
		zoneSet, err = zone.NewSet(zone.DefaultZones())

		if err != nil {
			return nil, fmt.Errorf("building default zones: %w", err)
		}

		log.Info("using built in zone layout")
	}

	if err := zoneSet.ApplyMargin(cfg.Zones.Margin); err != nil {
		return nil, fmt.Errorf("applying zone margin: %w", err)
	}

	p.zones = zoneSet

	// person detector pool
	detParams := detect.YOLOv8COCOParams()
	detParams.BoxThreshold = cfg.Detect.BoxThreshold
	detParams.NMSThreshold = cfg.Detect.NMSThreshold

	p.detPool, err = detect.NewPool(cfg.Detect.PoolSize, func() (detect.Detector, error) {
		return detect.NewDNNDetector(cfg.Detect.Model,
			cfg.Detect.InputWidth, cfg.Detect.InputHeight, detParams)
	})

	if err != nil {
		return nil, fmt.Errorf("creating detector pool: %w", err)
	}

	log.Info("loaded person detection model",
		zap.String("model", cfg.Detect.Model),
		zap.Int("pool_size", cfg.Detect.PoolSize))

	// pose estimator
	if cfg.Pose.Enabled {

		poseParams := detect.YOLOv8PoseCOCOParams()
		poseParams.BoxThreshold = cfg.Pose.BoxThreshold

		p.poseEst, err = detect.NewDNNPoseEstimator(cfg.Pose.Model,
			cfg.Pose.InputWidth, cfg.Pose.InputHeight, poseParams)

		if err != nil {
			p.detPool.Close()
			return nil, fmt.Errorf("creating pose estimator: %w", err)
		}

		log.Info("loaded pose estimation model",
			zap.String("model", cfg.Pose.Model))
	}

	// tracker
	p.bt = tracker.NewBYTETracker(cfg.Capture.FPS, cfg.Tracker.TrackBuffer,
		cfg.Tracker.TrackThresh, cfg.Tracker.HighThresh, cfg.Tracker.MatchThresh)

	p.trail = tracker.NewTrail(cfg.Tracker.TrailLength)

	// risk engine and alerting
	p.engine = risk.NewEngine()

	sinks := []alert.Sink{alert.NewLogSink(log)}

	if cfg.Alert.WebhookURL != "" {
		sinks = append(sinks,
			alert.NewWebhookSink(cfg.Alert.WebhookURL, cfg.Alert.WebhookTimeout))
		log.Info("alert webhook enabled",
			zap.String("url", cfg.Alert.WebhookURL))
	}

	p.alerts = alert.NewManager(cfg.Alert.Interval, log, sinks...)

	// optional TTF typeface for the site name watermark
	if cfg.Render.FontFile != "" {
		p.typeface, err = render.LoadTypeface(cfg.Render.FontFile,
			cfg.Render.FontSize)

		if err != nil {
			p.Close()
			return nil, fmt.Errorf("loading TTF font: %w", err)
		}
	}

	return p, nil
}

// Stats returns the pipeline's runtime counters
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Run captures frames from the configured source and processes them
// until the context is cancelled or the source fails
func (p *Pipeline) Run(ctx context.Context) error {

	var (
		vc       *gocv.VideoCapture
		err      error
		fromFile = p.cfg.Capture.File != ""
	)

	if fromFile {
		vc, err = gocv.VideoCaptureFile(p.cfg.Capture.File)
	} else {
		vc, err = gocv.VideoCaptureDevice(p.cfg.Capture.Device)
	}

	if err != nil {
		return fmt.Errorf("opening video source: %w", err)
	}

	defer vc.Close()

	if !fromFile {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(p.cfg.Capture.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(p.cfg.Capture.Height))
		vc.Set(gocv.VideoCaptureFPS, float64(p.cfg.Capture.FPS))
	}

	p.log.Info("video source opened",
		zap.Bool("file", fromFile),
		zap.Int("fps", p.cfg.Capture.FPS))

	img := gocv.NewMat()
	defer img.Close()

	// a file source is paced to the configured frame rate and looped,
	// a camera paces itself
	interval := time.Duration(float64(time.Second) / float64(p.cfg.Capture.FPS))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("pipeline stopping")
			return nil

		case <-ticker.C:
		}

		if ok := vc.Read(&img); !ok {
			if fromFile {
				// rewind and loop the video
				vc.Set(gocv.VideoCapturePosFrames, 0)
				continue
			}
			return fmt.Errorf("cannot read from video source")
		}

		if img.Empty() {
			continue
		}

		frame, err := p.ProcessFrame(ctx, &img)

		if err != nil {
			p.log.Error("frame processing failed", zap.Error(err))
			continue
		}

		p.hub.publish(frame)
	}
}

// ProcessFrame runs the full analysis chain on one frame, draws the
// overlay in place, and returns the JPEG encoded result
func (p *Pipeline) ProcessFrame(ctx context.Context, img *gocv.Mat) ([]byte, error) {

	now := time.Now()

	p.ensureResizers(img.Cols(), img.Rows())

	// person detection
	det := p.detPool.Get()
	dets, err := det.Detect(*img, p.detResizer)
	p.detPool.Return(det)

	if err != nil {
		return nil, fmt.Errorf("detection: %w", err)
	}

	// tracking
	tracks, err := p.bt.Update(tracker.DetectionsToObjects(dets))

	if err != nil {
		return nil, fmt.Errorf("tracking: %w", err)
	}

	// pose estimation matched to tracks by box overlap
	matched := make(map[int]pose.Person)
	var poseKeyPoints [][]result.KeyPoint

	if p.poseEst != nil {

		poseBoxes, keyPoints, err := p.poseEst.DetectPoses(*img, p.poseResizer)

		if err != nil {
			p.log.Warn("pose estimation failed", zap.Error(err))
		} else {
			matched = pose.MatchToTracks(tracks, poseBoxes, keyPoints)
			poseKeyPoints = keyPoints
		}
	}

	// assess each person and collect overlay and alert data
	fps := float64(p.cfg.Capture.FPS)
	overlay := make([]render.Person, 0, len(tracks))
	var critical []alert.Person

	for _, trk := range tracks {

		p.trail.Add(trk)

		center := trk.GetRect().Center()
		match := p.zones.Lookup(center)
		speed := trk.Speed() * fps

		posture := pose.Unknown
		if pp, ok := matched[trk.GetTrackID()]; ok {
			posture = pp.Posture
		}

		assessment := p.engine.Assess(risk.Input{
			PersonID:    trk.GetTrackID(),
			Center:      center,
			FrameWidth:  img.Cols(),
			InDanger:    match.InDanger,
			ZoneName:    match.Name,
			ZoneRisk:    match.Risk,
			Speed:       speed,
			PostureRisk: posture.Risk(),
			Now:         now,
		})

		overlay = append(overlay, render.Person{
			Track:      trk,
			Assessment: assessment,
			Posture:    posture.String(),
			Speed:      speed,
		})

		if assessment.Score > p.cfg.Risk.AlertScore {
			critical = append(critical, alert.Person{
				ID:    assessment.PersonID,
				Score: assessment.Score,
				Zone:  assessment.Zone,
			})
		}
	}

	if len(critical) > 0 {
		if p.alerts.Notify(ctx, alert.Event{Time: now, People: critical}) {
			p.stats.AlertRaised()
		}
	}

	// draw the overlay in place
	thickness := p.cfg.Render.LineThickness

	render.Zones(img, p.zones, render.DefaultFont(), thickness)
	render.Trail(img, tracks, p.trail, render.DefaultTrailStyle())
	render.PoseKeyPoints(img, poseKeyPoints, thickness)
	render.People(img, overlay, 3)
	render.Banner(img, critical)

	p.stats.SetPeople(len(tracks))
	frames := p.stats.FrameProcessed()

	render.Dashboard(img, render.DashboardStats{
		Frames:  frames,
		FPS:     p.stats.FPS(),
		People:  len(tracks),
		Alerts:  p.stats.Alerts(),
		Runtime: p.stats.Runtime(),
	})

	if p.typeface != nil && p.cfg.Render.SiteName != "" {
		_ = p.typeface.DrawText(img, p.cfg.Render.SiteName,
			img.Cols()-300, 30, render.White)
	}

	// sweep stale person profiles periodically
	if frames%int64(p.cfg.Risk.CleanupEvery) == 0 {
		if removed := p.engine.Cleanup(now, p.cfg.Risk.MaxAge); removed > 0 {
			p.log.Debug("cleaned up stale profiles",
				zap.Int("removed", removed))
		}
	}

	// encode the annotated frame
	buf, err := gocv.IMEncode(".jpg", *img)

	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}

	defer buf.Close()

	// the buffer is freed on Close so the bytes are copied out
	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())

	return frame, nil
}

// ensureResizers creates the letterbox resizers once the source frame
// size is known
func (p *Pipeline) ensureResizers(width, height int) {

	if p.detResizer != nil {
		return
	}

	p.detResizer = preprocess.NewResizer(width, height,
		p.cfg.Detect.InputWidth, p.cfg.Detect.InputHeight)

	if p.cfg.Pose.Enabled {
		p.poseResizer = preprocess.NewResizer(width, height,
			p.cfg.Pose.InputWidth, p.cfg.Pose.InputHeight)
	}
}

// Close releases the models and font resources
func (p *Pipeline) Close() {

	if p.detPool != nil {
		p.detPool.Close()
	}

	if p.poseEst != nil {
		_ = p.poseEst.Close()
	}

	if p.typeface != nil {
		_ = p.typeface.Close()
	}

	if p.detResizer != nil {
		p.detResizer.Close()
	}

	if p.poseResizer != nil {
		p.poseResizer.Close()
	}
}
