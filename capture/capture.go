// Package capture orchestrates one scene's dataset captures: it positions cameras
// through the editor API, waits for screenshots to land on disk, and writes a label
// record beside each image.
package capture

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"github.com/scenekit/unrealdata/client"
	"github.com/scenekit/unrealdata/config"
	"github.com/scenekit/unrealdata/labeling"
)

// Defaults for session options left unset.
const (
	DefaultScreenshotTimeout = time.Minute
	DefaultMinImageSize      = 10000 // bytes; screenshots smaller than this are still being written
)

// View is one named camera position to capture from.
type View struct {
	Name     string
	Position []float64
}

// Result reports one view's capture outcome. Err is nil on success.
type Result struct {
	Name      string
	ImagePath string
	LabelPath string
	Err       error
}

// SessionOptions tune a capture session. Zero values take defaults.
type SessionOptions struct {
	FOV               float64
	Resolution        []int
	ScreenshotTimeout time.Duration
	MinImageSize      int64
}

// Session drives captures for one scene against one editor server.
type Session struct {
	client            *client.Client
	generator         *labeling.Generator
	logger            golog.Logger
	clock             clock.Clock
	outputDir         string
	fov               float64
	resolution        []int
	screenshotTimeout time.Duration
	minImageSize      int64
}

// NewSession returns a session writing images and labels under outputDir.
func NewSession(
	c *client.Client,
	g *labeling.Generator,
	outputDir string,
	opts SessionOptions,
	logger golog.Logger,
) *Session {
	if opts.ScreenshotTimeout == 0 {
		opts.ScreenshotTimeout = DefaultScreenshotTimeout
	}
	if opts.MinImageSize == 0 {
		opts.MinImageSize = DefaultMinImageSize
	}
	return &Session{
		client:            c,
		generator:         g,
		logger:            logger,
		clock:             clock.New(),
		outputDir:         outputDir,
		fov:               opts.FOV,
		resolution:        opts.Resolution,
		screenshotTimeout: opts.ScreenshotTimeout,
		minImageSize:      opts.MinImageSize,
	}
}

// SetupScene spawns a scene description into the editor, cleaning up previously
// spawned actors first, and positions the viewport camera if the scene names one.
func (s *Session) SetupScene(ctx context.Context, scene *config.SceneConfig) error {
	if err := s.client.CheckConnection(ctx); err != nil {
		return err
	}
	if err := s.client.SetupScene(ctx, scene.Objects, true); err != nil {
		return err
	}
	s.logger.Infow("scene loaded", "scene", scene.Name, "objects", len(scene.Objects))

	if scene.Camera != nil {
		camera := config.CameraConfig{
			Position: scene.Camera.Position,
			LookAt:   scene.Camera.Target,
			FOV:      scene.Camera.FOV,
		}
		output := config.OutputConfig{Filename: "viewport.png", Resolution: s.resolution}
		if _, err := s.client.Capture(ctx, camera, output, true); err != nil {
			return err
		}
		s.logger.Infow("camera positioned", "position", scene.Camera.Position)
	}
	return nil
}

// CaptureWithLabels captures one screenshot and generates its label record. The
// screenshot is requested from the editor, then awaited on disk until it exists and
// exceeds the minimum size. Failures are reported in the Result, not returned, so a
// multi-view run can continue past a bad view.
func (s *Session) CaptureWithLabels(
	ctx context.Context,
	camera config.CameraConfig,
	output config.OutputConfig,
	objects []labeling.ObjectObservation,
	sceneName string,
) Result {
	name := strings.TrimSuffix(output.Filename, filepath.Ext(output.Filename))
	result := Result{Name: name}

	resp, err := s.client.Capture(ctx, camera, output, false)
	if err != nil {
		result.Err = err
		return result
	}
	imagePath := resp.ImagePath
	if imagePath == "" {
		imagePath = filepath.Join(s.outputDir, output.Filename)
	}
	s.logger.Infow("screenshot requested", "capture", name, "path", imagePath)

	if err := s.waitForFile(ctx, imagePath); err != nil {
		result.Err = err
		return result
	}

	record, err := s.generator.GenerateLabels(objects, camera, output, sceneName)
	if err != nil {
		result.Err = err
		return result
	}
	labelPath, err := labeling.SaveLabelRecord(record, s.outputDir, name+".json")
	if err != nil {
		result.Err = err
		return result
	}
	s.logger.Infow("labels saved", "capture", name, "objects", len(record.Objects))

	result.ImagePath = imagePath
	result.LabelPath = labelPath
	return result
}

// CaptureMultiView queries the scene's objects once, then captures from each view in
// turn, all looking at the same scene center. One result is returned per view, in
// order; a failed view does not stop the rest.
func (s *Session) CaptureMultiView(
	ctx context.Context,
	sceneName string,
	sceneCenter []float64,
	views []View,
) ([]Result, error) {
	if err := s.client.CheckConnection(ctx); err != nil {
		return nil, err
	}
	objects, err := s.client.SceneObjects(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("capturing views", "scene", sceneName, "objects", len(objects), "views", len(views))

	results := make([]Result, 0, len(views))
	for i, view := range views {
		name := view.Name
		if name == "" {
			name = fmt.Sprintf("capture_%d", i)
		}
		camera := config.CameraConfig{
			Position: view.Position,
			LookAt:   sceneCenter,
			FOV:      s.fov,
		}
		output := config.OutputConfig{
			Filename:   name + ".png",
			Resolution: s.resolution,
		}
		result := s.CaptureWithLabels(ctx, camera, output, objects, sceneName)
		if result.Err != nil {
			s.logger.Errorw("capture failed", "capture", name, "error", result.Err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Close releases the session's client resources.
func (s *Session) Close() error {
	return s.client.Close()
}
