// Package client talks to the in-editor HTTP API server that spawns objects,
// positions the viewport camera, and writes screenshots.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/scenekit/unrealdata/config"
	"github.com/scenekit/unrealdata/labeling"
)

// DefaultBaseURL is where the editor server listens when unconfigured.
const DefaultBaseURL = "http://localhost:8080"

// defaultTimeout bounds ordinary requests; captures get their own, longer budget from
// the caller's context since screenshots can take much longer than scene queries.
const defaultTimeout = 30 * time.Second

// Client is an HTTP client for the editor API server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     golog.Logger
}

// StatusResponse is the editor server's status report.
type StatusResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version,omitempty"`
	OutputDir    string `json:"output_dir,omitempty"`
	ActiveActors int    `json:"active_actors,omitempty"`
}

// CaptureResponse is the editor server's reply to a capture request.
type CaptureResponse struct {
	Status       string `json:"status"`
	ImagePath    string `json:"image_path"`
	MetadataPath string `json:"metadata_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

// New returns a client for the editor server at the given base URL.
func New(baseURL string, logger golog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// CheckConnection verifies the server is reachable and reporting healthy.
func (c *Client) CheckConnection(ctx context.Context) error {
	if _, err := c.Status(ctx); err != nil {
		return errors.Wrapf(err, "failed to connect to editor server at %s", c.baseURL)
	}
	c.logger.Infow("connected to editor server", "url", c.baseURL)
	return nil
}

// Status fetches the server status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	status := &StatusResponse{}
	if err := c.get(ctx, "/status", status); err != nil {
		return nil, err
	}
	return status, nil
}

// SetupScene spawns the given objects, optionally removing any previously spawned
// actors first.
func (c *Client) SetupScene(ctx context.Context, objects []config.ObjectSpawnConfig, cleanupBefore bool) error {
	req := map[string]interface{}{
		"cleanup_before": cleanupBefore,
		"objects":        objects,
	}
	resp := struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
		Error   string `json:"error,omitempty"`
	}{}
	if err := c.post(ctx, "/setup_scene", req, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return errors.Errorf("scene setup failed: %s", respError(resp.Error))
	}
	c.logger.Infow("scene setup", "message", resp.Message, "objects", len(objects))
	return nil
}

// Capture positions the camera and, unless positionOnly is set, writes a screenshot.
// The returned image path is where the editor will write the file; the file may not
// exist yet when this returns.
func (c *Client) Capture(
	ctx context.Context,
	camera config.CameraConfig,
	output config.OutputConfig,
	positionOnly bool,
) (*CaptureResponse, error) {
	if err := camera.Validate("camera"); err != nil {
		return nil, err
	}
	if err := output.Validate("output"); err != nil {
		return nil, err
	}
	req := map[string]interface{}{
		"camera":        camera,
		"output":        output,
		"position_only": positionOnly,
	}
	resp := &CaptureResponse{}
	if err := c.post(ctx, "/capture", req, resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, errors.Errorf("capture failed: %s", respError(resp.Error))
	}
	return resp, nil
}

// SceneObjects queries the ground-truth pose and dimensions of every object currently
// in the scene.
func (c *Client) SceneObjects(ctx context.Context) ([]labeling.ObjectObservation, error) {
	resp := struct {
		Status  string                       `json:"status"`
		Objects []labeling.ObjectObservation `json:"objects"`
		Error   string                       `json:"error,omitempty"`
	}{}
	if err := c.get(ctx, "/get_scene_objects", &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, errors.Errorf("scene object query failed: %s", respError(resp.Error))
	}
	c.logger.Debugw("scene objects fetched", "count", len(resp.Objects))
	return resp.Objects, nil
}

// Cleanup removes all spawned actors from the scene.
func (c *Client) Cleanup(ctx context.Context) error {
	resp := struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}{}
	if err := c.post(ctx, "/cleanup", struct{}{}, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" && resp.Status != "success" {
		return errors.Errorf("cleanup failed: %s", respError(resp.Error))
	}
	c.logger.Info("scene cleaned up")
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "error building request for %s", endpoint)
	}
	return c.do(req, endpoint, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "error encoding request for %s", endpoint)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "error building request for %s", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", endpoint)
	}
	defer goutils.UncheckedErrorFunc(resp.Body.Close)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "error reading response from %s", endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("server error at %s (status %d): %s", endpoint, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "error parsing response from %s", endpoint)
	}
	return nil
}

func respError(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
