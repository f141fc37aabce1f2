// The unrealdata command drives the in-editor API server to set up scenes and
// capture labeled screenshots for object-detection training.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/scenekit/unrealdata/capture"
	"github.com/scenekit/unrealdata/client"
	"github.com/scenekit/unrealdata/config"
	"github.com/scenekit/unrealdata/labeling"
)

// defaultViews are the named camera rigs available to --cameras.
var defaultViews = map[string][]float64{
	"front":    {1500, 300, 400},
	"top":      {50, 300, 2000},
	"diagonal": {1200, -400, 800},
	"side":     {50, 1500, 400},
	"back":     {-1000, 300, 400},
}

var app = &cli.App{
	Name:            "unrealdata",
	Usage:           "capture labeled screenshots from a scene editor",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Value:   client.DefaultBaseURL,
			EnvVars: []string{"UNREAL_SERVER_URL"},
			Usage:   "base URL of the in-editor API server",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "setup",
			Usage: "spawn a scene from a config file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "config",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "load scene description from `FILE`",
				},
			},
			Action: setupAction,
		},
		{
			Name:  "capture",
			Usage: "capture screenshots with 3D detection labels",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "scene",
					Value: "scene",
					Usage: "scene name recorded in label metadata",
				},
				&cli.StringFlag{
					Name:  "center",
					Value: "50,300,100",
					Usage: "scene center to look at, as `X,Y,Z`",
				},
				&cli.StringFlag{
					Name:  "cameras",
					Value: "front,top,diagonal",
					Usage: "comma-separated named camera positions",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "./dataset_output",
					Usage:   "output directory for images and labels",
				},
				&cli.Float64Flag{
					Name:  "fov",
					Value: config.DefaultFOVDegrees,
					Usage: "horizontal field of view in degrees",
				},
			},
			Action: captureAction,
		},
		{
			Name:   "status",
			Usage:  "report editor server status",
			Action: statusAction,
		},
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) golog.Logger {
	if c.Bool("debug") {
		return golog.NewDebugLogger("unrealdata")
	}
	return golog.NewDevelopmentLogger("unrealdata")
}

func setupAction(c *cli.Context) error {
	logger := newLogger(c)
	scene, err := config.ReadSceneConfig(c.String("config"))
	if err != nil {
		return err
	}

	editorClient := client.New(c.String("server"), logger)
	generator := labeling.NewGenerator(labeling.NewRegistry(), logger)
	session := capture.NewSession(editorClient, generator, "", capture.SessionOptions{}, logger)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debugw("error closing session", "error", err)
		}
	}()

	if err := session.SetupScene(context.Background(), scene); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "scene %q set up with %d objects\n", scene.Name, len(scene.Objects))
	return nil
}

func captureAction(c *cli.Context) error {
	logger := newLogger(c)

	center, err := parseVec3(c.String("center"))
	if err != nil {
		return errors.Wrap(err, "invalid --center")
	}
	views, err := parseViews(c.String("cameras"), logger)
	if err != nil {
		return err
	}

	editorClient := client.New(c.String("server"), logger)
	generator := labeling.NewGenerator(labeling.NewRegistry(), logger)
	session := capture.NewSession(editorClient, generator, c.String("output"), capture.SessionOptions{
		FOV: c.Float64("fov"),
	}, logger)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debugw("error closing session", "error", err)
		}
	}()

	results, err := session.CaptureMultiView(context.Background(), c.String("scene"), center, views)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(c.App.Writer, "[FAILED] %s: %v\n", result.Name, result.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "[OK] %s\n  image: %s\n  label: %s\n",
			result.Name, result.ImagePath, result.LabelPath)
	}
	fmt.Fprintf(c.App.Writer, "captured %d/%d views\n", len(results)-failed, len(results))
	if failed > 0 {
		return errors.Errorf("%d of %d captures failed", failed, len(results))
	}
	return nil
}

func statusAction(c *cli.Context) error {
	logger := newLogger(c)
	editorClient := client.New(c.String("server"), logger)
	defer func() {
		if err := editorClient.Close(); err != nil {
			logger.Debugw("error closing client", "error", err)
		}
	}()

	status, err := editorClient.Status(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "status: %s\nversion: %s\noutput dir: %s\nactive actors: %d\n",
		status.Status, status.Version, status.OutputDir, status.ActiveActors)
	return nil
}

func parseVec3(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, errors.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	out := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "component %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func parseViews(s string, logger golog.Logger) ([]capture.View, error) {
	var views []capture.View
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		position, ok := defaultViews[name]
		if !ok {
			logger.Warnw("unknown camera position, skipping", "name", name)
			continue
		}
		views = append(views, capture.View{Name: name, Position: position})
	}
	if len(views) == 0 {
		return nil, errors.New("no valid camera positions given")
	}
	return views, nil
}
