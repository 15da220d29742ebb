package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeevanteja1304/VitalValue/internal/app"
	"github.com/jeevanteja1304/VitalValue/internal/auth"
	"github.com/jeevanteja1304/VitalValue/internal/camera"
	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/config"
	"github.com/jeevanteja1304/VitalValue/internal/detect"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
	"github.com/jeevanteja1304/VitalValue/internal/presence"
	"github.com/jeevanteja1304/VitalValue/internal/session"
)

var (
	cfgFile   string
	startPage string
)

var rootCmd = &cobra.Command{
	Use:   "vitalscan",
	Short: "Camera-based vital signs monitor",
	Long: `vitalscan watches a camera feed for a face, records a 20 second
measurement and shows the heart rate, blood pressure and stress level
returned by the vitals backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient(cmd.Context())
	},
}

func init() {
	addConfigFlag(rootCmd.PersistentFlags())
	rootCmd.Flags().StringVar(&startPage, "page", string(auth.PageLogin), "first page to show: login, signup or monitor")
}

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&cfgFile, "config", "c", "vitalscan.yaml", "path to the YAML config file")
}

func parsePage(s string) (auth.Page, error) {
	switch p := auth.Page(s); p {
	case auth.PageLogin, auth.PageSignup, auth.PageMonitor:
		return p, nil
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// openLog points the process logger at the configured file. The TUI owns
// the terminal, so nothing is written to stderr while it runs.
func openLog(cfg config.LogConfig) (func(), error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		logger.Init(logger.SILENT, nil, false)
		return func() {}, nil
	}
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	logger.Init(level, f, false)
	return func() { f.Close() }, nil
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("main", "metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main", "metrics server: %v", err)
		}
	}()
}

// camera stream opened by prepare, closed on exit.
type openStream struct {
	mu     sync.Mutex
	stream camera.Stream
}

func (o *openStream) set(s camera.Stream) {
	o.mu.Lock()
	o.stream = s
	o.mu.Unlock()
}

func (o *openStream) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream != nil {
		o.stream.Close()
		o.stream = nil
	}
}

// newPrepare loads the detector, opens the camera and starts presence
// polling. Each failure is surfaced in the session status.
func newPrepare(cfg *config.Config, ctrl *session.Controller, m *metrics.Metrics, streams *openStream) func(context.Context) error {
	return func(ctx context.Context) error {
		det, err := detect.LoadPigo(cfg.Detection)
		if err != nil {
			logger.Error("main", "load detector: %v", err)
			ctrl.Fail(err, session.StatusModelFailed)
			return err
		}

		ctrl.SetStatus(session.StatusInitCamera)
		src, err := camera.New(cfg.Camera)
		if err != nil {
			ctrl.Fail(err, session.StatusCameraError)
			return err
		}
		stream, err := src.Open(ctx)
		if err != nil {
			logger.Error("main", "open %s: %v", src.Name(), err)
			status := session.StatusCameraError
			if errors.Is(err, camera.ErrPermissionDenied) {
				status = session.StatusCameraDenied
			}
			ctrl.Fail(err, status)
			return err
		}
		streams.set(stream)
		logger.Info("main", "camera %s open", src.Name())

		poller := presence.NewPoller(stream, det, cfg.Detection.PollInterval, m)
		ctrl.Activate(poller, stream)
		return nil
	}
}

func runClient(ctx context.Context) error {
	page, err := parsePage(startPage)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	closeLog, err := openLog(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		serveMetrics(ctx, cfg.Metrics.Addr, m)
	}

	httpClient := client.NewHTTPClient(cfg.Backend)
	ctrl := session.New(httpClient, session.Options{
		Ticks:         cfg.Ticks(),
		Tick:          cfg.Session.Tick,
		SendSignal:    cfg.Session.SendSignal,
		FrameInterval: cfg.Camera.FrameInterval,
		Metrics:       m,
	})
	defer ctrl.Shutdown()

	streams := &openStream{}
	defer streams.Close()

	cameraName := cfg.Camera.Source + " " + cfg.Camera.URL
	if cfg.Camera.Source == config.SourceDir {
		cameraName = cfg.Camera.Source + " " + cfg.Camera.Dir
	}

	model := app.New(app.Options{
		Forms:     auth.NewForms(httpClient, m),
		Session:   ctrl,
		Prepare:   newPrepare(cfg, ctrl, m, streams),
		StartPage: page,
		ReportDir: cfg.Report.Dir,
		Camera:    cameraName,
		Backend:   cfg.Backend.VitalsURL,
	})

	logger.Info("main", "starting on page %s", page)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	logger.Info("main", "exiting")
	return nil
}
