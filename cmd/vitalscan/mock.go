package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeevanteja1304/VitalValue/internal/camera"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
	"github.com/jeevanteja1304/VitalValue/internal/mock"
)

var mockOpts struct {
	addr          string
	frames        string
	frameInterval time.Duration
	fail          bool
	seed          int64
	logLevel      string
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local stand-in for the vitals backend",
	Long: `mock serves /process, /signup and /login with in-memory accounts and
estimated vitals. With --frames it also streams the images in that
directory as a camera feed on /camera/ws.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(mockOpts.logLevel)
		if err != nil {
			return err
		}
		logger.Init(level, os.Stderr, true)

		m := metrics.New()
		opts := mock.Options{
			Metrics:     m,
			Seed:        mockOpts.seed,
			FailProcess: mockOpts.fail,
		}
		if mockOpts.frames != "" {
			feed, err := loadFeed(mockOpts.frames, mockOpts.frameInterval)
			if err != nil {
				return err
			}
			opts.Feed = feed
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := mock.NewServer(opts)
		if err := srv.ListenAndServe(ctx, mockOpts.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func loadFeed(dir string, interval time.Duration) (*mock.Feed, error) {
	imgs, err := camera.LoadFrames(dir)
	if err != nil {
		return nil, err
	}
	frames, err := mock.EncodeFrames(imgs)
	if err != nil {
		return nil, fmt.Errorf("encode frames: %w", err)
	}
	logger.Info("mock", "camera feed: %d frames from %s", len(frames), dir)
	return mock.NewFeed(frames, interval), nil
}

func init() {
	f := mockCmd.Flags()
	f.StringVar(&mockOpts.addr, "addr", ":5000", "listen address")
	f.StringVar(&mockOpts.frames, "frames", "", "directory of images to stream on /camera/ws")
	f.DurationVar(&mockOpts.frameInterval, "frame-interval", 100*time.Millisecond, "delay between streamed frames")
	f.BoolVar(&mockOpts.fail, "fail", false, "answer /process with 500")
	f.Int64Var(&mockOpts.seed, "seed", 0, "random seed for vitals (0 uses the clock)")
	f.StringVar(&mockOpts.logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.AddCommand(mockCmd)
}
