package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/picam/pkg/camera"
	"github.com/Dicklesworthstone/picam/pkg/config"
	"github.com/Dicklesworthstone/picam/pkg/history"
	"github.com/Dicklesworthstone/picam/pkg/logging"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/Dicklesworthstone/picam/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var (
	cfg      config.Config
	closeLog = func() error { return nil }

	configPath string
	backend    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "picam",
	Short:   "Raspberry Pi camera control panel",
	Long:    "picam adjusts camera parameters with a live preview, manages named profiles and takes still pictures.",
	Version: Version,
	// Usage on every RunE error hides the actual message.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if backend != "" {
			cfg.Camera.Backend = backend
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		// The panel owns the terminal; only headless commands log to stderr.
		closeLog, err = logging.Configure(logrus.StandardLogger(), logging.Options{
			File:       cfg.Log.File,
			Level:      cfg.Log.Level,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			Stderr:     cmd != cmd.Root(),
		})
		if err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"command": cmd.Name(),
			"backend": cfg.Camera.Backend,
		}).Debug("starting")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: runPanel,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "camera backend: raspistill or simulated")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warning, error")
}

func openStore() (*profile.Store, error) {
	return profile.NewStore(cfg.ProfilesDir)
}

// startCamera opens the configured device and runs its controller until
// the returned stop func is called.
func startCamera(ctx context.Context) (*camera.Controller, func(), error) {
	dev, err := camera.Open(cfg.Camera.Backend, camera.Settings{
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		Binary: cfg.Camera.Binary,
	})
	if err != nil {
		return nil, nil, err
	}
	ctrl := camera.NewController(dev)
	runCtx, cancel := context.WithCancel(ctx)
	go ctrl.Run(runCtx)
	stop := func() {
		cancel()
		<-ctrl.Done()
	}
	return ctrl, stop, nil
}

// openJournal opens the capture history. A broken journal is logged and
// skipped; captures still work without it.
func openJournal() *history.DB {
	if cfg.HistoryDB == "" {
		return nil
	}
	db, err := history.OpenDB(cfg.HistoryDB)
	if err != nil {
		logrus.WithError(err).Warn("capture history unavailable")
		return nil
	}
	return db
}

// loadStartupProfile makes sure "default" exists, seeding it from the
// camera, and returns the requested profile.
func loadStartupProfile(ctx context.Context, store *profile.Store, ctrl *camera.Controller, name string) (model.Profile, error) {
	params, err := ctrl.Parameters(ctx)
	if err != nil {
		return model.Profile{}, err
	}
	created, err := store.EnsureDefault(params)
	if err != nil {
		return model.Profile{}, fmt.Errorf("create default profile: %w", err)
	}
	if created {
		logrus.WithField("dir", store.Dir()).Info("created default profile from camera settings")
	}
	if name == "" {
		name = model.DefaultProfileName
	}
	p, err := store.Load(name)
	if err != nil {
		return model.Profile{}, err
	}
	if err := ctrl.Apply(ctx, p.CameraParameters); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// errNoTerminal is returned when the panel is started without a TTY
var errNoTerminal = errors.New("the control panel needs an interactive terminal; use 'picam capture' for headless captures")
