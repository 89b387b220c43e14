package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Dicklesworthstone/picam/pkg/capture"
	"github.com/Dicklesworthstone/picam/pkg/config"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var captureOpts struct {
	profile string
	settle  time.Duration
	dir     string
	name    string
	format  string
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Take one picture without the control panel",
	Args:  cobra.NoArgs,
	RunE:  runCapture,
}

func init() {
	f := captureCmd.Flags()
	f.StringVarP(&captureOpts.profile, "profile", "p", "", "profile to apply (default: default)")
	f.DurationVar(&captureOpts.settle, "settle", 0, "settle delay before capturing, 2s to 5s (default from config)")
	f.StringVar(&captureOpts.dir, "dir", "", "output directory")
	f.StringVar(&captureOpts.name, "name", "", "output filename prefix")
	f.StringVar(&captureOpts.format, "format", "", "image format: jpeg, png, bmp or gif")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settle := cfg.Camera.SettleDelay.Std()
	if cmd.Flags().Changed("settle") {
		if captureOpts.settle < config.MinSettleDelay || captureOpts.settle > config.MaxSettleDelay {
			return fmt.Errorf("--settle %v outside %v..%v", captureOpts.settle, config.MinSettleDelay, config.MaxSettleDelay)
		}
		settle = captureOpts.settle
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	ctrl, stopCamera, err := startCamera(ctx)
	if err != nil {
		return err
	}
	defer stopCamera()

	prof, err := loadStartupProfile(ctx, store, ctrl, captureOpts.profile)
	if err != nil {
		return err
	}

	out := prof.OutputSettings.Merge(cfg.Output)
	if captureOpts.dir != "" {
		out.Directory = captureOpts.dir
	}
	if captureOpts.name != "" {
		out.Filename = captureOpts.name
	}
	if captureOpts.format != "" {
		out.Format = captureOpts.format
	}

	req, err := model.NewCaptureRequest(out, prof.Quality, time.Now())
	if err != nil {
		return err
	}
	req.Profile = captureOpts.profile
	if req.Profile == "" {
		req.Profile = model.DefaultProfileName
	}

	opts := []capture.Option{capture.WithSettleDelay(settle)}
	if db := openJournal(); db != nil {
		defer db.Close()
		opts = append(opts, capture.WithJournal(db))
	}
	worker := capture.NewWorker(ctrl, opts...)

	results, err := worker.Start(ctx, req)
	if err != nil {
		return err
	}

	wait := worker.SettleDelay()
	bar := progressbar.NewOptions64(wait.Milliseconds(),
		progressbar.OptionSetDescription("settling"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
	start := time.Now()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-results:
			bar.Finish()
			if res.Err != nil {
				return res.Err
			}
			fmt.Println(res.Request.Path)
			return nil
		case <-ticker.C:
			elapsed := time.Since(start).Milliseconds()
			if elapsed > wait.Milliseconds() {
				elapsed = wait.Milliseconds()
				bar.Describe("capturing")
			}
			bar.Set64(elapsed)
		}
	}
}
