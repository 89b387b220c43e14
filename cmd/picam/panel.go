package main

import (
	"context"
	"errors"
	"os"

	"github.com/Dicklesworthstone/picam/pkg/capture"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/Dicklesworthstone/picam/pkg/panel"
	"github.com/Dicklesworthstone/picam/pkg/profile"
	"github.com/Dicklesworthstone/picam/pkg/ui"
	"github.com/Dicklesworthstone/picam/pkg/watcher"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func runPanel(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl, stopCamera, err := startCamera(ctx)
	if err != nil {
		return err
	}
	defer stopCamera()

	// A corrupt default profile still opens the panel, on camera
	// defaults, with the error showing.
	def, startErr := loadStartupProfile(ctx, store, ctrl, "")
	if startErr != nil {
		if !model.IsParse(startErr) {
			return startErr
		}
		def = model.NewProfile(model.DefaultParameters())
		if err := ctrl.Apply(ctx, def.CameraParameters); err != nil {
			return err
		}
	}

	var opts []capture.Option
	opts = append(opts, capture.WithSettleDelay(cfg.Camera.SettleDelay.Std()))
	deps := ui.Deps{Ctx: ctx, Camera: ctrl, Profiles: store}
	if db := openJournal(); db != nil {
		defer db.Close()
		opts = append(opts, capture.WithJournal(db))
		deps.Journal = db
	}
	deps.Worker = capture.NewWorker(ctrl, opts...)

	state := panel.New(def, cfg.Preview, cfg.Output)
	if startErr != nil {
		state.Err = startErr
	}

	p := tea.NewProgram(ui.NewModel(state, deps),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	w := watcher.New(store.Dir(), profile.Ext, 0, func(names []string) {
		p.Send(ui.ProfilesChangedMsg{Names: names})
	})
	g.Go(func() error {
		if err := w.Run(ctx); err != nil {
			// The panel works without live reload.
			logrus.WithError(err).Warn("profile watcher stopped")
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	return g.Wait()
}
