package camera

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/sirupsen/logrus"
)

// ErrStopped is returned once the controller loop has exited
var ErrStopped = errors.New("camera controller stopped")

type command struct {
	op    string
	fn    func(Device) error
	reply chan error
}

// Controller owns the Device. Every interaction runs on the goroutine
// started by Run, so attribute changes and captures never overlap.
type Controller struct {
	dev  Device
	cmds chan command
	done chan struct{}
	log  *logrus.Entry

	// Owned by the Run goroutine.
	previewing bool
	window     model.Window
}

// NewController wraps dev. Call Run before issuing commands.
func NewController(dev Device) *Controller {
	return &Controller{
		dev:  dev,
		cmds: make(chan command),
		done: make(chan struct{}),
		log:  logrus.WithField("component", "camera"),
	}
}

// Run processes commands until ctx is cancelled, then stops the
// preview and closes the device.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case cmd := <-c.cmds:
			err := cmd.fn(c.dev)
			if err != nil {
				c.log.WithError(err).Warnf("%s failed", cmd.op)
			}
			if errors.Is(err, model.ErrPreviewStopped) {
				c.previewing = false
			}
			cmd.reply <- err
		}
	}
}

// Done is closed when Run returns
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) shutdown() {
	if c.previewing {
		if err := c.dev.StopPreview(); err != nil {
			c.log.WithError(err).Warn("stopping preview on shutdown")
		}
		c.previewing = false
	}
	if err := c.dev.Close(); err != nil {
		c.log.WithError(err).Warn("closing camera")
	}
}

func (c *Controller) do(ctx context.Context, op string, fn func(Device) error) error {
	reply := make(chan error, 1)
	select {
	case c.cmds <- command{op: op, fn: fn, reply: reply}:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetAttribute applies one parameter on the device
func (c *Controller) SetAttribute(ctx context.Context, p model.Parameter, v int) error {
	return c.do(ctx, "set "+p.Key(), func(d Device) error {
		return d.SetAttribute(p, v)
	})
}

// Apply sets every parameter that differs from the device's current value.
// It stops at the first rejected value.
func (c *Controller) Apply(ctx context.Context, params model.CameraParameters) error {
	return c.do(ctx, "apply parameters", func(d Device) error {
		current := d.Parameters()
		for _, p := range model.Parameters {
			v := params.Get(p)
			if current.Get(p) == v {
				continue
			}
			if err := d.SetAttribute(p, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Parameters returns the values applied on the device
func (c *Controller) Parameters(ctx context.Context) (model.CameraParameters, error) {
	var out model.CameraParameters
	err := c.do(ctx, "read parameters", func(d Device) error {
		out = d.Parameters()
		return nil
	})
	return out, err
}

// StartPreview shows the live feed in win
func (c *Controller) StartPreview(ctx context.Context, win model.Window) error {
	return c.do(ctx, "start preview", func(d Device) error {
		if err := d.StartPreview(win); err != nil {
			return err
		}
		c.previewing = true
		c.window = win
		return nil
	})
}

// MovePreview repositions a running preview; it is a no-op otherwise
func (c *Controller) MovePreview(ctx context.Context, win model.Window) error {
	return c.do(ctx, "move preview", func(d Device) error {
		if !c.previewing {
			return nil
		}
		if err := d.MovePreview(win); err != nil {
			return err
		}
		c.window = win
		return nil
	})
}

// StopPreview hides the live feed
func (c *Controller) StopPreview(ctx context.Context) error {
	return c.do(ctx, "stop preview", func(d Device) error {
		if !c.previewing {
			return nil
		}
		c.previewing = false
		return d.StopPreview()
	})
}

// Capture takes one still. A running preview is paused for the
// duration of the capture and restarted afterwards.
func (c *Controller) Capture(ctx context.Context, req model.CaptureRequest) error {
	return c.do(ctx, "capture", func(d Device) error {
		resume := c.previewing
		if resume {
			if err := d.StopPreview(); err != nil {
				return err
			}
		}

		captureErr := d.Capture(req)

		if resume {
			if err := d.StartPreview(c.window); err != nil {
				c.previewing = false
				if captureErr == nil {
					return fmt.Errorf("resume preview after capture: %w: %w", model.ErrPreviewStopped, err)
				}
				c.log.WithError(err).Warn("resume preview after failed capture")
				return fmt.Errorf("%w (%w)", captureErr, model.ErrPreviewStopped)
			}
		}
		return captureErr
	})
}
