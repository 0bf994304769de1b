// Package recorder captures a screenshot after each workflow step, marks
// where the step clicked, and writes the run as an animated GIF.
package recorder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/session"
)

// Centerer is implemented by elements that know their on-screen position
type Centerer interface {
	Center(ctx context.Context) (image.Point, error)
}

// Frame is the screenshot taken after a step
type Frame struct {
	Step  string
	Image *image.RGBA
	// Clicks are the positions clicked during the step
	Clicks []image.Point
}

// Recorder collects frames from one session
type Recorder struct {
	Session session.Session
	Logger  *zap.Logger

	frames  []Frame
	pending []image.Point
}

// New returns a recorder over s
func New(s session.Session, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{Session: s, Logger: log}
}

// Clicked remembers el's position for the next frame. Elements without a
// position are ignored.
func (r *Recorder) Clicked(ctx context.Context, el session.Element) {
	c, ok := el.(Centerer)
	if !ok {
		return
	}
	p, err := c.Center(ctx)
	if err != nil {
		r.Logger.Debug("click position unavailable", zap.Error(err))
		return
	}
	r.pending = append(r.pending, p)
}

// Step captures the current page as the frame of the named step. Capture
// errors are logged; recording never fails the workflow.
func (r *Recorder) Step(ctx context.Context, name string) {
	clicks := r.pending
	r.pending = nil

	img, err := r.capture(ctx)
	if err != nil {
		r.Logger.Warn("screenshot failed", zap.String("step", name), zap.Error(err))
		return
	}
	for _, p := range clicks {
		drawClickMarker(img, p)
	}
	r.frames = append(r.frames, Frame{Step: name, Image: img, Clicks: clicks})
	r.Logger.Debug("frame captured", zap.String("step", name), zap.Int("clicks", len(clicks)))
}

// Frames returns the captured frames in step order
func (r *Recorder) Frames() []Frame {
	return r.frames
}

// WriteGIF encodes the captured frames to path and returns the file size
func (r *Recorder) WriteGIF(path string, opts Options) (int64, error) {
	images := make([]image.Image, len(r.frames))
	for i, f := range r.frames {
		images[i] = f.Image
	}
	return Generate(images, path, opts)
}

// SaveScreenshot writes the current page of s as a PNG file
func SaveScreenshot(ctx context.Context, s session.Session, path string) error {
	data, err := s.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

func (r *Recorder) capture(ctx context.Context) (*image.RGBA, error) {
	data, err := r.Session.Screenshot(ctx)
	if err != nil {
		return nil, err
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img, nil
}
