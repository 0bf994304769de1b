package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/pagemap"
)

// Options configures the launched browser
type Options struct {
	Bin        string // browser executable; empty looks up a local Chrome or Chromium
	Width      int
	Height     int
	Headless   bool
	ProfileDir string        // Chrome/Chromium profile directory for authenticated sessions
	SlowMotion time.Duration // delay inserted before each input action, for watching runs
}

// Browser wraps the Rod browser and its single page
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
}

var _ Session = (*Browser)(nil)

// Launch starts a local Chromium and opens a blank page
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 720
	}

	path := opts.Bin
	if path == "" {
		path, _ = launcher.LookPath()
	}
	l := launcher.New().Context(ctx).Bin(path).Headless(opts.Headless).
		Set("disable-notifications")
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if opts.SlowMotion > 0 {
		browser = browser.SlowMotion(opts.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	return &Browser{browser: browser, page: page}, nil
}

// Close cleans up browser resources
func (b *Browser) Close() error {
	var errs []error
	if b.page != nil {
		errs = append(errs, b.page.Close())
	}
	if b.browser != nil {
		errs = append(errs, b.browser.Close())
	}
	return errors.Join(errs...)
}

// Page returns the underlying Rod page
func (b *Browser) Page() *rod.Page {
	return b.page
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	page := b.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (b *Browser) Reload(ctx context.Context) error {
	page := b.page.Context(ctx)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return page.WaitLoad()
}

func (b *Browser) FindElements(ctx context.Context, loc locator.Locator) ([]Element, error) {
	page := b.page.Context(ctx)

	var (
		found rod.Elements
		err   error
	)
	q := loc.Query()
	if q.XPath != "" {
		found, err = page.ElementsX(q.XPath)
	} else {
		found, err = page.Elements(q.CSS)
	}
	if err != nil {
		return nil, classify(err)
	}

	out := make([]Element, len(found))
	for i, el := range found {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

func (b *Browser) ExecuteScript(ctx context.Context, js string, args ...any) (any, error) {
	params := make([]interface{}, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case *rodElement:
			params[i] = v.el.Object
		case Element:
			return nil, fmt.Errorf("script argument %d is not a rod element (%T)", i, a)
		default:
			params[i] = v
		}
	}

	res, err := b.page.Context(ctx).Evaluate(rod.Eval(js, params...))
	if err != nil {
		return nil, classify(err)
	}
	return res.Value.Val(), nil
}

func (b *Browser) PageSource(ctx context.Context) (string, error) {
	html, err := b.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return html, nil
}

func (b *Browser) Screenshot(ctx context.Context) ([]byte, error) {
	return b.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Snapshot extracts the page map of the current document
func (b *Browser) Snapshot(ctx context.Context) (*pagemap.PageMap, error) {
	return pagemap.Extract(ctx, b.page)
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Value(ctx context.Context) (string, error) {
	v, err := e.el.Context(ctx).Property("value")
	if err != nil {
		return "", classify(err)
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

func (e *rodElement) Clear(ctx context.Context) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return classify(err)
	}
	return classify(el.Input(""))
}

// SendKeys types text through the keyboard so per-key listeners and native
// date widgets see real key events. Text outside the US layout is inserted.
func (e *rodElement) SendKeys(ctx context.Context, text string) error {
	el := e.el.Context(ctx)
	if err := el.Focus(); err != nil {
		return classify(err)
	}

	keys, ok := keystrokes(text)
	if !ok {
		return classify(el.Input(text))
	}
	return classify(el.Page().Context(ctx).Keyboard.Type(keys...))
}

func (e *rodElement) Click(ctx context.Context) error {
	return classify(e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1))
}

func (e *rodElement) IsDisplayed(ctx context.Context) (bool, error) {
	visible, err := e.el.Context(ctx).Visible()
	if err != nil {
		return false, classify(err)
	}
	return visible, nil
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", classify(err)
	}
	return text, nil
}

// Center returns the center of the element's first content quad in page
// pixels
func (e *rodElement) Center(ctx context.Context) (image.Point, error) {
	shape, err := e.el.Context(ctx).Shape()
	if err != nil {
		return image.Point{}, classify(err)
	}
	if len(shape.Quads) == 0 {
		return image.Point{}, fmt.Errorf("element has no shape")
	}

	quad := shape.Quads[0]
	x := int((quad[0] + quad[2] + quad[4] + quad[6]) / 4)
	y := int((quad[1] + quad[3] + quad[5] + quad[7]) / 4)
	return image.Pt(x, y), nil
}

// keystrokes maps text to US-layout keys; ok is false if any rune has no key
func keystrokes(text string) ([]input.Key, bool) {
	keys := make([]input.Key, 0, len(text))
	for _, r := range text {
		switch {
		case r == '\t':
			keys = append(keys, input.Tab)
		case r == '\n':
			keys = append(keys, input.Enter)
		case r >= 0x20 && r <= 0x7e:
			keys = append(keys, input.Key(r))
		default:
			return nil, false
		}
	}
	return keys, true
}

// staleErrors are CDP responses for handles or contexts that went away
// during navigation or a re-render
var staleErrors = []error{
	cdp.ErrObjNotFound,
	cdp.ErrCtxDestroyed,
	cdp.ErrCtxNotFound,
	cdp.ErrNodeNotFoundAtPos,
}

// staleMessages catch the node-level variants, which rod has no sentinel for
// and which may carry extra Data
var staleMessages = []string{
	"No node with given id",
	"Could not find node",
	"Node is detached",
	"Cannot find context with specified id",
	"Execution context was destroyed",
	"Could not find object with given id",
}

// classify maps rod and CDP failures onto ErrStale and ErrNoSuchElement
func classify(err error) error {
	if err == nil {
		return nil
	}

	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", ErrNoSuchElement, err)
	}

	var objNotFound *rod.ObjectNotFoundError
	if errors.As(err, &objNotFound) {
		return fmt.Errorf("%w: %w", ErrStale, err)
	}

	for _, stale := range staleErrors {
		if errors.Is(err, stale) {
			return fmt.Errorf("%w: %w", ErrStale, err)
		}
	}

	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		for _, msg := range staleMessages {
			if strings.Contains(cdpErr.Message, msg) {
				return fmt.Errorf("%w: %w", ErrStale, err)
			}
		}
	}
	return err
}
