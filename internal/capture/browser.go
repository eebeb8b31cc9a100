package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"designdiff/internal/view"
	"designdiff/pkg/geometry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserOptions configures URL capture.
type BrowserOptions struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string

	// Viewport dimensions. Defaults: 1280x800.
	Width  int
	Height int

	// NavigateTimeout bounds navigation plus load. Default: 30s.
	NavigateTimeout time.Duration

	// SettleDelay is an extra wait after load for late-rendering content.
	SettleDelay time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (o *BrowserOptions) defaults() {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Browser captures live web pages as normalized views. Not safe for
// concurrent use; open one Browser per worker.
type Browser struct {
	opts    BrowserOptions
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewBrowser launches (or connects to) Chrome.
func NewBrowser(opts BrowserOptions) (*Browser, error) {
	opts.defaults()

	var wsURL string
	var lnch *launcher.Launcher
	if opts.RemoteURL != "" {
		wsURL = opts.RemoteURL
	} else {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		lnch = l
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	return &Browser{opts: opts, browser: b, lnch: lnch}, nil
}

// Close shuts down the browser connection and any launched Chrome.
func (b *Browser) Close() error {
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return nil
}

// domElement is the wire shape of one element produced by the in-page
// collection script.
type domElement struct {
	ID            string  `json:"id"`
	Tag           string  `json:"tag"`
	Text          string  `json:"text"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	W             float64 `json:"w"`
	H             float64 `json:"h"`
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    string  `json:"fontWeight"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`
	Color         string  `json:"color"`
	Background    string  `json:"background"`
}

// collectScript walks the rendered DOM and emits every visible element with
// its box and the computed style subset the metrics consume. Boxes are
// normalized against the full document size.
const collectScript = `() => {
	const docW = Math.max(document.documentElement.scrollWidth, window.innerWidth);
	const docH = Math.max(document.documentElement.scrollHeight, window.innerHeight);
	const out = [];
	let seq = 0;
	const px = v => { const n = parseFloat(v); return isNaN(n) ? 0 : n; };
	for (const el of document.querySelectorAll('*')) {
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) continue;
		const cs = getComputedStyle(el);
		if (cs.visibility === 'hidden' || cs.display === 'none' || px(cs.opacity) === 0) continue;
		let text = '';
		for (const child of el.childNodes) {
			if (child.nodeType === Node.TEXT_NODE) text += child.textContent;
		}
		out.push({
			id: 'e' + (seq++),
			tag: el.tagName.toLowerCase(),
			text: text.trim(),
			x: (r.x + window.scrollX) / docW,
			y: (r.y + window.scrollY) / docH,
			w: r.width / docW,
			h: r.height / docH,
			fontFamily: cs.fontFamily,
			fontSize: px(cs.fontSize),
			fontWeight: cs.fontWeight,
			lineHeight: px(cs.lineHeight),
			letterSpacing: px(cs.letterSpacing),
			color: cs.color,
			background: cs.backgroundColor,
		});
	}
	return JSON.stringify(out);
}`

// CaptureURL renders a page and returns a normalized view whose screenshot is
// written under outDir.
func (b *Browser) CaptureURL(ctx context.Context, pageURL, outDir string) (*view.NormalizedView, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.opts.Width,
		Height:            b.opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("browser: set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, b.opts.NavigateTimeout)
	defer cancel()

	b.opts.Logger.Debug("navigating", "url", pageURL,
		"viewport", fmt.Sprintf("%dx%d", b.opts.Width, b.opts.Height))
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("browser: wait load %s: %w", pageURL, err)
	}
	if b.opts.SettleDelay > 0 {
		time.Sleep(b.opts.SettleDelay)
	}

	shot, err := page.Context(navCtx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot %s: %w", pageURL, err)
	}
	shotPath := filepath.Join(outDir, fmt.Sprintf("capture_%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(shotPath, shot, 0644); err != nil {
		return nil, fmt.Errorf("browser: write screenshot: %w", err)
	}

	res, err := page.Context(navCtx).Eval(collectScript)
	if err != nil {
		return nil, fmt.Errorf("browser: collect DOM %s: %w", pageURL, err)
	}
	var elems []domElement
	if err := json.Unmarshal([]byte(res.Value.Str()), &elems); err != nil {
		return nil, fmt.Errorf("browser: decode DOM %s: %w", pageURL, err)
	}

	b.opts.Logger.Debug("page captured", "url", pageURL,
		"screenshot", shotPath, "elements", len(elems))

	dom := &view.DomSnapshot{Nodes: make([]view.DomNode, 0, len(elems))}
	for _, e := range elems {
		node := view.DomNode{
			ID:          e.ID,
			Tag:         e.Tag,
			Text:        e.Text,
			BoundingBox: geometry.Rect{X: e.X, Y: e.Y, Width: e.W, Height: e.H},
		}
		if e.Text != "" {
			node.Style = &view.ComputedStyle{
				FontFamily:    e.FontFamily,
				FontSize:      e.FontSize,
				FontWeight:    e.FontWeight,
				LineHeight:    e.LineHeight,
				LetterSpacing: e.LetterSpacing,
				Color:         e.Color,
				Background:    e.Background,
			}
		}
		dom.Nodes = append(dom.Nodes, node)
	}

	return &view.NormalizedView{
		Kind:           view.KindURL,
		Source:         pageURL,
		ScreenshotPath: shotPath,
		Width:          b.opts.Width,
		Height:         b.opts.Height,
		DOM:            dom,
	}, nil
}
