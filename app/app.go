package app

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/Fettser/diplom-deploy/config"
	"github.com/Fettser/diplom-deploy/debug"
	"github.com/Fettser/diplom-deploy/ui/theme"
	"github.com/Fettser/diplom-deploy/ui/view"
)

const defaultTick = 50 * time.Millisecond

// imageFileTypes is the filter offered by the open dialog.
var imageFileTypes = []FileType{
	{TypeName: "Images", Extensions: []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}},
	{TypeName: "All files", Extensions: []string{"*"}},
}

// Client is the desktop client: one window, one presenter loop on the Tk thread.
type Client struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	width   int
	height  int
	tick    time.Duration
	afterID string
	closed  bool

	container *AppContainer
	overlay   view.SelectionOverlay
	stops     []func()
}

// NewClient configures the main window. cfgPath is where region and theme
// changes are saved; empty disables saving.
func NewClient(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	c, err := BuildContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &Client{
		cfg:       cfg,
		cfgPath:   cfgPath,
		logger:    logger,
		width:     cfg.WindowWidth,
		height:    cfg.WindowHeight,
		tick:      cfg.Tick(),
		container: c,
	}
	if a.tick <= 0 {
		a.tick = defaultTick
	}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", a.width, a.height))
	return a, nil
}

// Start builds the widgets, wires presenters and enters the Tk main loop.
func (a *Client) Start() {
	theme.SetDark(a.cfg.DarkMode)
	if a.cfg.Debug {
		a.stops = append(a.stops,
			debug.StartGoroutineLogger(10*time.Second, a.logger),
			debug.StartMemLogger(10*time.Second, a.logger))
	}
	c := a.container
	a.overlay = view.NewSelectionOverlay(a.cfg, a.cfgPath, c.Region, a.logger)
	c.WirePresenters(c.UI, a.scheduleUpdate)
	c.RootView.Build(view.RootHandlers{
		Form: view.FormHandlers{
			OpenFile:   a.openFile,
			GrabScreen: func() { c.CapturePresenter.Grab() },
			PickRegion: a.overlay.OpenOrFocus,
			Remove:     c.AcquisitionPresenter.Remove,
			ToggleMask: func(enabled bool) { c.AcquisitionPresenter.ToggleMask(enabled) },
			Radius:     c.AcquisitionPresenter.RadiusInput,
			Submit:     func() { c.RestorePresenter.Submit() },
		},
		ToggleTheme: a.toggleTheme,
		Exit:        a.exitHandler,
	})
	a.logger.Info("client started", "server", a.cfg.RestoreURL())
	a.scheduleUpdate()
	App.Wait()
}

// Open selects path before the window is shown, as if picked in the dialog.
func (a *Client) Open(path string) error {
	c := a.container
	c.WirePresenters(c.UI, a.scheduleUpdate)
	return a.container.AcquisitionPresenter.OpenFile(path)
}

func (a *Client) openFile() {
	files := GetOpenFile(Title("Open interferogram"), Filetypes(imageFileTypes), Multiple(false))
	if len(files) == 0 || files[0] == "" {
		return
	}
	path := filepath.Clean(files[0])
	if err := a.container.AcquisitionPresenter.OpenFile(path); err != nil {
		a.logger.Warn("open failed", "path", path, "error", err)
		a.container.RootView.SetCaptureStatus("Could not open " + filepath.Base(path))
	}
}

func (a *Client) toggleTheme() {
	a.cfg.DarkMode = theme.ToggleDark()
	if a.cfgPath == "" {
		return
	}
	if err := a.cfg.Save(a.cfgPath); err != nil {
		a.logger.Error("config save failed", "error", err)
	}
}

func (a *Client) update() {
	if a.closed {
		return
	}
	a.container.Loop.Tick()
}

func (a *Client) scheduleUpdate() {
	if a.closed {
		return
	}
	// TclAfter keeps every widget update on Tk's event loop thread.
	a.afterID = TclAfter(a.tick, a.update)
}

func (a *Client) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.container.Close()
	for _, stop := range a.stops {
		stop()
	}
	a.logger.Info("client stopped")
	Destroy(App)
}

func selectionRect(cfg *config.Config) image.Rectangle {
	if cfg == nil || cfg.SelectionW <= 0 || cfg.SelectionH <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
}
