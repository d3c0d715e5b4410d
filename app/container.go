package app

import (
	"log/slog"

	"github.com/Fettser/diplom-deploy/config"
	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/capture"
	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/domain/surface"
	"github.com/Fettser/diplom-deploy/ui/model"
	"github.com/Fettser/diplom-deploy/ui/presenter"
	"github.com/Fettser/diplom-deploy/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	Logger     *slog.Logger
	Form       *acquisition.Form
	Client     *restore.Client
	Request    *model.RequestModel
	Region     *model.RegionModel
	Renderer   *surface.Renderer
	CaptureSvc *capture.Service
	RootView   *view.RootView
	UI         view.UI

	// Presenters
	AcquisitionPresenter *presenter.AcquisitionPresenter
	CapturePresenter     *presenter.CapturePresenter
	RestorePresenter     *presenter.RestorePresenter
	StatePresenter       *presenter.StatePresenter
	StatsPresenter       *presenter.StatsPresenter
	ViewerPresenter      *presenter.ViewerPresenter
	Loop                 *presenter.Loop
}

// BuildContainer constructs the non-widget components. Presenters are wired by
// WirePresenters once the view has been built.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	client, err := restore.NewClient(restore.ClientConfig{URL: cfg.RestoreURL(), Timeout: cfg.RequestTimeout()}, logger)
	if err != nil {
		return nil, err
	}
	c.Client = client
	c.Form = acquisition.NewForm(logger, nil, nil)
	c.Request = model.NewRequestModel()
	c.Region = model.NewRegionModel(selectionRect(cfg))
	c.Renderer = surface.NewRenderer(logger, nil)
	c.CaptureSvc = capture.NewService(capture.ScreenGrabber{}, logger)
	c.RootView = view.NewRootView(cfg, logger)
	c.UI = c.RootView
	return c, nil
}

// WirePresenters creates the presenters against ui and the update loop that
// drives them. schedule re-arms the next tick. Later calls are no-ops.
func (c *AppContainer) WirePresenters(ui view.UI, schedule func()) {
	if c.Loop != nil {
		return
	}
	c.AcquisitionPresenter = presenter.NewAcquisitionPresenter(c.Form, ui, c.Config.PreviewWidth, c.Logger)
	c.CapturePresenter = presenter.NewCapturePresenter(c.CaptureSvc, c.Region, c.AcquisitionPresenter, ui, c.Logger)
	c.RestorePresenter = presenter.NewRestorePresenter(c.Form, c.Client, c.Request, ui.Params, ui, c.Config.RequestTimeout(), c.Logger)
	c.StatePresenter = presenter.NewStatePresenter(ui)
	c.StatsPresenter = presenter.NewStatsPresenter(c.Request, ui)
	c.ViewerPresenter = presenter.NewViewerPresenter(c.Request, c.Renderer, ui)
	c.Form.AddListener(c.StatePresenter.OnState)
	c.Loop = presenter.NewLoop(c.AcquisitionPresenter, c.CapturePresenter, c.RestorePresenter,
		c.StatePresenter, c.StatsPresenter, c.ViewerPresenter, schedule)
}

// Close releases background work. Safe to call more than once.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	c.Loop.Close()
	c.Form.Close()
	if c.Client != nil {
		_ = c.Client.Close()
	}
}
