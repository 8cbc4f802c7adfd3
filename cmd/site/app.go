package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/config"
	"github.com/mustafabch/website/internal/contact"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/site"
	"github.com/mustafabch/website/internal/widgets"
)

// app is the assembled object graph shared by serve and render.
type app struct {
	cfg      config.Config
	root     fs.FS
	bundle   *i18n.Bundle
	fetcher  *dataset.Fetcher
	contact  *contact.Manager
	pipeline *site.Pipeline
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	bundle, err := i18n.Default(cfg.Site.DefaultLanguage, cfg.Site.Languages)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	renderer, err := render.New(bundle)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	root := os.DirFS(cfg.Server.Root)
	pages := dataset.NewFSTransport(root)

	var data dataset.Transport = pages
	if cfg.Data.Origin != "" {
		data, err = dataset.NewHTTPTransport(cfg.Data.Origin, &http.Client{}, cfg.Data.FetchTimeout)
		if err != nil {
			return nil, err
		}
	}
	fetcher := dataset.NewFetcher(data,
		dataset.WithCache(dataset.NewCache(cfg.Data.CacheTTL)),
		dataset.WithLogger(logger.Named("dataset")),
	)

	relay, err := contact.NewEmailJS(cfg.Relay, cfg.Site.Relay, nil)
	if err != nil {
		return nil, fmt.Errorf("contact relay: %w", err)
	}
	schema, err := contact.SchemaFromPage(root, cfg.Site.ContactURL(""))
	if err != nil {
		logger.Warn("contact form not readable; using the default fields", zap.Error(err))
	}
	cm := contact.New(relay, renderer, contact.Options{
		Schema:  schema,
		Limiter: contact.NewLimiter(cfg.Contact.PerMinute, cfg.Contact.Burst, nil),
	})

	pipeline := site.New(site.Deps{
		Site:      cfg.Site,
		Fetcher:   fetcher,
		Renderer:  renderer,
		Contact:   cm,
		Widgets:   widgets.Defaults(),
		Logger:    logger.Named("site"),
		Transport: pages,
	})

	return &app{
		cfg:      cfg,
		root:     root,
		bundle:   bundle,
		fetcher:  fetcher,
		contact:  cm,
		pipeline: pipeline,
	}, nil
}

// watchData invalidates cached datasets when files under the local data
// directory change. It is a no-op unless enabled.
func (a *app) watchData(ctx context.Context, logger *zap.Logger) (func() error, error) {
	if !a.cfg.Data.Watch || a.cfg.Data.Origin != "" {
		return func() error { return nil }, nil
	}
	w, err := dataset.Watch(ctx, filepath.Join(a.cfg.Server.Root, "data"), a.fetcher.Cache(), logger.Named("watch"))
	if err != nil {
		return nil, err
	}
	return w.Close, nil
}
