package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/nav"
	"github.com/mustafabch/website/internal/requestctx"
	"github.com/mustafabch/website/internal/site"
	"github.com/mustafabch/website/internal/ui"
)

type renderFlags struct {
	lang  string
	theme string
	host  string
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <page>",
		Short: "Render one page through the pipeline and print it",
		Long: "Render one page of the site tree, for example /ar/portfolio/project-details.html?id=2, " +
			"and write the resulting HTML to stdout. A not-found redirect is reported on stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, flags, rf, args[0])
		},
	}
	cmd.Flags().StringVar(&rf.lang, "lang", "", "page language (defaults to the path segment)")
	cmd.Flags().StringVar(&rf.theme, "theme", string(ui.ThemeDark), "theme cookie value")
	cmd.Flags().StringVar(&rf.host, "host", "localhost", "host used for absolute links")
	return cmd
}

func runRender(cmd *cobra.Command, flags *rootFlags, rf *renderFlags, target string) error {
	cfg, err := flags.load()
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	if cfg.Dev {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	u.Scheme, u.Host = "http", rf.host
	u.Path = path.Clean("/" + u.Path)
	if strings.HasSuffix(target, "/") || u.Path == "/" {
		u.Path = path.Join(u.Path, "index.html")
	}
	src, err := fs.ReadFile(a.root, strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	lang := rf.lang
	if lang == "" {
		lang = nav.LanguageOf(u.Path)
	}
	if !a.bundle.IsSupported(lang) {
		lang = cfg.Site.DefaultLanguage
	}

	ctx := requestctx.WithLogger(cmd.Context(), logger)
	res, err := a.pipeline.Render(ctx, bytes.NewReader(src), site.Request{
		URL:   u,
		Lang:  lang,
		Theme: ui.ParseTheme(rf.theme),
	})
	if err != nil {
		return err
	}
	if res.Redirect != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "redirect: %s\n", res.Redirect)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(res.HTML)
	return err
}
