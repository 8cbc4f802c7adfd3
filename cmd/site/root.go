package main

import (
	"github.com/spf13/cobra"

	"github.com/mustafabch/website/internal/config"
)

type rootFlags struct {
	envFile  string
	siteFile string
	root     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "site",
		Short:         "Serve and render the agency website",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file with local overrides")
	cmd.PersistentFlags().StringVar(&flags.siteFile, "site-config", "", "site.yaml path (overrides SITE_CONFIG)")
	cmd.PersistentFlags().StringVar(&flags.root, "root", "", "site tree to serve (overrides SITE_ROOT)")

	cmd.AddCommand(newServeCmd(flags), newRenderCmd(flags))
	return cmd
}

// load reads the configuration with the command line overrides applied.
func (f *rootFlags) load() (config.Config, error) {
	opts := []config.Option{config.WithEnvFile(f.envFile)}
	if f.siteFile != "" {
		opts = append(opts, config.WithSiteFile(f.siteFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, err
	}
	if f.root != "" {
		cfg.Server.Root = f.root
	}
	return cfg, nil
}
