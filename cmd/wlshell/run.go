package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/daemon"
	"github.com/1broseidon/wlshell/internal/logging"
	"github.com/1broseidon/wlshell/internal/platform"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		importOutputs bool
		display       string
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the shell daemon (foreground)",
		Long: `Start the shell daemon in the foreground. Outputs and panels come from
the config; with --import-outputs (or x11.import_outputs) the monitors
and dock struts of the host X server are mirrored instead.

SIGHUP reloads the config. SIGINT and SIGTERM stop the daemon.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := g.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg := res.Config
			if cmd.Flags().Changed("import-outputs") {
				cfg.X11.ImportOutputs = importOutputs
			}
			if display != "" {
				cfg.X11.Display = display
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			for _, f := range res.Files {
				logger.Debug("config file loaded", "path", f)
			}

			var host platform.Host
			if cfg.X11.ImportOutputs {
				host, err = platform.OpenHost(cfg.X11.Display)
				if err != nil {
					if len(cfg.Outputs) == 0 {
						return fmt.Errorf("failed to open host display: %w", err)
					}
					logger.Warn("host display unavailable, using configured outputs", "error", err)
					host = nil
				}
			}

			d, err := daemon.New(daemon.Options{
				Config:     cfg,
				ConfigPath: g.configPath,
				Host:       host,
				SocketPath: g.socketPath,
				Logger:     logger,
			})
			if err != nil {
				if host != nil {
					host.Close()
				}
				return err
			}
			defer d.Close()

			logger.Info("wlshell daemon started", "version", Version)
			return d.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&importOutputs, "import-outputs", false, "mirror the host X server's monitors as outputs")
	cmd.Flags().StringVar(&display, "display", "", "X display to import from (default: $DISPLAY)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	return cmd
}
