package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/config"
	"github.com/1broseidon/wlshell/internal/ipc"
)

// Version is set during build
var Version = "0.1.0-dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	socketPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "wlshell",
		Short: "wlshell - headless compositor shell",
		Long: `wlshell runs the shell layer of a Wayland compositor on a headless
display: it owns surface state, sends initial configures, places new
windows on a spiral around the output centre and keeps layer-shell
exclusive zones out of the placement area.

Clients talk to the daemon over a unix socket; the mcp subcommand
exposes the same operations to MCP clients.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file path (default: ~/.config/wlshell/config.yaml)")
	root.PersistentFlags().StringVar(&g.socketPath, "socket", "", "daemon socket path (default: $XDG_RUNTIME_DIR/wlshell.sock)")

	root.AddCommand(
		newRunCmd(g),
		newStatusCmd(g),
		newOutputsCmd(g),
		newWindowsCmd(g),
		newFixupCmd(g),
		newMapWindowCmd(g),
		newCloseWindowCmd(g),
		newReloadCmd(g),
		newHotplugCmd(g),
		newPlaceCmd(),
		newConfigCmd(g),
		newTopCmd(g),
		newMCPCmd(g),
	)
	return root
}

// loadConfig reads the config at g.configPath, or the default path.
func (g *globalFlags) loadConfig() (*config.LoadResult, error) {
	if g.configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(g.configPath)
}

// client returns an IPC client for the daemon socket. A socket set in the
// config is used when no flag overrides it.
func (g *globalFlags) client() *ipc.Client {
	if g.socketPath != "" {
		return ipc.NewClientWithSocket(g.socketPath)
	}
	if res, err := g.loadConfig(); err == nil && res.Config.IPC.Socket != "" {
		return ipc.NewClientWithSocket(res.Config.IPC.Socket)
	}
	return ipc.NewClient()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
