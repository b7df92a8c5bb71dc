package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/bsptile/internal/ipc"
	"github.com/1broseidon/bsptile/internal/logging"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	verbose bool
	socket  string
	logger  *slog.Logger
}

func (g *globals) client() *ipc.Client {
	if g.socket != "" {
		return ipc.NewClientAt(g.socket)
	}
	return ipc.NewClient()
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "bsptile",
		Short:         "Binary space partition tiling for X11 desktops",
		Long:          "bsptile keeps the windows of every monitor and virtual desktop tiled in a binary space partition tree. Run 'bsptile daemon' from your session startup; the other commands talk to the running daemon.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if g.verbose {
				level = "debug"
			}
			l, err := logging.New(os.Stderr, level)
			if err != nil {
				return err
			}
			g.logger = l
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&g.socket, "socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/bsptile.sock)")

	root.AddCommand(newDaemonCmd(g))
	root.AddCommand(newStatusCmd(g))
	root.AddCommand(newMonitorsCmd(g))
	root.AddCommand(newTreeCmd(g))
	root.AddCommand(newRetileCmd(g))
	root.AddCommand(newResetCmd(g))
	root.AddCommand(newReloadCmd(g))
	root.AddCommand(newSplitCmd(g))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newMCPCmd(g))
	return root
}
