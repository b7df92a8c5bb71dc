package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.client().GetStatus()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "desktop:        %d\n", st.Desktop)
			fmt.Fprintf(w, "monitors:       %d\n", st.Monitors)
			fmt.Fprintf(w, "slots:          %d\n", st.Slots)
			fmt.Fprintf(w, "tiled_windows:  %d\n", st.Tiled)
			if st.Dragging != 0 {
				fmt.Fprintf(w, "dragging:       0x%x\n", st.Dragging)
			}
			fmt.Fprintf(w, "uptime_seconds: %d\n", st.UptimeSeconds)
			if len(st.Ignored) > 0 {
				fmt.Fprintln(w, "ignored:")
				for _, iw := range st.Ignored {
					fmt.Fprintf(w, "- 0x%x %q (%s)\n", iw.ID, iw.Title, iw.Reason)
				}
			}
			return nil
		},
	}
}

func newMonitorsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List monitors with their usable and tiled areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mons, err := g.client().GetMonitors()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range mons {
				fmt.Fprintf(w, "%d %s bounds=%s usable=%s work_area=%s\n", m.ID, m.Name, m.Bounds, m.Usable, m.WorkArea)
			}
			return nil
		},
	}
}

func newRetileCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "retile",
		Short: "Move every window on the current desktop back into its tile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.client().Retile()
		},
	}
}

func newResetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Rebuild the trees of the current desktop from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.client().Reset()
		},
	}
}

func newReloadCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the daemon configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config: reloaded")
			return nil
		},
	}
}

func newSplitCmd(g *globals) *cobra.Command {
	var (
		window string
		offset int
	)

	cmd := &cobra.Command{
		Use:   "split --window ID --offset PX",
		Short: "Move the split line directly above a tiled window",
		Long:  "Fix the first (left or top) side of the split directly above the window at PX pixels. An offset of 0 restores the even split.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWindowID(window)
			if err != nil {
				return err
			}
			if offset < 0 {
				return fmt.Errorf("--offset must be >= 0")
			}
			g.logger.Debug("cli: set split", "window", id, "offset", offset)
			return g.client().SetSplit(id, offset)
		},
	}
	cmd.Flags().StringVar(&window, "window", "", "window id, decimal or 0x-prefixed hex (required)")
	cmd.Flags().IntVar(&offset, "offset", 0, "size in pixels of the first side of the split")
	_ = cmd.MarkFlagRequired("window")
	return cmd
}

// parseWindowID accepts the decimal and 0x-prefixed forms printed by
// xwininfo, xdotool and bsptile itself.
func parseWindowID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("window id is required")
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	if v == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(v), nil
}
