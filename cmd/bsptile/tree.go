package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/bsptile/internal/tiling"
)

var (
	colorCyan = lipgloss.Color("36")
	colorDim  = lipgloss.Color("240")
	colorBlue = lipgloss.Color("75")
)

type treeStyles struct {
	title     lipgloss.Style
	container lipgloss.Style
	tile      lipgloss.Style
	dim       lipgloss.Style
	enum      lipgloss.Style
}

func newTreeStyles(styled bool) treeStyles {
	if !styled {
		plain := lipgloss.NewStyle()
		return treeStyles{title: plain, container: plain, tile: plain, dim: plain, enum: plain.PaddingRight(1)}
	}
	return treeStyles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
		container: lipgloss.NewStyle().Foreground(colorBlue),
		tile:      lipgloss.NewStyle(),
		dim:       lipgloss.NewStyle().Foreground(colorDim),
		enum:      lipgloss.NewStyle().Foreground(colorDim).PaddingRight(1),
	}
}

func newTreeCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the layout tree of every slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := g.client().GetTree()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(slots)
			}
			renderSlots(w, slots, isTerminal(w))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trees as JSON")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderSlots writes one tree per slot. Styling is only applied when styled
// is set so that piped output stays plain text.
func renderSlots(w io.Writer, slots []tiling.SlotSnapshot, styled bool) {
	if len(slots) == 0 {
		fmt.Fprintln(w, "no tiled windows")
		return
	}
	st := newTreeStyles(styled)
	for i, s := range slots {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, st.title.Render(slotTitle(s)))
		if s.Root == nil {
			fmt.Fprintln(w, st.dim.Render("(no layout)"))
			continue
		}
		fmt.Fprintln(w, nodeTree(s.Root, st).String())
	}
}

func slotTitle(s tiling.SlotSnapshot) string {
	name := s.MonitorName
	if name == "" {
		name = fmt.Sprintf("monitor %d", s.Monitor)
	}
	return fmt.Sprintf("desktop %d  %s  %s  (%d tiles)", s.Desktop, name, s.Area, s.Tiles)
}

func nodeTree(v *tiling.NodeView, st treeStyles) *tree.Tree {
	t := tree.Root(nodeLabel(v, st)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.enum)
	for _, c := range v.Children {
		if len(c.Children) > 0 {
			t.Child(nodeTree(c, st))
		} else {
			t.Child(nodeLabel(c, st))
		}
	}
	return t
}

func nodeLabel(v *tiling.NodeView, st treeStyles) string {
	rect := st.dim.Render(v.Rect.String())
	if v.Kind == "tile" {
		label := fmt.Sprintf("0x%x", v.Window)
		if v.Title != "" {
			label += " " + v.Title
		}
		return st.tile.Render(label) + "  " + rect
	}

	var b strings.Builder
	b.WriteString(v.Split)
	if v.Constraint != nil {
		fmt.Fprintf(&b, " @%dpx", *v.Constraint)
	}
	return st.container.Render(b.String()) + "  " + rect
}
