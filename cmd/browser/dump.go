package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/paint"
)

func newDumpCmd(a *app) *cobra.Command {
	var tree, boxes, display bool
	cmd := &cobra.Command{
		Use:   "dump <url|file>",
		Short: "Print the DOM tree, box tree or display list of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !tree && !boxes && !display {
				tree = true
			}
			out := cmd.OutOrStdout()
			if tree {
				fmt.Fprint(out, dumpTree(tab.Nodes))
			}
			if boxes {
				fmt.Fprint(out, dumpBoxes(tab.Frame))
			}
			if display {
				fmt.Fprint(out, dumpDisplayList(tab.DisplayList))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the DOM tree (default)")
	cmd.Flags().BoolVar(&boxes, "boxes", false, "print the box tree")
	cmd.Flags().BoolVar(&display, "display", false, "print the display list")
	return cmd
}

func nodeLabel(n *html.Node) string {
	if n.Type == html.TextNode {
		return fmt.Sprintf("%q", n.Text)
	}
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("<" + n.TagName)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%q", k, n.Attributes[k])
	}
	sb.WriteString(">")
	return sb.String()
}

func dumpTree(root *html.Node) string {
	t := treeprint.New()
	if root != nil {
		addNode(t, root)
	}
	return t.String()
}

func addNode(parent treeprint.Tree, n *html.Node) {
	if len(n.Children) == 0 {
		parent.AddNode(nodeLabel(n))
		return
	}
	branch := parent.AddBranch(nodeLabel(n))
	for _, c := range n.Children {
		addNode(branch, c)
	}
}

func rectLabel(r layout.Rect) string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", r.X, r.Y, r.Width, r.Height)
}

func boxLabel(b *layout.Box) string {
	label := b.Kind.String() + " " + rectLabel(b.Rect())
	if b.Node != nil {
		label += " " + nodeLabel(b.Node)
	}
	return label
}

func dumpBoxes(f *layout.Frame) string {
	t := treeprint.New()
	if f != nil && f.Document != nil {
		addBox(t, f.Document)
	}
	return t.String()
}

func addBox(parent treeprint.Tree, b *layout.Box) {
	branch := parent.AddBranch(boxLabel(b))
	for _, line := range b.LineBoxes {
		words := make([]string, 0, len(line.Items))
		for _, it := range line.Items {
			if it.Type == layout.InlineItemWidget {
				words = append(words, "["+nodeLabel(it.Node)+"]")
			} else {
				words = append(words, it.Text)
			}
		}
		branch.AddNode(fmt.Sprintf("line y=%.1f baseline=%.1f: %s", line.Y, line.Baseline, strings.Join(words, " ")))
	}
	for _, c := range b.Children {
		addBox(branch, c)
	}
}

func dumpDisplayList(cmds []paint.Command) string {
	t := treeprint.New()
	addCommands(t, cmds)
	return t.String()
}

func addCommands(parent treeprint.Tree, cmds []paint.Command) {
	for _, c := range cmds {
		switch c := c.(type) {
		case paint.DrawText:
			parent.AddNode(fmt.Sprintf("DrawText (%.1f,%.1f) %q %s", c.X, c.Y, c.Text, c.Font))
		case paint.DrawRect:
			parent.AddNode(fmt.Sprintf("DrawRect %s %s", rectLabel(c.Rect), hex(c.Color.R, c.Color.G, c.Color.B, c.Color.A)))
		case paint.DrawRRect:
			parent.AddNode(fmt.Sprintf("DrawRRect %s r=%.1f %s", rectLabel(c.Rect), c.Radius, hex(c.Color.R, c.Color.G, c.Color.B, c.Color.A)))
		case paint.DrawLine:
			parent.AddNode(fmt.Sprintf("DrawLine (%.1f,%.1f)-(%.1f,%.1f) w=%.1f", c.X1, c.Y1, c.X2, c.Y2, c.Thickness))
		case paint.DrawOutline:
			parent.AddNode(fmt.Sprintf("DrawOutline %s w=%.1f", rectLabel(c.Rect), c.Thickness))
		case paint.Blend:
			addCommands(parent.AddBranch(fmt.Sprintf("Blend opacity=%.2f mode=%s", c.Opacity, c.BlendMode)), c.Children)
		}
	}
}

func hex(r, g, b, a uint8) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}
