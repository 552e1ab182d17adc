// Package lineage renders a run's artifact lineage as a Graphviz graph:
// the run at the root, its artifact paths below, and the requirement pins
// each manifest declares as leaves. Pins shared by several artifact paths
// collapse into one node, which makes requirement overlap visible.
package lineage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a run's manifests to Graphviz DOT format.
// manifests maps artifact path to its requirement lines.
func ToDOT(runID string, manifests map[string][]string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	runNode := "run:" + runID
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightblue];\n", runNode, runID)

	paths := make([]string, 0, len(manifests))
	for p := range manifests {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := map[string]bool{}
	for _, p := range paths {
		pathNode := "artifact:" + p
		fmt.Fprintf(&buf, "  %q [label=%q];\n", pathNode, p)
		fmt.Fprintf(&buf, "  %q -> %q;\n", runNode, pathNode)

		for _, req := range manifests[p] {
			reqNode := "req:" + req
			if !seen[req] {
				seen[req] = true
				fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", reqNode, req)
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", pathNode, reqNode)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// NodeCount returns the number of node declarations in a DOT string.
// Used for summary output after rendering.
func NodeCount(dot string) int {
	count := 0
	for _, line := range strings.Split(dot, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "\"") && strings.Contains(line, "[label=") {
			count++
		}
	}
	return count
}
