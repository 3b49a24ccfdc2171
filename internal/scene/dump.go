package scene

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Dump renders the whole graph as deterministic text: the node tree with
// values, then connections, then non-empty sets. A node with several
// parents is printed under each of them.
func Dump(g *Graph) string {
	var b strings.Builder
	var walk func(h Handle, depth int)
	walk = func(h Handle, depth int) {
		n := g.nodes[h]
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name)
		b.WriteByte(' ')
		b.WriteString(n.Type)
		keys := make([]string, 0, len(n.Values))
		for k := range n.Values {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, n.Values[k])
		}
		b.WriteByte('\n')
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	for _, h := range g.roots {
		walk(h, 0)
	}

	if len(g.conns) > 0 {
		b.WriteString("connections:\n")
		for _, c := range g.conns {
			fmt.Fprintf(&b, "  %s -> %s\n", g.PlugName(c.Src), g.PlugName(c.Dst))
		}
	}

	var sets []string
	for _, h := range g.Handles() {
		n := g.nodes[h]
		if len(n.Members) == 0 {
			continue
		}
		members := make([]string, len(n.Members))
		for i, m := range n.Members {
			members[i] = g.memberString(m)
		}
		sets = append(sets, fmt.Sprintf("  %s: %s\n", n.Name, strings.Join(members, " ")))
	}
	if len(sets) > 0 {
		b.WriteString("sets:\n")
		for _, s := range sets {
			b.WriteString(s)
		}
	}
	return b.String()
}

func (g *Graph) memberString(m Member) string {
	name := g.Name(m.Node)
	idx := make([]string, len(m.Component.Indices))
	for i, v := range m.Component.Indices {
		idx[i] = strconv.Itoa(v)
	}
	switch m.Component.Kind {
	case ComponentFace:
		return fmt.Sprintf("%s.f[%s]", name, strings.Join(idx, ","))
	case ComponentPoint:
		return fmt.Sprintf("%s.vtx[%s]", name, strings.Join(idx, ","))
	}
	return name
}
