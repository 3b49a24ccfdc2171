package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cooksync/internal/scene"
)

// AssertionContext provides what assertions evaluate against.
type AssertionContext struct {
	Graph  *scene.Graph
	Scenes []string
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Executed steps for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nSteps:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s", event.Step, event.Action, event.RunID)
		if event.Aborted {
			buf.WriteString(" (aborted)")
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure
// messages. An empty slice means all assertions passed.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	errs := []string{}
	for _, a := range assertions {
		if err := evaluate(result.Trace, a, actx); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	var expected, actual string
	g := actx.Graph

	switch a.Type {
	case AssertNodeExists:
		ok, got := nodeExists(g, a)
		if ok {
			return nil
		}
		expected, actual = describeNode(a), got

	case AssertNodeAbsent:
		h, ok := g.FindByName(a.Node)
		if !ok {
			return nil
		}
		n, _ := g.Node(h)
		expected = fmt.Sprintf("no node %s", a.Node)
		actual = fmt.Sprintf("found %s %s", n.Type, n.Name)

	case AssertTypeCount:
		got := countType(g, a.NodeType)
		if got == a.Count {
			return nil
		}
		expected = fmt.Sprintf("%d %s node(s)", a.Count, a.NodeType)
		actual = fmt.Sprintf("%d", got)

	case AssertConnected:
		dst, err := findPlug(g, a.Dst)
		if err != nil {
			expected, actual = fmt.Sprintf("%s -> %s", a.Src, a.Dst), err.Error()
			break
		}
		src, ok := g.Source(dst)
		if ok && g.PlugName(src) == a.Src {
			return nil
		}
		expected = fmt.Sprintf("%s -> %s", a.Src, a.Dst)
		actual = "not connected"
		if ok {
			actual = fmt.Sprintf("%s -> %s", g.PlugName(src), a.Dst)
		}

	case AssertValue:
		p, err := findPlug(g, a.Plug)
		if err != nil {
			expected, actual = fmt.Sprintf("%s = %s", a.Plug, a.Expect), err.Error()
			break
		}
		v, ok := g.Value(p)
		if ok && v.String() == a.Expect {
			return nil
		}
		expected = fmt.Sprintf("%s = %s", a.Plug, a.Expect)
		actual = "no value"
		if ok {
			actual = v.String()
		}

	case AssertSetMembers:
		h, ok := g.FindByName(a.Set)
		if !ok {
			expected, actual = fmt.Sprintf("set %s", a.Set), "not found"
			break
		}
		got := memberNames(g, h)
		want := a.Members
		if want == nil {
			want = []string{}
		}
		if slices.Equal(got, want) {
			return nil
		}
		expected = fmt.Sprintf("%s members %v", a.Set, want)
		actual = fmt.Sprintf("%v", got)

	case AssertMatchesStep:
		if a.Step < 0 || a.Step >= len(actx.Scenes) {
			expected = fmt.Sprintf("scene after step %d", a.Step)
			actual = fmt.Sprintf("only %d scene(s) recorded", len(actx.Scenes))
			break
		}
		final := actx.Scenes[len(actx.Scenes)-1]
		if final == actx.Scenes[a.Step] {
			return nil
		}
		expected = fmt.Sprintf("final scene equal to the scene after step %d", a.Step)
		actual = "scenes differ"

	default:
		expected, actual = "known assertion type", a.Type
	}

	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   actual,
		Trace:    trace,
	}
}

func describeNode(a Assertion) string {
	desc := a.Node
	if a.NodeType != "" {
		desc = a.NodeType + " " + desc
	}
	if a.Parent != "" {
		desc += " under " + a.Parent
	}
	return desc
}

// nodeExists looks for a node matching name, type and parent. On failure it
// describes what was found instead.
func nodeExists(g *scene.Graph, a Assertion) (bool, string) {
	var candidates []*scene.Node
	for _, h := range g.Handles() {
		if n, _ := g.Node(h); n.Name == a.Node {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return false, "not found"
	}
	for _, n := range candidates {
		if a.NodeType != "" && n.Type != a.NodeType {
			continue
		}
		if a.Parent != "" && !hasParent(g, n, a.Parent) {
			continue
		}
		return true, ""
	}
	n := candidates[0]
	var parents []string
	for _, p := range n.Parents {
		if p == scene.NoHandle {
			parents = append(parents, "<world>")
			continue
		}
		parents = append(parents, g.Name(p))
	}
	return false, fmt.Sprintf("%s %s under %s", n.Type, n.Name, strings.Join(parents, ","))
}

func hasParent(g *scene.Graph, n *scene.Node, parent string) bool {
	for _, p := range n.Parents {
		if p != scene.NoHandle && g.Name(p) == parent {
			return true
		}
	}
	return false
}

func countType(g *scene.Graph, typ string) int {
	count := 0
	for _, h := range g.Handles() {
		if n, _ := g.Node(h); n.Type == typ {
			count++
		}
	}
	return count
}

// findPlug resolves "node.attr". The attribute may itself contain dots.
func findPlug(g *scene.Graph, name string) (scene.Plug, error) {
	node, attr, ok := strings.Cut(name, ".")
	if !ok || node == "" || attr == "" {
		return scene.Plug{}, fmt.Errorf("invalid plug %q", name)
	}
	h, ok := g.FindByName(node)
	if !ok {
		return scene.Plug{}, fmt.Errorf("node %s not found", node)
	}
	return scene.P(h, attr), nil
}

func memberNames(g *scene.Graph, set scene.Handle) []string {
	names := []string{}
	for _, m := range g.Members(set) {
		names = append(names, g.Name(m.Node))
	}
	return names
}
