package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCommand is returned for commands the interpreter does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Supported host commands:
//
//	assignSG <shadingGroup> <node>       whole-node shading group assignment
//	parent [-add] <child> <parent>       move, or instance with -add
//	connectAttr <node.attr> <node.attr>  plug connection
//
// Node arguments are names or "#<handle>".
func (g *Graph) runCommand(text string) (undoFunc, error) {
	args := strings.Fields(text)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command: %w", ErrUnknownCommand)
	}
	switch args[0] {
	case "assignSG":
		if len(args) != 3 {
			return nil, fmt.Errorf("assignSG: want 2 arguments, got %d", len(args)-1)
		}
		sg, err := g.resolve(args[1])
		if err != nil {
			return nil, err
		}
		node, err := g.resolve(args[2])
		if err != nil {
			return nil, err
		}
		return g.addMember(sg, Member{Node: node, Component: Whole()})

	case "parent":
		add := len(args) == 4 && args[1] == "-add"
		rest := args[1:]
		if add {
			rest = args[2:]
		}
		if len(rest) != 2 {
			return nil, fmt.Errorf("parent: want 2 node arguments, got %d", len(rest))
		}
		child, err := g.resolve(rest[0])
		if err != nil {
			return nil, err
		}
		parent, err := g.resolve(rest[1])
		if err != nil {
			return nil, err
		}
		if add {
			return g.link(parent, child)
		}
		return g.reparent(child, parent)

	case "connectAttr":
		if len(args) != 3 {
			return nil, fmt.Errorf("connectAttr: want 2 arguments, got %d", len(args)-1)
		}
		src, err := g.resolvePlug(args[1])
		if err != nil {
			return nil, err
		}
		dst, err := g.resolvePlug(args[2])
		if err != nil {
			return nil, err
		}
		return g.connect(Connection{Src: src, Dst: dst})
	}
	return nil, fmt.Errorf("%q: %w", args[0], ErrUnknownCommand)
}

func (g *Graph) resolve(ref string) (Handle, error) {
	if strings.HasPrefix(ref, "#") {
		n, err := strconv.ParseInt(ref[1:], 10, 64)
		if err != nil {
			return NoHandle, fmt.Errorf("bad handle %q: %w", ref, err)
		}
		if !g.Exists(Handle(n)) {
			return NoHandle, fmt.Errorf("%s: %w", ref, ErrNodeNotFound)
		}
		return Handle(n), nil
	}
	h, ok := g.FindByName(ref)
	if !ok {
		return NoHandle, fmt.Errorf("%s: %w", ref, ErrNodeNotFound)
	}
	return h, nil
}

func (g *Graph) resolvePlug(ref string) (Plug, error) {
	node, attr, ok := strings.Cut(ref, ".")
	if !ok || attr == "" {
		return Plug{}, fmt.Errorf("bad plug %q", ref)
	}
	h, err := g.resolve(node)
	if err != nil {
		return Plug{}, err
	}
	return P(h, attr), nil
}

// Ref formats a handle as a command argument.
func Ref(h Handle) string {
	return fmt.Sprintf("#%d", h)
}

// PlugRef formats a plug as a command argument.
func PlugRef(p Plug) string {
	return fmt.Sprintf("#%d.%s", p.Node, p.Attr)
}
