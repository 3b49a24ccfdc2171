package cook

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError lists every schema violation found in a cook document.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid cook result: " + e.Issues[0]
	}
	return fmt.Sprintf("invalid cook result (%d issues): %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

// Validate checks a YAML cook document against the embedded CUE schema.
// Definitions are closed, so unknown keys are reported as well as missing
// or mistyped ones.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse cook result: %w", err)
	}
	if doc == nil {
		return &ValidationError{Issues: []string{"empty document"}}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("cook.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile cook schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Cook"))

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return issues(err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return issues(err)
	}
	return nil
}

func issues(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Issues: []string{err.Error()}}
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return &ValidationError{Issues: out}
}
