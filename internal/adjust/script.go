package adjust

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/gompdf/pagefit/internal/constraints"
)

// ErrScript reports an adjustment script that cannot be parsed or applied.
var ErrScript = errors.New("invalid adjustment script")

// maxRepeat bounds "cmd*N"; every scale saturates well before it.
const maxRepeat = 50

var (
	scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9-]*`},
		{Name: "Punct", Pattern: `[*,;]`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Script is a sequence of catalogue commands, for example
// "tighten-spacing*2, reduce-body-font; auto-fit".
type Script struct {
	Steps []*Step `parser:"( @@ ( ( ',' | ';' )? @@ )* )?"`
}

// Step names one command and how many times to apply it.
type Step struct {
	Pos     lexer.Position `parser:""`
	Command string         `parser:"@Ident"`
	Count   string         `parser:"( '*' @Int )?"`
}

// Times returns how many times the step runs.
func (s *Step) Times() (int, error) {
	if s.Count == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s.Count)
	if err != nil || n < 1 || n > maxRepeat {
		return 0, fmt.Errorf("%w: %s: repeat count %q must be between 1 and %d", ErrScript, s.Pos, s.Count, maxRepeat)
	}
	return n, nil
}

// ParseScript parses an adjustment script.
func ParseScript(src string) (*Script, error) {
	if strings.TrimSpace(src) == "" {
		return &Script{}, nil
	}
	script, err := scriptParser.ParseString("script", src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	return script, nil
}

// Apply runs every step against c. The whole script is validated before
// anything is applied, so a bad step leaves c untouched.
func (s *Script) Apply(cat *Catalogue, c constraints.Constraints) (constraints.Constraints, error) {
	type resolved struct {
		op    Op
		times int
	}
	plan := make([]resolved, 0, len(s.Steps))
	for _, step := range s.Steps {
		cmd, err := cat.Lookup(step.Command)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %w", ErrScript, step.Pos, err)
		}
		if cmd.Informational() {
			return c, fmt.Errorf("%w: %s: %q does not adjust the layout", ErrScript, step.Pos, cmd.ID)
		}
		times, err := step.Times()
		if err != nil {
			return c, err
		}
		plan = append(plan, resolved{op: cmd.Op, times: times})
	}

	for _, r := range plan {
		for i := 0; i < r.times; i++ {
			c = r.op(c)
		}
	}
	return c, nil
}

func (s *Script) String() string {
	parts := make([]string, 0, len(s.Steps))
	for _, step := range s.Steps {
		if step.Count != "" {
			parts = append(parts, step.Command+"*"+step.Count)
			continue
		}
		parts = append(parts, step.Command)
	}
	return strings.Join(parts, ", ")
}
