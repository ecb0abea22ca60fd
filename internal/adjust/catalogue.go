package adjust

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gompdf/pagefit/internal/constraints"
)

// ErrUnknownCommand reports a command identifier missing from the catalogue.
var ErrUnknownCommand = errors.New("unknown command")

// Category groups commands in the command bar.
type Category string

const (
	CategoryLayout   Category = "layout"
	CategoryOverflow Category = "overflow"
	CategoryDebug    Category = "debug"
)

// Stable command identifiers.
const (
	CmdTightenSpacing      = "tighten-spacing"
	CmdLoosenSpacing       = "loosen-spacing"
	CmdReduceBodyFont      = "reduce-body-font"
	CmdIncreaseBodyFont    = "increase-body-font"
	CmdResetLayout         = "reset-layout"
	CmdToggleBaselineGrid  = "show-baseline-grid"
	CmdToggleFreeze        = "toggle-freeze"
	CmdShowOverflowDetails = "show-overflow-details"
	CmdAutoFit             = "auto-fit"
	CmdSuggestReductions   = "suggest-reductions"
)

// Command is one invocable catalogue entry. Op is nil for informational
// commands, which the host answers itself.
type Command struct {
	ID          string
	Label       string
	Description string
	Keywords    []string
	Category    Category
	Op          Op
}

// Informational reports whether the command only reports state.
func (c Command) Informational() bool { return c.Op == nil }

// Catalogue is the fixed set of commands for one document.
type Catalogue struct {
	commands []Command
	byID     map[string]int
}

// NewCatalogue builds the catalogue. defaults is what reset-layout restores.
func NewCatalogue(defaults constraints.Constraints) *Catalogue {
	commands := []Command{
		{
			ID:          CmdTightenSpacing,
			Label:       "Tighten spacing",
			Description: "Reduce spacing between sections and blocks",
			Keywords:    []string{"tighten", "spacing", "reduce", "compact"},
			Category:    CategoryLayout,
			Op:          TightenSpacing,
		},
		{
			ID:          CmdLoosenSpacing,
			Label:       "Loosen spacing",
			Description: "Increase spacing between sections and blocks",
			Keywords:    []string{"loosen", "spacing", "increase", "expand"},
			Category:    CategoryLayout,
			Op:          LoosenSpacing,
		},
		{
			ID:          CmdReduceBodyFont,
			Label:       "Reduce body font",
			Description: "Decrease body text font size",
			Keywords:    []string{"reduce", "body", "font", "smaller", "text"},
			Category:    CategoryLayout,
			Op:          ReduceFont,
		},
		{
			ID:          CmdIncreaseBodyFont,
			Label:       "Increase body font",
			Description: "Increase body text font size",
			Keywords:    []string{"increase", "body", "font", "larger", "text"},
			Category:    CategoryLayout,
			Op:          IncreaseFont,
		},
		{
			ID:          CmdResetLayout,
			Label:       "Reset layout",
			Description: "Reset all layout adjustments to defaults",
			Keywords:    []string{"reset", "layout", "default", "original"},
			Category:    CategoryLayout,
			Op:          Reset(defaults),
		},
		{
			ID:          CmdToggleBaselineGrid,
			Label:       "Toggle baseline grid",
			Description: "Show/hide the baseline grid overlay",
			Keywords:    []string{"baseline", "grid", "toggle", "show", "hide"},
			Category:    CategoryDebug,
			Op:          ToggleBaselineGrid,
		},
		{
			ID:          CmdToggleFreeze,
			Label:       "Toggle layout freeze",
			Description: "Lock every size to its base value, or unlock scaling again",
			Keywords:    []string{"freeze", "lock", "unlock", "frozen", "toggle"},
			Category:    CategoryLayout,
			Op:          ToggleFreeze,
		},
		{
			ID:          CmdShowOverflowDetails,
			Label:       "Show overflow details",
			Description: "Display detailed overflow information",
			Keywords:    []string{"overflow", "details", "show", "info"},
			Category:    CategoryOverflow,
		},
		{
			ID:          CmdAutoFit,
			Label:       "Auto-fit to one page",
			Description: "Automatically adjust layout to fit on one page",
			Keywords:    []string{"auto", "fit", "page", "adjust"},
			Category:    CategoryOverflow,
			Op:          AutoFit,
		},
		{
			ID:          CmdSuggestReductions,
			Label:       "Suggest reductions",
			Description: "Get suggestions for reducing content to fit",
			Keywords:    []string{"suggest", "reductions", "help", "advice"},
			Category:    CategoryOverflow,
		},
	}

	byID := make(map[string]int, len(commands))
	for i, cmd := range commands {
		byID[cmd.ID] = i
	}
	return &Catalogue{commands: commands, byID: byID}
}

// Commands returns the catalogue in display order.
func (c *Catalogue) Commands() []Command {
	out := make([]Command, len(c.commands))
	copy(out, c.commands)
	return out
}

// Lookup returns the command with the given identifier.
func (c *Catalogue) Lookup(id string) (Command, error) {
	i, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, id)
	}
	return c.commands[i], nil
}

// IDs returns every command identifier, sorted.
func (c *Catalogue) IDs() []string {
	ids := make([]string, 0, len(c.commands))
	for _, cmd := range c.commands {
		ids = append(ids, cmd.ID)
	}
	sort.Strings(ids)
	return ids
}

// Filter keeps commands whose label, description or any keyword contains
// term, case-insensitively. A blank term keeps everything.
func Filter(commands []Command, term string) []Command {
	if strings.TrimSpace(term) == "" {
		return commands
	}
	term = strings.ToLower(term)
	var out []Command
	for _, cmd := range commands {
		if matches(cmd, term) {
			out = append(out, cmd)
		}
	}
	return out
}

func matches(cmd Command, term string) bool {
	if strings.Contains(strings.ToLower(cmd.Label), term) ||
		strings.Contains(strings.ToLower(cmd.Description), term) {
		return true
	}
	for _, kw := range cmd.Keywords {
		if strings.Contains(strings.ToLower(kw), term) {
			return true
		}
	}
	return false
}
