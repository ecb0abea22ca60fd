package adjust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueIdentifiers(t *testing.T) {
	cat := NewCatalogue(defaults())
	assert.Equal(t, []string{
		"auto-fit",
		"increase-body-font",
		"loosen-spacing",
		"reduce-body-font",
		"reset-layout",
		"show-baseline-grid",
		"show-overflow-details",
		"suggest-reductions",
		"tighten-spacing",
		"toggle-freeze",
	}, cat.IDs())
}

func TestCatalogueLookup(t *testing.T) {
	cat := NewCatalogue(defaults())

	cmd, err := cat.Lookup(" Auto-Fit ")
	require.NoError(t, err)
	assert.Equal(t, CmdAutoFit, cmd.ID)
	assert.False(t, cmd.Informational())

	cmd, err = cat.Lookup(CmdSuggestReductions)
	require.NoError(t, err)
	assert.True(t, cmd.Informational())

	_, err = cat.Lookup("increase-sidebar-width")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommandsReturnsCopy(t *testing.T) {
	cat := NewCatalogue(defaults())
	cmds := cat.Commands()
	cmds[0].ID = "changed"
	assert.Equal(t, CmdTightenSpacing, cat.Commands()[0].ID)
}

func TestFilter(t *testing.T) {
	cmds := NewCatalogue(defaults()).Commands()

	assert.Len(t, Filter(cmds, "   "), len(cmds))

	ids := func(cs []Command) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{CmdReduceBodyFont, CmdIncreaseBodyFont}, ids(Filter(cmds, "FONT")))
	// keyword-only match
	assert.Equal(t, []string{CmdTightenSpacing}, ids(Filter(cmds, "compact")))
	// description match
	assert.Equal(t, []string{CmdShowOverflowDetails}, ids(Filter(cmds, "detailed")))
	assert.Empty(t, Filter(cmds, "sidebar"))
}
