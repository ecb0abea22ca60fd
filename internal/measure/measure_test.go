package measure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActualHeightPrefersLaidOutHeight(t *testing.T) {
	assert.Equal(t, 900.0, Metrics{Height: 900, ScrollHeight: 1200}.ActualHeight())
	assert.Equal(t, 1200.0, Metrics{ScrollHeight: 1200}.ActualHeight())
}

func TestPortFunc(t *testing.T) {
	var p Port = PortFunc(func(context.Context) (Metrics, bool) { return Metrics{}, false })
	_, ok := p.Measure(context.Background())
	assert.False(t, ok)

	p = Static{Height: 10}
	m, ok := p.Measure(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 10.0, m.Height)
}
