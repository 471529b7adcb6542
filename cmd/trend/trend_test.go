package trend_test

import (
	"testing"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/trend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendCommand_Metadata(t *testing.T) {
	assert.Equal(t, "trend", trend.Cmd.Use)
	assert.Equal(t, "Show spending over time", trend.Cmd.Short)
	assert.Contains(t, trend.Cmd.Long, "Monday to Sunday")
	assert.NotNil(t, trend.Cmd.RunE)
}

func TestTrendCommand_Flags(t *testing.T) {
	g := trend.Cmd.Flags().Lookup("granularity")
	require.NotNil(t, g)
	assert.Equal(t, "g", g.Shorthand)
	assert.Equal(t, "monthly", g.DefValue)
	assert.Equal(t, "last_6_months", trend.Cmd.Flags().Lookup("range").DefValue)
}
