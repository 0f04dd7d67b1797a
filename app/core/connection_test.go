package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statementBlock builds a plain statement block with previous and next
// connections and one value input named "VALUE".
func statementBlock(t *testing.T, checks ...string) *Block {
	t.Helper()
	def := BlockDefinition{
		Type:        "test_statement",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []InputDefinition{
			{Name: "VALUE", Kind: InputValue, Checks: checks},
		},
	}
	b, err := def.Build()
	require.NoError(t, err)
	return b
}

// valueBlock builds a block with only an output connection.
func valueBlock(t *testing.T, checks ...string) *Block {
	t.Helper()
	def := BlockDefinition{
		Type:         "test_value",
		HasOutput:    true,
		OutputChecks: checks,
	}
	b, err := def.Build()
	require.NoError(t, err)
	return b
}

func TestConnectDisconnect(t *testing.T) {
	a := statementBlock(t)
	b := statementBlock(t)

	require.NoError(t, a.Next.Connect(b.Previous))
	assert.Same(t, b.Previous, a.Next.Target())
	assert.Same(t, a.Next, b.Previous.Target())
	assert.Same(t, b, a.NextBlock())

	// Connecting an already-connected pair is a no-op, from either side.
	assert.NoError(t, a.Next.Connect(b.Previous))
	assert.NoError(t, b.Previous.Connect(a.Next))

	a.Next.Disconnect()
	assert.Nil(t, a.Next.Target())
	assert.Nil(t, b.Previous.Target())

	// Disconnecting again is a no-op.
	a.Next.Disconnect()
	b.Previous.Disconnect()
}

func TestConnectReasonPrecedence(t *testing.T) {
	a := statementBlock(t)
	b := statementBlock(t)
	c := statementBlock(t)

	t.Run("nil target", func(t *testing.T) {
		assert.Equal(t, ReasonTargetNull, a.Next.CanConnectWithReason(nil))
		assert.Equal(t, ReasonTargetNull, a.Next.CanConnectWithReason(&Connection{Type: ConnPrevious}))
	})

	t.Run("self connection beats wrong type", func(t *testing.T) {
		// next-to-next on the same block is both a self connection and a
		// type mismatch; self wins.
		assert.Equal(t, ReasonSelfConnection, a.Next.CanConnectWithReason(a.Previous))
		assert.Equal(t, ReasonSelfConnection, a.Next.CanConnectWithReason(a.Next))
	})

	t.Run("wrong type beats must disconnect", func(t *testing.T) {
		require.NoError(t, a.Next.Connect(b.Previous))
		defer a.Next.Disconnect()
		assert.Equal(t, ReasonWrongType, a.Next.CanConnectWithReason(c.Next))
	})

	t.Run("must disconnect beats checks", func(t *testing.T) {
		parent := statementBlock(t, "String")
		child := valueBlock(t, "String")
		other := valueBlock(t, "Number")
		require.NoError(t, parent.InputByName("VALUE").Conn.Connect(child.Output))
		// other fails the checks too, but occupancy is reported first.
		assert.Equal(t, ReasonMustDisconnect,
			parent.InputByName("VALUE").Conn.CanConnectWithReason(other.Output))
	})
}

func TestConnectionChecks(t *testing.T) {
	tests := []struct {
		name   string
		socket []string
		plug   []string
		want   ConnectReason
	}{
		{"both nil accept", nil, nil, CanConnect},
		{"socket nil accepts tagged", nil, []string{"Number"}, CanConnect},
		{"plug nil accepted by tagged", []string{"Number"}, nil, CanConnect},
		{"shared tag", []string{"Number", "String"}, []string{"String"}, CanConnect},
		{"no shared tag", []string{"Number"}, []string{"String"}, ReasonChecksFailed},
		{"case sensitive", []string{"Number"}, []string{"number"}, ReasonChecksFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := statementBlock(t, tt.socket...)
			child := valueBlock(t, tt.plug...)
			got := parent.InputByName("VALUE").Conn.CanConnectWithReason(child.Output)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnectError(t *testing.T) {
	a := statementBlock(t)
	err := a.Next.Connect(a.Previous)
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, ReasonSelfConnection, connErr.Reason)
	assert.Same(t, a.Next, connErr.Local)
}

func TestRootAndChainWalks(t *testing.T) {
	a := statementBlock(t)
	b := statementBlock(t)
	c := statementBlock(t)
	v := valueBlock(t)

	require.NoError(t, a.Next.Connect(b.Previous))
	require.NoError(t, b.Next.Connect(c.Previous))
	require.NoError(t, c.InputByName("VALUE").Conn.Connect(v.Output))

	assert.True(t, a.IsRoot())
	assert.False(t, b.IsRoot())
	assert.False(t, v.IsRoot())

	assert.Same(t, a, c.RootBlock())
	assert.Same(t, a, v.RootBlock())
	assert.Same(t, c, a.LastBlockInChain())
}
