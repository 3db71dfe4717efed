package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		state InheritanceState
		want  string
	}{
		{name: "not inherited reads own", state: NotInherited, want: "own"},
		{name: "inherited reads template", state: Inherited, want: "template"},
		{name: "overridden reads own", state: Overridden, want: "own"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.state, "own", "template"))
		})
	}
}

func TestBeginOverride(t *testing.T) {
	tests := []struct {
		name        string
		state       InheritanceState
		overridable bool
		want        InheritanceState
		wantErr     error
	}{
		{name: "inherited overridable", state: Inherited, overridable: true, want: Overridden},
		{name: "inherited locked", state: Inherited, overridable: false, wantErr: ErrNotOverridable},
		{name: "overridden rewrite", state: Overridden, overridable: true, want: Overridden},
		{name: "overridden after lock", state: Overridden, overridable: false, wantErr: ErrNotOverridable},
		{name: "not inherited ignores lock", state: NotInherited, overridable: false, want: NotInherited},
		{name: "unknown state", state: InheritanceState(7), overridable: true, wantErr: ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := beginOverride(tt.state, tt.overridable)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.state, got, "state should not change on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBeginReset(t *testing.T) {
	assert.NoError(t, beginReset(Inherited))
	assert.NoError(t, beginReset(Overridden))

	err := beginReset(NotInherited)
	assert.ErrorIs(t, err, ErrNotInheritedTerminal)
	assert.ErrorIs(t, err, ErrConsistency)

	assert.ErrorIs(t, beginReset(InheritanceState(9)), ErrInvalidState)
}

func TestParseInheritanceState(t *testing.T) {
	for _, s := range []InheritanceState{NotInherited, Inherited, Overridden} {
		got, err := ParseInheritanceState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseInheritanceState("overriden")
	assert.ErrorIs(t, err, ErrValidation)
}
