package keys

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/player/pkg/types"
)

func id(b byte) types.ID {
	var v types.ID
	v[0] = b
	return v
}

func TestDeriverIsDeterministic(t *testing.T) {
	a := New(types.Program{ID: id(1)})
	b := New(types.Program{ID: id(1)})

	assert.Equal(t, a.ClassKey(id(2), id(3)), b.ClassKey(id(2), id(3)))
	assert.Equal(t, a.IndexKey(id(2)), b.IndexKey(id(2)))

	parsed, err := uuid.Parse(string(a.ClassKey(id(2), id(3))))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestDeriverSeparatesInputs(t *testing.T) {
	d := New(types.Program{ID: id(1)})
	other := New(types.Program{ID: id(9)})

	keys := map[types.Key]string{}
	add := func(name string, k types.Key) {
		if prev, ok := keys[k]; ok {
			t.Fatalf("%s collides with %s", name, prev)
		}
		keys[k] = name
	}
	add("class", d.ClassKey(id(2), id(3)))
	add("class other namespace", d.ClassKey(id(2), id(4)))
	add("class other mint", d.ClassKey(id(5), id(3)))
	add("index", d.IndexKey(id(2)))
	add("whitelist", d.WhitelistKey(id(2), id(3)))
	add("other program", other.ClassKey(id(2), id(3)))
}

func TestClassAndPlayerShareKey(t *testing.T) {
	d := New(types.Program{})
	assert.Equal(t, d.ClassKey(id(2), id(3)), d.PlayerKey(id(2), id(3)))
}
