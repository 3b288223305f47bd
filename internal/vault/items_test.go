package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultAddFindListOrder(t *testing.T) {
	v := New()
	require.NoError(t, v.Add(NewRecord("github", "alice", "s3cr3t")))
	require.NoError(t, v.Add(NewRecord("mail", "", "pw")))
	require.NoError(t, v.Add(NewRecord("bank", "bob", "1234")))

	list := v.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"github", "mail", "bank"},
		[]string{list[0].Service, list[1].Service, list[2].Service})

	r, ok := v.Find("mail")
	require.True(t, ok)
	assert.Nil(t, r.Username)
	assert.Equal(t, "(none)", r.UsernameOr("(none)"))
	assert.Equal(t, "pw", r.Secret)

	_, ok = v.Find("missing")
	assert.False(t, ok)
}

func TestVaultAddRejectsEmptyService(t *testing.T) {
	v := New()
	assert.ErrorIs(t, v.Add(Record{Secret: "x"}), ErrEmptyService)
	assert.Equal(t, 0, v.Len())
}

func TestVaultDuplicatesFirstMatch(t *testing.T) {
	v := New()
	require.NoError(t, v.Add(NewRecord("github", "alice", "first")))
	require.NoError(t, v.Add(NewRecord("github", "bob", "second")))

	r, ok := v.Find("github")
	require.True(t, ok)
	assert.Equal(t, "first", r.Secret)

	require.True(t, v.Remove("github"))
	r, ok = v.Find("github")
	require.True(t, ok)
	assert.Equal(t, "second", r.Secret)
	assert.Equal(t, 1, v.Len())
}

func TestVaultRemove(t *testing.T) {
	v := New(NewRecord("a", "", "1"), NewRecord("b", "", "2"), NewRecord("c", "", "3"))

	t.Run("Missing", func(t *testing.T) {
		before := v.List()
		assert.False(t, v.Remove("zzz"))
		assert.Equal(t, before, v.List())
	})

	t.Run("Present", func(t *testing.T) {
		assert.True(t, v.Remove("b"))
		assert.Equal(t, 2, v.Len())
		_, ok := v.Find("b")
		assert.False(t, ok)
		assert.False(t, v.Remove("b"))
		assert.Equal(t, 2, v.Len())
	})
}

func TestVaultCopiesAreIndependent(t *testing.T) {
	u := "alice"
	v := New()
	require.NoError(t, v.Add(Record{Service: "github", Username: &u, Secret: "x"}))
	u = "mallory"

	r, _ := v.Find("github")
	assert.Equal(t, "alice", *r.Username)

	*r.Username = "eve"
	list := v.List()
	list[0].Secret = "changed"
	r2, _ := v.Find("github")
	assert.Equal(t, "alice", *r2.Username)
	assert.Equal(t, "x", r2.Secret)
}

func TestZeroVaultUsable(t *testing.T) {
	var v Vault
	assert.Equal(t, 0, v.Len())
	assert.Empty(t, v.List())
	assert.False(t, v.Remove("x"))
	require.NoError(t, v.Add(NewRecord("x", "", "y")))
	assert.Equal(t, 1, v.Len())
}

func TestVaultAddRejectsInvalidUTF8(t *testing.T) {
	v := New()
	err := v.Add(NewRecord("svc", "alice", "ab\xffcd"))
	assert.ErrorIs(t, err, ErrInvalidText)
	err = v.Add(NewRecord("svc", "\xff", "pw"))
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.Equal(t, 0, v.Len())

	require.NoError(t, v.Add(NewRecord("sérvice ✓", "ünï", "pässwörd")))
}
