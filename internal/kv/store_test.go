package kv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/shop"
)

func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	t.Helper()
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend { return NewMemory() },
		"files": func(t *testing.T) Backend {
			b, err := OpenDir(filepath.Join(t.TempDir(), "store"))
			require.NoError(t, err)
			return b
		},
		"sqlite": func(t *testing.T) Backend {
			b, err := OpenSQLite(filepath.Join(t.TempDir(), "shopfront.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
	}
}

func TestCartRoundTrip(t *testing.T) {
	carts := map[string]shop.Cart{
		"empty": {},
		"one":   {{ID: "1", Title: "Lamp", Price: 10, Image: "lamp.png"}},
		"many": {
			{ID: "3", Title: "Chair", Price: 40},
			{ID: "1", Title: "Lamp", Price: 10.5},
			{ID: "2", Title: "Rug", Price: 0},
		},
	}
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(open(t))
			for label, c := range carts {
				require.NoError(t, s.Save(shop.KeyCart, c), label)
				got := Get(s, shop.KeyCart, shop.Cart(nil))
				assert.Equal(t, c, got, label)
			}
		})
	}
}

func TestLoad_MissingKeyKeepsDefault(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(open(t))
			def := shop.Cart{{ID: "sentinel"}}
			assert.Equal(t, def, Get(s, shop.KeyCart, def))

			var profile *shop.UserProfile
			assert.False(t, s.Load(shop.KeyUserProfile, &profile))
			assert.Nil(t, profile)
		})
	}
}

func TestLoad_CorruptValueKeepsDefaultAndReports(t *testing.T) {
	mem := NewMemory()
	mem.SetRaw(shop.KeyCart, []byte(`[{"id":1,`))

	var reported []*StorageError
	s := NewStore(mem, WithErrorHook(func(e *StorageError) { reported = append(reported, e) }))

	got := Get(s, shop.KeyCart, shop.Cart{})
	assert.Empty(t, got)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrCorrupt)
	assert.Equal(t, shop.KeyCart, reported[0].Key)
}

func TestLoad_NullIsAbsent(t *testing.T) {
	mem := NewMemory()
	mem.SetRaw(shop.KeyUserProfile, []byte(`null`))
	s := NewStore(mem)

	p := shop.UserProfile{Name: "default"}
	assert.False(t, s.Load(shop.KeyUserProfile, &p))
	assert.Equal(t, "default", p.Name)
}

func TestLoad_PartialDecodeDoesNotLeak(t *testing.T) {
	mem := NewMemory()
	mem.SetRaw(shop.KeyUserProfile, []byte(`{"name":"x","email":42}`))
	s := NewStore(mem)

	p := shop.UserProfile{Name: "keep"}
	assert.False(t, s.Load(shop.KeyUserProfile, &p))
	assert.Equal(t, shop.UserProfile{Name: "keep"}, p)
}

func TestSave_QuotaLeavesPriorValue(t *testing.T) {
	s := NewStore(NewMemory(), WithMaxValueBytes(64))
	require.NoError(t, s.Save(shop.KeyTheme, "dark"))

	err := s.Save(shop.KeyTheme, strings.Repeat("x", 100))

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "write", se.Op)
	assert.ErrorIs(t, err, ErrQuota)
	assert.Equal(t, "dark", Get(s, shop.KeyTheme, ""))
}

func TestSave_EncodeFailureLeavesPriorValue(t *testing.T) {
	s := NewStore(NewMemory())
	require.NoError(t, s.Save("k", 1))

	err := s.Save("k", make(chan int))

	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, 1, Get(s, "k", 0))
}

func TestSave_RecordsOwnRevision(t *testing.T) {
	mem := NewMemory()
	local := NewStore(mem)
	remote := NewStore(mem)

	require.NoError(t, local.Save(shop.KeyCart, shop.Cart{}))
	rev, err := local.Revision(shop.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, rev, local.OwnRevision(shop.KeyCart))

	require.NoError(t, remote.Save(shop.KeyCart, shop.Cart{{ID: "1"}}))
	rev, err = local.Revision(shop.KeyCart)
	require.NoError(t, err)
	assert.NotEqual(t, rev, local.OwnRevision(shop.KeyCart))
	assert.Len(t, Get(local, shop.KeyCart, shop.Cart{}), 1, "reads always go to the backend")
}

func TestRevisionsAdvancePerWrite(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := open(t)
			r0, err := b.Revision("k")
			require.NoError(t, err)
			assert.Zero(t, r0)

			r1, err := b.Put("k", []byte(`1`))
			require.NoError(t, err)
			r2, err := b.Put("k", []byte(`2`))
			require.NoError(t, err)
			assert.Greater(t, r2, r1)

			rec, err := b.Get("k")
			require.NoError(t, err)
			assert.Equal(t, r2, rec.Revision)
			assert.Equal(t, []byte(`2`), rec.Value)
		})
	}
}

func TestDir_SharedAcrossHandles(t *testing.T) {
	dir := t.TempDir()
	a, err := OpenDir(dir)
	require.NoError(t, err)
	b, err := OpenDir(dir)
	require.NoError(t, err)

	require.NoError(t, NewStore(a).Save(shop.KeyTheme, "dark"))
	assert.Equal(t, "dark", Get(NewStore(b), shop.KeyTheme, "light"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not linger")
	assert.Equal(t, "theme.json", entries[0].Name())
}

func TestDir_RejectsPathKeys(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	_, err = d.Put("../escape", []byte(`1`))
	assert.Error(t, err)
}

func TestOpen_Kinds(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{KindMemory, KindFiles, KindSQLite} {
		b, err := Open(kind, dir)
		require.NoError(t, err, kind)
		require.NoError(t, b.Close())
	}
	_, err := Open("redis", dir)
	assert.Error(t, err)
}
