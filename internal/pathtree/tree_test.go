package pathtree_test

import (
	"testing"

	"github.com/advdv/xeno/internal/pathtree"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInsert(t *testing.T, tree *pathtree.Tree[string], pattern string) {
	t.Helper()

	pat, err := pathtree.ParsePattern(pattern)
	require.NoError(t, err)
	require.NoError(t, tree.Insert(pat, pattern))
}

func TestLookup(t *testing.T) {
	tree := pathtree.New[string]()
	for _, p := range []string{
		"/",
		"/users",
		"/users/",
		"/users/me",
		"/users/:id",
		"/users/:id/posts/:pid",
		"/users/me/settings",
		"/files/*path",
		"/a/b/c",
		"/a/:x/d",
	} {
		mustInsert(t, tree, p)
	}

	require.Equal(t, 10, tree.Len())

	for _, tt := range []struct {
		path   string
		exp    string
		params map[string]string
	}{
		{path: "/", exp: "/"},
		{path: "/users", exp: "/users"},
		{path: "/users/", exp: "/users/"},
		{path: "/users/me", exp: "/users/me"},
		{path: "/users/123", exp: "/users/:id", params: map[string]string{"id": "123"}},
		{path: "/users/me/posts/7", exp: "/users/:id/posts/:pid", params: map[string]string{"id": "me", "pid": "7"}},
		{path: "/users/me/settings", exp: "/users/me/settings"},
		{path: "/files/css/site.css", exp: "/files/*path", params: map[string]string{"path": "css/site.css"}},
		{path: "/files/", exp: "/files/*path", params: map[string]string{"path": ""}},
		{path: "/files", exp: "/files/*path", params: map[string]string{"path": ""}},
		{path: "/a/b/d", exp: "/a/:x/d", params: map[string]string{"x": "b"}},
		{path: "/a/b/c", exp: "/a/b/c"},
	} {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := tree.Lookup(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.exp, m.Value)
			assert.Equal(t, tt.exp, m.Pattern.String())
			assert.Equal(t, tt.params, m.Params)
		})
	}

	for _, path := range []string{"/nope", "/users/123/extra", "/a/b", "/users//posts/1"} {
		t.Run("miss "+path, func(t *testing.T) {
			_, ok := tree.Lookup(path)
			assert.False(t, ok)
		})
	}
}

func TestLookupLiteralBeatsEmptyCatchAll(t *testing.T) {
	tree := pathtree.New[string]()
	mustInsert(t, tree, "/docs")
	mustInsert(t, tree, "/docs/*rest")

	m, ok := tree.Lookup("/docs")
	require.True(t, ok)
	assert.Equal(t, "/docs", m.Value)
	assert.Nil(t, m.Params)

	m, ok = tree.Lookup("/docs/a/b")
	require.True(t, ok)
	assert.Equal(t, "/docs/*rest", m.Value)
	assert.Equal(t, map[string]string{"rest": "a/b"}, m.Params)
}

func TestInsertConflicts(t *testing.T) {
	tree := pathtree.New[string]()
	mustInsert(t, tree, "/users/:id")
	mustInsert(t, tree, "/files/*path")

	for _, tt := range []struct {
		pattern string
		expErr  error
	}{
		{"/users/:id", pathtree.ErrDuplicate},
		{"/users/:name/x", pathtree.ErrParamConflict},
		{"/files/*path", pathtree.ErrDuplicate},
		{"/files/*other", pathtree.ErrParamConflict},
	} {
		pat, err := pathtree.ParsePattern(tt.pattern)
		require.NoError(t, err)
		require.ErrorIs(t, tree.Insert(pat, tt.pattern), tt.expErr)
	}

	assert.Equal(t, 2, tree.Len())
}

func TestPatterns(t *testing.T) {
	tree := pathtree.New[string]()
	mustInsert(t, tree, "/b")
	mustInsert(t, tree, "/a/:id")
	mustInsert(t, tree, "/a/*rest")

	assert.Equal(t, []string{"/a/*rest", "/a/:id", "/b"}, lo.Map(tree.Patterns(),
		func(p *pathtree.Pattern, _ int) string { return p.String() }))
}
