package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Empty and root
		{"empty", "", ""},
		{"root", "/", ""},
		{"double_root", "//", ""},
		{"dot", ".", ""},

		// Simple paths
		{"simple", "foo", "foo"},
		{"leading_slash", "/foo", "foo"},
		{"trailing_slash", "foo/", "foo"},
		{"both_slashes", "/foo/", "foo"},

		// Nested paths
		{"two_parts", "foo/bar", "foo/bar"},
		{"two_parts_leading_slash", "/foo/bar", "foo/bar"},
		{"three_parts", "foo/bar/baz", "foo/bar/baz"},

		// Paths with dots
		{"dot_prefix", "./foo", "foo"},
		{"dot_middle", "foo/./bar", "foo/bar"},
		{"dotdot_middle", "foo/../bar", "bar"},

		// Multiple slashes
		{"double_slash", "foo//bar", "foo/bar"},
		{"many_slashes", "///foo///bar///", "foo/bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizePath(tt.input)
			assert.Equal(t, tt.want, got, "NormalizePath(%q)", tt.input)
		})
	}
}

func TestNormalizeVirtual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"double_root", "//", "/"},
		{"simple", "docs", "/docs"},
		{"already_rooted", "/docs", "/docs"},
		{"trailing_slash", "/docs/", "/docs"},
		{"duplicate_slashes", "/docs//shared", "/docs/shared"},
		{"dot_middle", "/docs/./shared", "/docs/shared"},
		{"deep", "a/b/c", "/a/b/c"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeVirtual(tt.input)
			assert.Equal(t, tt.want, got, "NormalizeVirtual(%q)", tt.input)
		})
	}
}

func TestIsDescendant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		parent string
		child  string
		want   bool
	}{
		{"root_and_child", "/", "/docs", true},
		{"root_and_root", "/", "/", false},
		{"direct_child", "/docs", "/docs/a.txt", true},
		{"deep_child", "/docs", "/docs/shared/b.txt", true},
		{"self", "/docs", "/docs", false},
		{"sibling", "/docs", "/music", false},
		{"prefix_but_not_descendant", "/docs", "/docs2/a.txt", false},
		{"ancestor", "/docs/shared", "/docs", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsDescendant(tt.parent, tt.child)
			assert.Equal(t, tt.want, got, "IsDescendant(%q, %q)", tt.parent, tt.child)
		})
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"root", "/", nil},
		{"simple", "foo", []string{"foo"}},
		{"leading_slash", "/foo", []string{"foo"}},
		{"two_parts", "foo/bar", []string{"foo", "bar"}},
		{"three_parts", "/foo/bar/baz/", []string{"foo", "bar", "baz"}},
		{"double_slash", "foo//bar", []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitPath(tt.input)
			assert.Equal(t, tt.want, got, "SplitPath(%q)", tt.input)
		})
	}
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"nil", nil, ""},
		{"single", []string{"foo"}, "foo"},
		{"two_parts", []string{"foo", "bar"}, "foo/bar"},
		{"slashes_between", []string{"foo/", "/bar"}, "foo/bar"},
		{"empty_middle", []string{"foo", "", "bar"}, "foo/bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := JoinPath(tt.parts...)
			assert.Equal(t, tt.want, got, "JoinPath(%v)", tt.parts)
		})
	}
}

func TestParentAndBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantParent string
		wantBase   string
	}{
		{"empty", "", "", ""},
		{"single", "foo", "", "foo"},
		{"two_parts", "foo/bar", "foo", "bar"},
		{"three_parts", "/foo/bar/baz/", "foo/bar", "baz"},
		{"with_ext", "foo/bar.txt", "foo", "bar.txt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantParent, ParentPath(tt.input), "ParentPath(%q)", tt.input)
			assert.Equal(t, tt.wantBase, BaseName(tt.input), "BaseName(%q)", tt.input)
		})
	}
}
