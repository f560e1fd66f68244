package paths

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/root/a.js", "/root/a.js"},
		{"/root//a/../b.js", "/root/b.js"},
		{"/root/./x", "/root/x"},
		{"relative/x.js", "relative/x.js"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSpecifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo/", "foo"},
		{"foo/lib//", "foo/lib"},
		{"foo", "foo"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSpecifier(tt.in); got != tt.want {
				t.Errorf("NormalizeSpecifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpecifierKinds(t *testing.T) {
	tests := []struct {
		name     string
		relative bool
		absolute bool
	}{
		{"./x", true, false},
		{"../x", true, false},
		{".", true, false},
		{"..", true, false},
		{"/abs/x", false, true},
		{"lodash", false, false},
		{"@scope/pkg", false, false},
		{".hidden", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRelativeSpecifier(tt.name); got != tt.relative {
				t.Errorf("IsRelativeSpecifier(%q) = %v, want %v", tt.name, got, tt.relative)
			}
			if got := IsAbsoluteSpecifier(tt.name); got != tt.absolute {
				t.Errorf("IsAbsoluteSpecifier(%q) = %v, want %v", tt.name, got, tt.absolute)
			}
			wantBare := !tt.relative && !tt.absolute
			if got := IsBareSpecifier(tt.name); got != wantBare {
				t.Errorf("IsBareSpecifier(%q) = %v, want %v", tt.name, got, wantBare)
			}
		})
	}
}

func TestInsideNodeModules(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/root/node_modules/lib/index.js", true},
		{"node_modules/lib/index.js", true},
		{"/root/src/index.js", false},
		{"/root/my_node_modules_fork/x.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := InsideNodeModules(tt.path); got != tt.want {
				t.Errorf("InsideNodeModules(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestEnclosingPackageDir(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/a/node_modules/pkg/lib/x.js", "/a/node_modules/pkg", true},
		{"/a/node_modules/@scope/pkg/x.js", "/a/node_modules/@scope/pkg", true},
		{"/a/node_modules/outer/node_modules/inner/x.js", "/a/node_modules/outer/node_modules/inner", true},
		{"/a/src/x.js", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := EnclosingPackageDir(tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("EnclosingPackageDir(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAncestors(t *testing.T) {
	got := Ancestors("/root/app/src/a.js")
	want := []string{"/root/app/src", "/root/app", "/root"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ancestors() = %v, want %v", got, want)
	}
}
