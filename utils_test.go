package loja_test

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/amww/loja"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "decimal point", input: "99.99", want: 99.99},
		{name: "decimal comma", input: "99,99", want: 99.99},
		{name: "integer", input: "3500", want: 3500},
		{name: "surrounding spaces", input: "  12.5 ", want: 12.5},
		{name: "zero", input: "0", want: 0},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "letters", input: "dez reais", wantErr: true},
		{name: "thousands and decimal separators", input: "1.000,50", wantErr: true},
		{name: "two commas", input: "1,000,50", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "nan", input: "NaN", wantErr: true},
		{name: "infinity", input: "+Inf", wantErr: true},
		{name: "hex float", input: "0x1p3", wantErr: true},
		{name: "digit separator", input: "1_000", wantErr: true},
		{name: "negative zero", input: "-0", wantErr: true},
		{name: "explicit plus", input: "+5", wantErr: true},
		{name: "exponent", input: "1e3", wantErr: true},
		{name: "missing integer part", input: ",5", wantErr: true},
		{name: "trailing separator", input: "5.", wantErr: true},
		{name: "overflow", input: strings.Repeat("9", 400), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loja.ParsePrice(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, loja.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.Signbit(got))
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"0":   1,
		"-3":  1,
		"abc": 1,
		"1.5": 1,
		"1":   1,
		"7":   7,
		" 2 ": 2,
	}

	for input, want := range tests {
		assert.Equal(t, want, loja.ParsePage(input), "input %q", input)
	}
}

func TestPaginate(t *testing.T) {
	items := makeProducts(45)

	tests := []struct {
		name       string
		number     int
		size       int
		wantItems  []loja.Product
		wantNumber int
		wantPages  int
	}{
		{name: "first page", number: 1, size: 20, wantItems: items[:20], wantNumber: 1, wantPages: 3},
		{name: "middle page", number: 2, size: 20, wantItems: items[20:40], wantNumber: 2, wantPages: 3},
		{name: "last partial page", number: 3, size: 20, wantItems: items[40:], wantNumber: 3, wantPages: 3},
		{name: "past the end", number: 9, size: 20, wantItems: []loja.Product{}, wantNumber: 9, wantPages: 3},
		{name: "zero page", number: 0, size: 20, wantItems: items[:20], wantNumber: 1, wantPages: 3},
		{name: "negative page", number: -1, size: 20, wantItems: items[:20], wantNumber: 1, wantPages: 3},
		{name: "invalid size uses default", number: 1, size: 0, wantItems: items[:20], wantNumber: 1, wantPages: 3},
		{name: "exact fit", number: 1, size: 45, wantItems: items, wantNumber: 1, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := loja.Paginate(items, tt.number, tt.size)
			assert.Equal(t, tt.wantItems, page.Items)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, 45, page.Total)
		})
	}

	t.Run("empty input has one page", func(t *testing.T) {
		page := loja.Paginate(nil, 1, 20)
		assert.Equal(t, 1, page.TotalPages)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasNext())
		assert.False(t, page.HasPrev())
	})
}

func TestImagePath(t *testing.T) {
	id := uuid.New()

	p := loja.ImagePath(id)
	assert.Equal(t, "products/"+id.String(), p)
	assert.True(t, loja.IsValidPath(p))

	got, ok := loja.ProductIDFromImagePath(p)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	for _, bad := range []string{"products/", "products/abc", "other/" + id.String(), id.String()} {
		_, ok := loja.ProductIDFromImagePath(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsValidPath(t *testing.T) {
	// Create a path with invalid UTF-8 (without embedding raw invalid bytes in source)
	invalidUTF8 := string([]byte{'/', 'a', 0xff, 'b'})

	tt := []struct {
		Name string
		Path string
		Want bool
	}{
		// Basics
		{Name: "root path", Path: "/", Want: false},
		{Name: "empty path", Path: "", Want: false},
		{Name: "no leading slash", Path: "/some/path", Want: false},
		{Name: "ends with slash", Path: "some/path/", Want: false},

		// Double dots anywhere are invalid
		{Name: "double dots segment", Path: "../", Want: false},
		{Name: "double dots in middle segment", Path: "a/../b", Want: false},
		{Name: "double dots at end", Path: "/a/..", Want: false},
		{Name: "double dots in filename", Path: "/a/b..c", Want: false},
		{Name: "double dots prefix", Path: "/a/..b", Want: false},

		// Signle dots segment are invalid
		{Name: "single dot segment not allowed", Path: "a/./b", Want: false},
		{Name: "single dot only", Path: ".", Want: false},

		// Double slashes invalid
		{Name: "double slash", Path: "a//b", Want: false},
		{Name: "leading double slash", Path: "//a", Want: false},

		// Forbidden characters
		{Name: "contains space", Path: "some path/file.ext", Want: false},
		{Name: "contains tab", Path: "some\tpath/file.ext", Want: false},
		{Name: "contains newline", Path: "some\npath/file.ext", Want: false},
		{Name: "contains carriage return", Path: "some\rpath/file.ext", Want: false},
		{Name: "contains backslash", Path: `some\path/file.ext`, Want: false},
		{Name: "contains hash", Path: "some/path#frag", Want: false},
		{Name: "contains question mark", Path: "some/path?x=1", Want: false},
		{Name: "contains tilde", Path: "some/~path/file.ext", Want: false},

		// Control chars / NUL
		{Name: "contains NUL", Path: "some\x00path/file.ext", Want: false},
		{Name: "contains DEL", Path: "some\x7fpath/file.ext", Want: false},
		{Name: "contains control char", Path: "some\x1fpath/file.ext", Want: false},

		// UTF-8 validity
		{Name: "invalid utf8", Path: invalidUTF8, Want: false},

		// Valid examples
		{Name: "simple valid", Path: "some/path/file.ext", Want: true},
		{Name: "hidden file valid", Path: ".hidden/file", Want: true},
		{Name: "underscores and dashes valid", Path: "some_path/with-dash/file_name.ext", Want: true},
		{Name: "percent is allowed as literal", Path: "a/%2e/b", Want: true},
		{Name: "unicode valid", Path: "привет/世界/file.ext", Want: true},
	}

	// sanity check for our generated invalid UTF-8 case
	if utf8.ValidString(invalidUTF8) {
		t.Fatalf("test setup error: invalidUTF8 is unexpectedly valid")
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got := loja.IsValidPath(tc.Path)
			if got != tc.Want {
				expected := "valid"
				if !tc.Want {
					expected = "invalid"
				}
				t.Errorf("expected path %q to be %s, got %v", tc.Path, expected, got)
			}
		})
	}
}
