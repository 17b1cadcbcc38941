package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorName(t *testing.T) {
	tests := []struct {
		field  string
		kind   AccessorKind
		want   string
		wantOK bool
	}{
		{"name", Reader, "getName", true},
		{"isExist", Reader, "getIsExist", true},
		{"name", Writer, "setName", true},
		{"isExist", Writer, "setIsExist", true},
		{"URL", Reader, "getURL", true},
		{"x", Writer, "setX", true},
		{"ünits", Reader, "getÜnits", true},
		{"\xffoo", Reader, "get\xffoo", true},
		{"\xc3", Writer, "set\xc3", true},
		{"", Reader, "", false},
		{"     ", Reader, "", false},
		{"", Writer, "", false},
		{"   ", Writer, "", false},
		{"\t\n", Writer, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.field, func(t *testing.T) {
			got, ok := AccessorName(tt.field, tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetterSetterName(t *testing.T) {
	got, ok := GetterName("name")
	assert.True(t, ok)
	assert.Equal(t, "getName", got)

	got, ok = SetterName("isExist")
	assert.True(t, ok)
	assert.Equal(t, "setIsExist", got)

	_, ok = GetterName("")
	assert.False(t, ok)
}

func TestAccessorKindString(t *testing.T) {
	assert.Equal(t, "reader", Reader.String())
	assert.Equal(t, "writer", Writer.String())
	assert.Equal(t, "unknown", AccessorKind(7).String())
}
