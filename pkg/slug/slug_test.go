package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_BasicASCII(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Vijay Nagar", "vijay-nagar"},
		{"Indore, Madhya Pradesh", "indore-madhya-pradesh"},
		{"Simple", "simple"},
		{"ALL UPPER CASE", "all-upper-case"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_Diacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bāndra West", "bandra-west"},
		{"Şişli", "sisli"},
		{"Kadın Giyim", "kadin-giyim"},
		{"São Paulo", "sao-paulo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_EdgeCases(t *testing.T) {
	assert.Equal(t, "", Generate(""))
	assert.Equal(t, "", Generate("   "))
	assert.Equal(t, "", Generate("!!!"))
	assert.Equal(t, "452010", Generate("452010"))
	assert.Equal(t, "a-b", Generate("a - - b"))
	assert.Equal(t, "hello", Generate("-hello-"))
	assert.Equal(t, "hello-world", Generate("hello\t\tworld"))
}

func TestJoin_SkipsEmptyParts(t *testing.T) {
	assert.Equal(t, "indore-vijay-nagar-452010", Join("Indore", "Vijay Nagar", "", "452010"))
	assert.Equal(t, "", Join("", "  "))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"Vijay Nagar", "  vijay   nagar ", true},
		{"STRASSE", "strasse", true},
		{"Indore", "INDORE", true},
		{"Indore", "Indore City", false},
		{"Bandra", "Bāndra", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.equal, Normalize(tt.a) == Normalize(tt.b))
		})
	}
}
