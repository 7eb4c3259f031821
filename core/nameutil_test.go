package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugifyName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Basic lowercase conversion", "Hello World", "hello-world"},
		{"Remove parentheses and content inside", "Product (Special Edition)", "product"},
		{"Remove suffix after hyphen-space", "Movie - Director's Cut", "movie"},
		{"Replace non-alphanumeric with hyphens", "Hello! @World#", "hello-world"},
		{"Collapse multiple hyphens", "Hello---World", "hello-world"},
		{"Remove leading and trailing hyphens", "-hello-world-", "hello-world"},
		{"Empty string", "", ""},
		{"Only special characters", "!@#$%^&*()", ""},
		{"Numbers preserved", "Product123", "product123"},
		{"Multiple spaces", "Hello  World", "hello-world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlugifyName(tt.input))
		})
	}
}

func TestPrettifyName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Slug", "sodium-extra", "Sodium Extra"},
		{"Underscores", "create_addons", "Create Addons"},
		{"Camel case", "ironChests", "Iron Chests"},
		{"Already pretty", "Just Enough Items", "Just Enough Items"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrettifyName(tt.input))
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1K"},
		{12_345, "12.3K"},
		{1_500_000, "1.5M"},
		{2_000_000_000, "2B"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.input))
	}
}
