package sku

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{3}-\d{6}-[A-Z0-9]{1,6}$`)

func TestGenerateShape(t *testing.T) {
	code := Generate("COT", "TSH")
	assert.Regexp(t, skuPattern, code)
	assert.Contains(t, code, "COT-TSH-")
	assert.Contains(t, code, time.Now().UTC().Format("060102"))
}

func TestGenerateDistinctSalts(t *testing.T) {
	first := Generate("COT", "TSH")
	time.Sleep(2 * time.Millisecond)
	second := Generate("COT", "TSH")

	assert.NotEqual(t, first, second, "successive calls should carry distinct salts")
}

func TestCodePart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"COT", "COT"},
		{"cotton", "COT"},
		{"co", "COX"},
		{"c", "CXX"},
		{"", "XXX"},
		{"c-1", "C1X"},
		{"  li nen ", "LIN"},
		{"HD-2024", "HD2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, codePart(tt.in), "codePart(%q)", tt.in)
	}
}
