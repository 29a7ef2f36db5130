package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPrefixFold(t *testing.T) {
	tests := []struct {
		s, prefix string
		want      bool
	}{
		{"demoHeader", "demo", true},
		{"DEMOHeader", "demo", true},
		{"testApp", "TEST", true},
		{"_hidden", "_", true},
		{"de", "demo", false},
		{"headerA", "demo", false},
		{"anything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPrefixFold(tt.s, tt.prefix))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "featur...", Truncate("features.welcome.text", 9))
	assert.Equal(t, "fea", Truncate("features", 3))
	assert.Equal(t, "", Truncate("features", 0))
	assert.Equal(t, "héllo", Truncate("héllo", 5))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "header", Plural(1, "header"))
	assert.Equal(t, "headers", Plural(0, "header"))
	assert.Equal(t, "headers", Plural(2, "header"))
}
