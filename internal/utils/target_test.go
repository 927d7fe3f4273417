package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTargets(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"App", []string{"App"}},
		{"App,AppTests", []string{"App", "AppTests"}},
		{"App, AppTests", []string{"App", "AppTests"}},
		{"App AppTests\tKit", []string{"App", "AppTests", "Kit"}},
		{"App,,App", []string{"App"}},
		{"", []string{}},
		{" , ", []string{}},
	}

	for _, test := range tests {
		result := ParseTargets(test.input)
		assert.Equal(t, test.expected, result, "ParseTargets(%q)", test.input)
	}
}
