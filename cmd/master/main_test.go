package main

import (
	"reflect"
	"testing"
)

// TestSplitAddrs tests worker address list parsing
func TestSplitAddrs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "two addresses",
			input:    "127.0.0.1:5001,127.0.0.1:5002",
			expected: []string{"127.0.0.1:5001", "127.0.0.1:5002"},
		},
		{
			name:     "whitespace and trailing comma",
			input:    " 127.0.0.1:5001 , 127.0.0.1:5002,",
			expected: []string{"127.0.0.1:5001", "127.0.0.1:5002"},
		},
		{
			name:     "empty flag",
			input:    "",
			expected: nil,
		},
		{
			name:     "only separators",
			input:    ", ,",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAddrs(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
