package errors

import (
	"strings"
	"testing"
)

func TestValidateTopologyName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "four-grid", false},
		{"valid mixed case", "L-shape-left-large", false},
		{"valid with digits", "columns-8", false},

		{"empty", "", true},
		{"too long", "a" + strings.Repeat("b", 80), true},
		{"slash", "four/grid", true},
		{"colon", "four:grid", true},
		{"dot", "four.grid", true},
		{"leading digit", "4grid", true},
		{"space", "four grid", true},
		{"control char", "four\x01grid", true},
		{"newline", "four\ngrid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopologyName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTopologyName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTopology) {
				t.Errorf("ValidateTopologyName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTopology)
			}
		})
	}
}

func TestValidateGroupID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"rows", false},
		{"row-3", false},
		{"main", false},
		{"", true},
		{"row/3", true},
		{"-row", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateGroupID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGroupID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidGroup) {
				t.Errorf("ValidateGroupID(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://dash.example.com", false},
		{"http", "http://localhost:8080", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
