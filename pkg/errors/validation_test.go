package errors

import (
	"strings"
	"testing"
)

func TestValidateDesignName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "adder", false},
		{"valid with underscore", "alu_32", false},
		{"valid with dash and dot", "top-v1.2", false},
		{"valid bus style", "core[3]", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"space", "my design", true},
		{"tab", "my\tdesign", true},
		{"null byte", "foo\x00bar", true},
		{"semicolon", "foo;", true},
		{"paren", "f(x)", true},
		{"quote", `a"b`, true},
		{"comment", "#top", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"traversal", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDesignName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDesignName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateDesignName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "out.def", false},
		{"valid nested", "plots/adder.svg", false},
		{"valid with dots", "v1.2/out.def", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"traversal middle", "a/../../b", true},
		{"backslash", "a\\b", true},
		{"control char", "a\x01b", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}
