package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSample, "tree %d: repeated taxon", 3)
	if err.Code != ErrCodeInvalidSample {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidSample)
	}
	if err.Message != "tree 3: repeated taxon" {
		t.Errorf("Message = %q", err.Message)
	}
	if got := err.Error(); got != "INVALID_SAMPLE: tree 3: repeated taxon" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write artifact")

	if got := err.Error(); got != "INTERNAL_ERROR: write artifact: disk full" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeInvalidGoal, "no such goal")
	wrapped := fmt.Errorf("running pipeline: %w", err)

	if !Is(wrapped, ErrCodeInvalidGoal) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
	if Is(wrapped, ErrCodeNotFound) {
		t.Error("Is matched the wrong code")
	}
	if got := GetCode(wrapped); got != ErrCodeInvalidGoal {
		t.Errorf("GetCode = %s, want %s", got, ErrCodeInvalidGoal)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "no cache entry")); got != "no cache entry" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "bson", "dot", "svg"}
	if err := ValidateOutputFormat("svg", supported); err != nil {
		t.Errorf("svg rejected: %v", err)
	}
	err := ValidateOutputFormat("png", supported)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("png error = %v, want INVALID_FORMAT", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid", "out/dag.svg", false},
		{"empty", "", true},
		{"null byte", "a\x00b", true},
		{"control character", "a\nb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaxonName(t *testing.T) {
	tests := []struct {
		name    string
		taxon   string
		wantErr bool
	}{
		{"valid", "Homo_sapiens", false},
		{"spaces ok", "Homo sapiens", false},
		{"empty", "", true},
		{"newick punctuation", "taxon(1)", true},
		{"comma", "a,b", true},
		{"control character", "a\tb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaxonName(tt.taxon)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaxonName(%q) = %v, wantErr %v", tt.taxon, err, tt.wantErr)
			}
		})
	}
}
