package errors

import (
	"strings"
	"testing"

	"github.com/eco-lang/eco/lexer"
	"github.com/eco-lang/eco/parser"
)

func TestDiagnosticFormat(t *testing.T) {
	tests := []struct {
		name        string
		line        int
		column      int
		message     string
		source      string
		file        string
		wantContain []string
	}{
		{
			name:    "simple error with file",
			line:    1,
			column:  10,
			message: "undefined variable 'x'",
			source:  "const y = x + 5;",
			file:    "test.eco",
			wantContain: []string{
				"Error in test.eco:1:10",
				"   1 | const y = x + 5;",
				"^",
				"undefined variable 'x'",
			},
		},
		{
			name:    "error without file",
			line:    5,
			column:  15,
			message: "type mismatch",
			source:  "line1\nline2\nline3\nline4\nline5 with error here\nline6",
			file:    "",
			wantContain: []string{
				"Error at line 5, column 15",
				"   5 | line5 with error here",
				"^",
				"type mismatch",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.line, tt.column, tt.message, tt.source, tt.file)
			got := d.Format(false)
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("Format() missing %q, got:\n%s", want, got)
				}
			}
		})
	}
}

func TestDiagnosticFormatWithColor(t *testing.T) {
	d := New(1, 5, "test error", "const x = 10;", "test.eco")

	colorOutput := d.Format(true)
	if !strings.Contains(colorOutput, "\033[") {
		t.Error("Format(true) should contain ANSI color codes")
	}

	plainOutput := d.Format(false)
	if strings.Contains(plainOutput, "\033[") {
		t.Error("Format(false) should not contain ANSI color codes")
	}
}

func TestFormatDiagnostics(t *testing.T) {
	diags := []*Diagnostic{
		New(1, 5, "first error", "const x", "test.eco"),
		New(3, 10, "second error", "line1\nline2\ny = 10", "test.eco"),
	}
	got := FormatDiagnostics(diags, false)
	for _, want := range []string{
		"Compilation failed with 2 error(s)",
		"[Error 1 of 2]",
		"first error",
		"[Error 2 of 2]",
		"second error",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatDiagnostics() missing %q, got:\n%s", want, got)
		}
	}
}

func TestFormatDiagnosticsEmpty(t *testing.T) {
	if got := FormatDiagnostics(nil, false); got != "" {
		t.Errorf("FormatDiagnostics(nil) = %q, want empty", got)
	}
}

func TestFromPositionedStripsRedundantPrefix(t *testing.T) {
	src := "const x = ;"
	l := lexer.New(src)
	p := parser.New(l)
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatal("expected a parse error for a missing expression")
	}
	perr, ok := err.(*parser.Error)
	if !ok {
		t.Fatalf("expected *parser.Error, got %T", err)
	}

	d := FromPositioned(perr, src, "test.eco")
	if strings.Contains(d.Message, "Error at line") {
		t.Errorf("Message should not carry the redundant header, got %q", d.Message)
	}
	formatted := d.Format(false)
	if !strings.Contains(formatted, "Error in test.eco:") {
		t.Errorf("Format() should rebuild the header, got:\n%s", formatted)
	}
}
