package asmfmt

import (
	"strings"
	"testing"
)

func TestFormatHexDumpSingleLine(t *testing.T) {
	data := []byte{0xB8, 0x34, 0x12, 0xEB, 0xFE}
	out := FormatHexDump(data, 0x7C00, DefaultHexDumpOptions())

	if !strings.HasPrefix(out, "00007C00  ") {
		t.Fatalf("missing address prefix: %q", out)
	}
	if !strings.Contains(out, "b8 34 12 eb fe") {
		t.Fatalf("missing hex bytes: %q", out)
	}
	if !strings.Contains(out, "|") {
		t.Fatalf("missing ASCII gutter: %q", out)
	}
}

func TestFormatHexDumpMultiLine(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	out := FormatHexDump(data, 0, DefaultHexDumpOptions())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "00000010  ") {
		t.Fatalf("second line has wrong base address: %q", lines[1])
	}
}

func TestFormatHexDumpCompactHidesASCII(t *testing.T) {
	out := FormatHexDump([]byte{0x41, 0x42}, 0, CompactHexDumpOptions())
	if strings.Contains(out, "|") {
		t.Fatalf("compact format should not show an ASCII gutter: %q", out)
	}
}

func TestFormatHexDumpUppercase(t *testing.T) {
	opts := DefaultHexDumpOptions()
	opts.UppercaseHex = true
	out := FormatHexDump([]byte{0xAB}, 0, opts)
	if !strings.Contains(out, "AB") {
		t.Fatalf("expected uppercase hex, got %q", out)
	}
}
