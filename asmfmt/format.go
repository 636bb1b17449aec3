package asmfmt

import (
	"fmt"
	"strings"
)

// HexDumpOptions controls FormatHexDump's column layout, mirroring the
// column-alignment knobs a source pretty-printer would expose, just
// applied to an address/hex/ASCII dump instead of assembly source.
type HexDumpOptions struct {
	BytesPerLine int
	UppercaseHex bool
	ShowASCII    bool
}

// DefaultHexDumpOptions returns the standard 16-bytes-per-line layout with
// an ASCII gutter.
func DefaultHexDumpOptions() *HexDumpOptions {
	return &HexDumpOptions{BytesPerLine: 16, UppercaseHex: false, ShowASCII: true}
}

// CompactHexDumpOptions returns a dense layout: no ASCII gutter, 32 bytes
// per line.
func CompactHexDumpOptions() *HexDumpOptions {
	return &HexDumpOptions{BytesPerLine: 32, UppercaseHex: false, ShowASCII: false}
}

// FormatHexDump renders data as an address-prefixed hex dump, the base
// address used as the label for the first row.
func FormatHexDump(data []byte, baseAddress uint64, opts *HexDumpOptions) string {
	if opts == nil {
		opts = DefaultHexDumpOptions()
	}
	if opts.BytesPerLine <= 0 {
		opts.BytesPerLine = 16
	}

	hexFmt := "%02x"
	if opts.UppercaseHex {
		hexFmt = "%02X"
	}

	var sb strings.Builder
	for offset := 0; offset < len(data); offset += opts.BytesPerLine {
		end := offset + opts.BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[offset:end]

		fmt.Fprintf(&sb, "%08X  ", baseAddress+uint64(offset))

		for i := 0; i < opts.BytesPerLine; i++ {
			if i < len(line) {
				fmt.Fprintf(&sb, hexFmt+" ", line[i])
			} else {
				sb.WriteString("   ")
			}
			if i == opts.BytesPerLine/2-1 {
				sb.WriteString(" ")
			}
		}

		if opts.ShowASCII {
			sb.WriteString(" |")
			for _, b := range line {
				if b >= 0x20 && b < 0x7F {
					sb.WriteByte(b)
				} else {
					sb.WriteByte('.')
				}
			}
			sb.WriteString("|")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
