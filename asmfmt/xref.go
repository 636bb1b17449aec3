// Package asmfmt reports on an assembled program after code generation:
// a sorted symbol-table dump (which labels exist, where, and whether a
// jump ever referenced them) and a hex-dump rendering of the output image
// as an alternative to writing the raw binary.
package asmfmt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/berdon/asmx86/codegen"
)

// SymbolEntry is one row of a symbol-table dump.
type SymbolEntry struct {
	Name       string
	Address    *uint64 // nil if the label was referenced but never defined
	Referenced bool
}

// CollectSymbols gathers every label the generator has seen into a
// name-sorted slice, flagging which ones a jump actually referenced.
func CollectSymbols(gen *codegen.Generator) []SymbolEntry {
	refs := gen.ReferencedLabels()
	symbols := gen.Symbols()

	entries := make([]SymbolEntry, 0, len(symbols))
	for name, sym := range symbols {
		entries = append(entries, SymbolEntry{
			Name:       name,
			Address:    sym.Address,
			Referenced: refs[name],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// UnusedLabels returns the labels that were defined but never the target
// of any jump.
func UnusedLabels(gen *codegen.Generator) []SymbolEntry {
	var unused []SymbolEntry
	for _, e := range CollectSymbols(gen) {
		if e.Address != nil && !e.Referenced {
			unused = append(unused, e)
		}
	}
	return unused
}

// UndefinedLabels returns the labels that were referenced by a jump but
// never defined.
func UndefinedLabels(gen *codegen.Generator) []SymbolEntry {
	var undefined []SymbolEntry
	for _, e := range CollectSymbols(gen) {
		if e.Address == nil && e.Referenced {
			undefined = append(undefined, e)
		}
	}
	return undefined
}

// DumpSymbols renders a sorted "name -> address" symbol-table report.
func DumpSymbols(gen *codegen.Generator) string {
	var sb strings.Builder

	sb.WriteString("Symbol Table\n")
	sb.WriteString("============\n\n")

	for _, e := range CollectSymbols(gen) {
		sb.WriteString(fmt.Sprintf("%-30s", e.Name))
		if e.Address != nil {
			sb.WriteString(fmt.Sprintf(" 0x%08X", *e.Address))
		} else {
			sb.WriteString(" (undefined)")
		}
		if !e.Referenced {
			sb.WriteString("  [unused]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
