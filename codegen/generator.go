// Package codegen implements the assembler's two-pass code generator: a
// symbol table keyed by label name, a pending-jump worklist for forward
// references, and the small x86 opcode subset (register-immediate moves
// and short jumps) that the parser drives as it walks the token stream.
package codegen

import (
	"bytes"

	"github.com/berdon/asmx86/asmerr"
	"github.com/berdon/asmx86/token"
)

// Pass identifies which of the generator's two passes is running.
type Pass int

const (
	PassFirst Pass = iota
	PassSecond
)

// Generator accumulates the output image across both passes. Pass one
// walks the token stream to assign label addresses and reserve worst-case
// jump displacement sizes; NextPass tightens those displacements and
// shifts every symbol address down by however many bytes were saved;
// pass two re-walks the same token stream and emits final bytes.
type Generator struct {
	addressOrigin  uint64
	addressCounter uint64
	bitMode        int
	pass           Pass

	labels  map[string]*Symbol
	pending []*PendingJump
	// pendingCursor tracks which PendingJump record the second pass's
	// next label-jump corresponds to, since the two passes visit label
	// jumps in the same order they were first recorded.
	pendingCursor int

	out bytes.Buffer
}

// New creates a generator with the given default bit mode (16, 32 or 64).
func New(bitMode int) *Generator {
	return &Generator{
		bitMode: bitMode,
		labels:  make(map[string]*Symbol),
	}
}

// BitMode returns the processor bit-mode currently in effect.
func (g *Generator) BitMode() int { return g.bitMode }

// Pass returns which pass the generator is currently running.
func (g *Generator) Pass() Pass { return g.pass }

// CurrentAddress returns the address the next emitted byte will occupy.
// addressCounter starts at the origin (ProcessSetOrigin and NextPass set it
// there), so it already equals the origin plus the bytes emitted so far.
func (g *Generator) CurrentAddress() uint64 { return g.addressCounter }

// AddressOrigin returns the base address set by @SetOrigin, or 0 if it was
// never called.
func (g *Generator) AddressOrigin() uint64 { return g.addressOrigin }

// Symbols returns every label the generator has seen, defined or not.
// Callers must not mutate the returned symbols.
func (g *Generator) Symbols() map[string]*Symbol {
	return g.labels
}

// ReferencedLabels returns the set of label names that were the target of
// at least one jump, keyed by name for O(1) membership checks.
func (g *Generator) ReferencedLabels() map[string]bool {
	refs := make(map[string]bool, len(g.pending))
	for _, pj := range g.pending {
		refs[pj.Target.Name] = true
	}
	return refs
}

// Bytes returns the accumulated output image. Only meaningful after the
// second pass has completed.
func (g *Generator) Bytes() []byte { return g.out.Bytes() }

// ProcessSetBitMode implements the @SetBitMode(n) directive.
func (g *Generator) ProcessSetBitMode(mode int, pos token.Position) *asmerr.Error {
	if mode != 16 && mode != 32 && mode != 64 {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "unsupported bit mode")
	}
	g.bitMode = mode
	return nil
}

// ProcessSetOrigin implements the @SetOrigin(n) directive. It may only be
// issued before any bytes have been emitted.
func (g *Generator) ProcessSetOrigin(origin uint64, pos token.Position) *asmerr.Error {
	if g.out.Len() > 0 {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "origin must be set before any bytes are emitted")
	}
	g.addressOrigin = origin
	g.addressCounter = origin
	return nil
}

// symbolFor returns the symbol for name, creating an undefined one if this
// is its first mention.
func (g *Generator) symbolFor(name string) *Symbol {
	if sym, ok := g.labels[name]; ok {
		return sym
	}
	sym := newSymbol(name)
	g.labels[name] = sym
	return sym
}

// ProcessLabel binds name to the current address.
func (g *Generator) ProcessLabel(name string, pos token.Position) *asmerr.Error {
	sym := g.symbolFor(name)
	addr := g.addressCounter
	sym.Address = &addr
	return nil
}

// ProcessPadBytes implements @PadBytes(count, fill): emit count copies of
// the low byte of fill.
func (g *Generator) ProcessPadBytes(count int, fill byte, pos token.Position) *asmerr.Error {
	if count < 0 {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "pad count must not be negative")
	}
	buf := make([]byte, count)
	for i := range buf {
		buf[i] = fill
	}
	g.emitRaw(buf)
	return nil
}

// EmitDoubleWord implements the DoubleWords(n) directive: n is always
// emitted as exactly 2 little-endian bytes, (n & 0xFF, (n>>8) & 0xFF).
func (g *Generator) EmitDoubleWord(n uint64) {
	g.emitRaw([]byte{byte(n), byte(n >> 8)})
}

// EmitBytes increments the address counter by len(bs) and writes bs only
// in the second pass.
func (g *Generator) EmitBytes(bs []byte) {
	g.emitRaw(bs)
}

// emitRaw appends bytes to the output (second pass only) and always
// advances the address counter, since both passes must agree on layout.
func (g *Generator) emitRaw(b []byte) {
	if g.pass == PassSecond {
		g.out.Write(b)
	}
	g.addressCounter += uint64(len(b))
}

// NextPass closes out pass one: it runs finalize_first_pass to tighten
// every recorded pending jump to its minimal encoding, shifting affected
// symbol addresses down by the bytes reclaimed, then resets the
// generator's cursors so the parser can re-walk the token stream for pass
// two. It fails if the generator is already in its second pass.
func (g *Generator) NextPass(pos token.Position) *asmerr.Error {
	if g.pass == PassSecond {
		return asmerr.At(asmerr.Generator, asmerr.InvalidParsingPass, pos, "cannot advance past the second pass")
	}
	g.finalizeFirstPass()
	g.pass = PassSecond
	g.pendingCursor = 0
	g.addressCounter = g.addressOrigin
	g.out.Reset()
	return nil
}

// finalizeFirstPass walks pending_jumps, shrinking each one to the
// minimum signed byte width its displacement actually needs. Shrinking
// one jump can change the distance other jumps measure, so the walk
// repeats until a full pass makes no further change (bounded, since each
// change only ever shrinks a size and sizes are small integers).
func (g *Generator) finalizeFirstPass() {
	const maxIterations = 16

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, pj := range g.pending {
			if !pj.Target.Defined() {
				continue
			}
			dispBytes := pj.Size - 1
			disp := int64(*pj.Target.Address) - (int64(pj.EmitAddress) + 1 + int64(dispBytes))
			minimal := requiredBytesForSignedInteger(disp)
			if minimal < dispBytes {
				shrink := uint64(dispBytes - minimal)
				g.shiftAddressesAfter(pj.EmitAddress, shrink)
				pj.Size = 1 + minimal
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// shiftAddressesAfter moves every address recorded strictly after
// afterAddr down by shrink bytes: defined symbols, other pending jumps'
// emit addresses, and the generator's own running address counter.
func (g *Generator) shiftAddressesAfter(afterAddr, shrink uint64) {
	for _, sym := range g.labels {
		if sym.Defined() && *sym.Address > afterAddr {
			addr := *sym.Address - shrink
			sym.Address = &addr
		}
	}
	for _, pj := range g.pending {
		if pj.EmitAddress > afterAddr {
			pj.EmitAddress -= shrink
		}
	}
	if g.addressCounter > afterAddr {
		g.addressCounter -= shrink
	}
}
