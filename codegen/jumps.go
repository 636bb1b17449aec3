package codegen

import (
	"github.com/berdon/asmx86/asmerr"
	"github.com/berdon/asmx86/token"
)

// valueByteSize returns the displacement width a jump uses by default in
// the given bit mode, before any branch-tightening shrinks it.
func valueByteSize(bitMode int) int {
	switch bitMode {
	case 32:
		return 4
	case 64:
		return 8
	default:
		return 2
	}
}

// EmitJump implements the `jmp` instruction for both an absolute numeric
// target and a label target.
//
// A numeric target is always encoded at the bit mode's full displacement
// width. A label target goes through the pending-jump worklist: on the
// first pass its final address may not be known yet, so a worst-case
// placeholder is reserved and a PendingJump recorded; finalize_first_pass
// later shrinks it to the minimal signed width the actual displacement
// needs. On the second pass every label jump consumes the next record
// from that worklist, in the same order the first pass produced them.
func (g *Generator) EmitJump(target Value, pos token.Position) *asmerr.Error {
	size := valueByteSize(g.bitMode)
	emitAddr := g.addressCounter

	switch target.Kind {
	case ValueConstant:
		minBytes, err := countBytes(target.Text)
		if err != nil {
			return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, err.Error())
		}
		if minBytes > size {
			return asmerr.At(asmerr.Generator, asmerr.Unimplemented, pos, "jump target does not fit the current bit mode's displacement width; far jumps are not implemented")
		}
		targetVal, err := parseConstantValue(target.Text)
		if err != nil {
			return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, err.Error())
		}
		disp := int64(targetVal) - (int64(emitAddr) + 1 + int64(size))
		out := append([]byte{0xEB}, leSignedBytes(disp, size)...)
		g.emitRaw(out)
		return nil

	case ValueIdentifier:
		sym := g.symbolFor(target.Text)

		if g.pass == PassFirst {
			worstCase := 1 + size
			g.pending = append(g.pending, &PendingJump{
				EmitAddress: emitAddr,
				Size:        worstCase,
				Target:      sym,
				Pos:         pos,
			})
			g.emitRaw(make([]byte, worstCase))
			return nil
		}

		if g.pendingCursor >= len(g.pending) {
			return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "second pass visited more label jumps than the first pass recorded")
		}
		pj := g.pending[g.pendingCursor]
		g.pendingCursor++

		if !pj.Target.Defined() {
			return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "undefined label: "+target.Text)
		}
		dispBytes := pj.Size - 1
		disp := int64(*pj.Target.Address) - (int64(emitAddr) + 1 + int64(dispBytes))
		out := append([]byte{0xEB}, leSignedBytes(disp, dispBytes)...)
		g.emitRaw(out)
		return nil
	}

	return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "invalid jump operand")
}
