package codegen

import (
	"github.com/berdon/asmx86/asmerr"
	"github.com/berdon/asmx86/cpuinfo"
	"github.com/berdon/asmx86/token"
)

// EmitAssignment implements `register = constant`. Every `=` statement
// reaches here, including `*number =` (an indirect destination); `+=` and
// `-=` are rejected by the parser before any call. Only a direct register
// destination with a constant source is encodable in this opcode subset;
// an indirect destination or a non-constant source reports Unimplemented
// rather than emitting anything.
func (g *Generator) EmitAssignment(lhs Operand, rhs Value, pos token.Position) *asmerr.Error {
	if lhs.Access == Indirect {
		return asmerr.At(asmerr.Generator, asmerr.Unimplemented, pos, "indirect memory assignment is not implemented")
	}
	if lhs.Value.Kind != ValueIdentifier {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "assignment target must be a register")
	}
	if rhs.Kind != ValueConstant {
		return asmerr.At(asmerr.Generator, asmerr.Unimplemented, pos, "register-to-register assignment is not implemented")
	}

	reg, ok := cpuinfo.Resolve(lhs.Value.Text)
	if !ok {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "unknown register "+lhs.Value.Text)
	}
	if !cpuinfo.SupportedByBitMode(reg, g.bitMode) {
		return asmerr.At(asmerr.Generator, asmerr.RegisterNotSupportedInBitMode, pos, reg.Name+" is not available in "+g.bitMode2String()+"-bit mode")
	}
	if reg.RequiresExtension(cpuinfo.APX) || reg.RequiresExtension(cpuinfo.REX) {
		return asmerr.At(asmerr.Generator, asmerr.Unimplemented, pos, reg.Name+" requires a REX/REX2 prefix, which this opcode subset does not emit")
	}
	if reg.Index == nil {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, reg.Name+" has no opcode index")
	}

	switch reg.Size {
	case cpuinfo.Bits8:
		return g.emitRegisterImmediate(0xB0, *reg.Index, rhs.Text, 1, false, pos)
	case cpuinfo.Bits16:
		return g.emitRegisterImmediate(0xB8, *reg.Index, rhs.Text, 2, false, pos)
	case cpuinfo.Bits32:
		return g.emitRegisterImmediate(0xB8, *reg.Index, rhs.Text, 4, g.bitMode == 16, pos)
	default: // Bits64
		return asmerr.At(asmerr.Generator, asmerr.Unimplemented, pos, "64-bit register-immediate moves are not implemented")
	}
}

// emitRegisterImmediate encodes the `opcode+index imm...` form, prefixed
// with 0x66 when the destination is a 32-bit register and the processor
// is in 16-bit mode. The constant's own minimal width must not exceed the
// register's width, or it cannot be represented without truncation.
func (g *Generator) emitRegisterImmediate(opcode byte, index int, immText string, immBytes int, needsOperandSizeOverride bool, pos token.Position) *asmerr.Error {
	minBytes, err := countBytes(immText)
	if err != nil {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, err.Error())
	}
	if minBytes > immBytes {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, "constant does not fit the destination register's width")
	}

	imm, err := bytesFromValue(immText, immBytes)
	if err != nil {
		return asmerr.At(asmerr.Generator, asmerr.GenInternalException, pos, err.Error())
	}

	var out []byte
	if needsOperandSizeOverride {
		out = append(out, 0x66)
	}
	out = append(out, opcode+byte(index))
	out = append(out, imm...)
	g.emitRaw(out)
	return nil
}

func (g *Generator) bitMode2String() string {
	switch g.bitMode {
	case 16:
		return "16"
	case 32:
		return "32"
	case 64:
		return "64"
	default:
		return "?"
	}
}
