package codegen

import "github.com/berdon/asmx86/token"

// Symbol is a named address derived from a label. Address is nil until
// the label is first defined.
type Symbol struct {
	Name    string
	Address *uint64
}

// Defined reports whether the symbol's address has been set.
func (s *Symbol) Defined() bool { return s.Address != nil }

func newSymbol(name string) *Symbol {
	return &Symbol{Name: name}
}

// PendingJump records a jump emitted in pass one whose target label's
// address was forward or unknown at the time.
type PendingJump struct {
	EmitAddress uint64
	Size        int
	Target      *Symbol
	Pos         token.Position
}
