package hwio

// Field32 is a named bit range (Hi:Lo, inclusive) within a 32-bit register.
type Field32 struct {
	Hi, Lo uint
}

// Bit32 returns the single-bit field at position n.
func Bit32(n uint) Field32 {
	return Field32{Hi: n, Lo: n}
}

func (f Field32) Mask() uint32 {
	return (1<<(f.Hi-f.Lo+1) - 1) << f.Lo
}

// Get extracts the field value from a raw register word.
func (f Field32) Get(v uint32) uint32 {
	return (v & f.Mask()) >> f.Lo
}

// Insert returns v with the field replaced by x.
func (f Field32) Insert(v, x uint32) uint32 {
	return (v &^ f.Mask()) | (x << f.Lo & f.Mask())
}

// Field64 is a named bit range (Hi:Lo, inclusive) within a 64-bit register.
type Field64 struct {
	Hi, Lo uint
}

func Bit64(n uint) Field64 {
	return Field64{Hi: n, Lo: n}
}

func (f Field64) Mask() uint64 {
	return (1<<(f.Hi-f.Lo+1) - 1) << f.Lo
}

func (f Field64) Get(v uint64) uint64 {
	return (v & f.Mask()) >> f.Lo
}

func (f Field64) Insert(v, x uint64) uint64 {
	return (v &^ f.Mask()) | (x << f.Lo & f.Mask())
}
