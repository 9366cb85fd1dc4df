package hwio

import "fmt"

// Reg32 is a 32-bit register handle bound to a bus address.
type Reg32 struct {
	Name string
	Bus  MemIO
	Addr uint64
}

func (r Reg32) String() string {
	return fmt.Sprintf("%s@%x", r.Name, r.Addr)
}

func (r Reg32) Read() uint32 {
	return r.Bus.Read32(r.Addr)
}

func (r Reg32) Write(val uint32) {
	r.Bus.Write32(r.Addr, val)
}

// Field reads the register and extracts the given field.
func (r Reg32) Field(f Field32) uint32 {
	return f.Get(r.Read())
}

// SetField performs a read-modify-write of the given field.
func (r Reg32) SetField(f Field32, val uint32) {
	r.Write(f.Insert(r.Read(), val))
}

// Reg64 is a 64-bit register handle bound to a bus address.
type Reg64 struct {
	Name string
	Bus  MemIO
	Addr uint64
}

func (r Reg64) String() string {
	return fmt.Sprintf("%s@%x", r.Name, r.Addr)
}

func (r Reg64) Read() uint64 {
	return r.Bus.Read64(r.Addr)
}

func (r Reg64) Write(val uint64) {
	r.Bus.Write64(r.Addr, val)
}

func (r Reg64) Field(f Field64) uint64 {
	return f.Get(r.Read())
}

func (r Reg64) SetField(f Field64, val uint64) {
	r.Write(f.Insert(r.Read(), val))
}
