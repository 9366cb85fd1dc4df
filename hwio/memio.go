package hwio

// MemIO is an addressable register space supporting 32-bit and 64-bit
// accesses. Implementations are the debug proxy (live hardware) and the
// simulated coprocessor; addresses are absolute.
type MemIO interface {
	Read32(addr uint64) uint32
	Write32(addr uint64, val uint32)
	Read64(addr uint64) uint64
	Write64(addr uint64, val uint64)
}
