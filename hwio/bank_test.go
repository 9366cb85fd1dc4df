package hwio

import "testing"

func TestBankReg32Callbacks(t *testing.T) {
	var wrote []uint32
	reg := &BankReg32{
		Name:    "CTRL",
		Value:   0x11,
		WriteCb: func(old, val uint32) { wrote = append(wrote, val) },
	}

	b := NewBank("test")
	b.MapReg32(0x1000, reg)

	if got := b.Read32(0x1000); got != 0x11 {
		t.Errorf("Read32 = %#x, want 0x11", got)
	}

	b.Write32(0x1000, 0x77)
	if reg.Value != 0x77 {
		t.Errorf("stored value = %#x, want 0x77", reg.Value)
	}
	if len(wrote) != 1 || wrote[0] != 0x77 {
		t.Errorf("write callback calls = %v", wrote)
	}

	derived := &BankReg32{
		Name:   "STATUS",
		ReadCb: func(uint32) uint32 { return 0xcafe },
	}
	b.MapReg32(0x1004, derived)
	if got := b.Read32(0x1004); got != 0xcafe {
		t.Errorf("derived Read32 = %#x, want 0xcafe", got)
	}
}

func TestBankReg64(t *testing.T) {
	reg := &BankReg64{Name: "DATA"}
	b := NewBank("test")
	b.MapReg64(0x8800, reg)

	b.Write64(0x8800, 0xdeadbeefcafe)
	if got := b.Read64(0x8800); got != 0xdeadbeefcafe {
		t.Errorf("Read64 = %#x", got)
	}
}

func TestBankUnmapped(t *testing.T) {
	b := NewBank("test")

	if got := b.Read32(0xdead); got != 0 {
		t.Errorf("unmapped Read32 = %#x, want 0", got)
	}
	if got := b.Read64(0xdead); got != 0 {
		t.Errorf("unmapped Read64 = %#x, want 0", got)
	}
	// writes to nowhere must not panic
	b.Write32(0xdead, 1)
	b.Write64(0xdead, 1)
}
