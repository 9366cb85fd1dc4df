package hwio

import "testing"

func TestReg32FieldAccess(t *testing.T) {
	reg := &BankReg32{Name: "CTRL", Value: 0x00020000}
	b := NewBank("test")
	b.MapReg32(0x8110, reg)

	r := Reg32{Name: "CTRL", Bus: b, Addr: 0x8110}
	empty := Bit32(17)
	full := Bit32(16)

	if r.Field(empty) != 1 {
		t.Error("EMPTY not set")
	}
	if r.Field(full) != 0 {
		t.Error("FULL set")
	}

	// SetField is a read-modify-write: untouched bits survive
	enable := Bit32(1)
	r.SetField(enable, 1)
	if reg.Value != 0x00020002 {
		t.Errorf("value after SetField = %#x, want 0x00020002", reg.Value)
	}
}

func TestReg64(t *testing.T) {
	reg := &BankReg64{Name: "INBOX1"}
	b := NewBank("test")
	b.MapReg64(0x8808, reg)

	r := Reg64{Name: "INBOX1", Bus: b, Addr: 0x8808}
	ep := Field64{Hi: 7, Lo: 0}

	r.Write(0x20)
	if r.Field(ep) != 0x20 {
		t.Errorf("EP = %#x, want 0x20", r.Field(ep))
	}

	r.SetField(ep, 0x42)
	if r.Read() != 0x42 {
		t.Errorf("value = %#x, want 0x42", r.Read())
	}
}
