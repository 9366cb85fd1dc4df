package hwio

import "testing"

func TestField32(t *testing.T) {
	tests := []struct {
		f    Field32
		mask uint32
	}{
		{Bit32(0), 0x00000001},
		{Bit32(4), 0x00000010},
		{Bit32(17), 0x00020000},
		{Field32{Hi: 7, Lo: 0}, 0x000000ff},
		{Field32{Hi: 31, Lo: 28}, 0xf0000000},
	}

	for _, tt := range tests {
		if got := tt.f.Mask(); got != tt.mask {
			t.Errorf("Field32{%d,%d}.Mask() = %#x, want %#x", tt.f.Hi, tt.f.Lo, got, tt.mask)
		}
	}

	f := Field32{Hi: 7, Lo: 4}
	v := f.Insert(0xffffffff, 0xa)
	if v != 0xffffffaf {
		t.Errorf("Insert = %#x, want 0xffffffaf", v)
	}
	if got := f.Get(v); got != 0xa {
		t.Errorf("Get = %#x, want 0xa", got)
	}

	// Insert must mask out-of-range values instead of spilling into
	// neighbor fields
	if got := f.Insert(0, 0x1ff); got != 0xf0 {
		t.Errorf("Insert overflow = %#x, want 0xf0", got)
	}
}

func TestField64(t *testing.T) {
	f := Field64{Hi: 56, Lo: 52}
	if got := f.Mask(); got != 0x01f0000000000000 {
		t.Errorf("Mask = %#x", got)
	}

	v := f.Insert(0, 0x15)
	if got := f.Get(v); got != 0x15 {
		t.Errorf("Get = %#x, want 0x15", got)
	}

	ep := Field64{Hi: 7, Lo: 0}
	if got := ep.Get(v | 0x42); got != 0x42 {
		t.Errorf("low field disturbed by high insert: %#x", got)
	}
}
