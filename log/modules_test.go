package log

import "testing"

func TestModuleByName(t *testing.T) {
	mod, ok := ModuleByName("mbx")
	if !ok || mod != ModMbx {
		t.Fatalf("ModuleByName(mbx) = %v, %v", mod, ok)
	}
	if _, ok := ModuleByName("nosuchmod"); ok {
		t.Fatal("ModuleByName accepted an unknown name")
	}
}

func TestDebugMask(t *testing.T) {
	defer DisableDebugModules(ModuleMaskAll)

	if ModMbx.Enabled(DebugLevel) {
		t.Fatal("debug enabled by default")
	}
	if !ModMbx.Enabled(ErrorLevel) {
		t.Fatal("errors disabled by default")
	}

	EnableDebugModules(ModMbx.Mask())
	if !ModMbx.Enabled(DebugLevel) {
		t.Fatal("debug not enabled after EnableDebugModules")
	}
	if ModProxy.Enabled(DebugLevel) {
		t.Fatal("debug mask leaked to another module")
	}
}

func TestNewModule(t *testing.T) {
	mod := NewModule("extra")
	got, ok := ModuleByName("extra")
	if !ok || got != mod {
		t.Fatalf("ModuleByName(extra) = %v, %v", got, ok)
	}
}
