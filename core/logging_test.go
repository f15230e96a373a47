package core

import "testing"

func TestDefaultLoggerDebugToggle(t *testing.T) {
	l := NewDefaultLogger("", false)
	if l.DebugEnabled() {
		t.Fatal("debug should start disabled")
	}
	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Fatal("SetDebug(true) did not stick")
	}
	// Must not panic with debug on.
	l.Debugf("frame %d", 1)
}
