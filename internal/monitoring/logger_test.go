package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("zone %s read %0.1f", "left", 42.34)
	if captured != "zone left read 42.3" {
		t.Errorf("captured = %q, want %q", captured, "zone left read 42.3")
	}
}

func TestSetLoggerNilIsNoop(t *testing.T) {
	SetLogger(nil)
	// must not panic
	Logf("discarded %d", 1)
}
