package host

import (
	"sync/atomic"
)

// The stubs resolve their host through this process-wide slot, the
// native-execution stand-in for the runtime's per-thread context lookup.
// One logical execution thread owns the slot at a time; the slot itself
// is safe to read from anywhere.

var currentInvokeContext atomic.Value

type invokeContextBox struct {
	ic InvokeContext
}

// SetInvokeContext attaches ic as the host for subsequent syscalls.
func SetInvokeContext(ic InvokeContext) {
	currentInvokeContext.Store(invokeContextBox{ic: ic})
}

// ClearInvokeContext detaches the current host.
func ClearInvokeContext() {
	currentInvokeContext.Store(invokeContextBox{})
}

// GetInvokeContext returns the attached host. A syscall arriving with no
// host attached is a harness bug and aborts.
func GetInvokeContext() InvokeContext {
	box, _ := currentInvokeContext.Load().(invokeContextBox)
	if box.ic == nil {
		panic("Invoke context not set!")
	}
	return box.ic
}

// InvokeContextSet reports whether a host is currently attached.
func InvokeContextSet() bool {
	box, _ := currentInvokeContext.Load().(invokeContextBox)
	return box.ic != nil
}
