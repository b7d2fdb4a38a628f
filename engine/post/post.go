// Package post hands results from background goroutines back to the goroutine that calls Tick
package post

import (
	"sync"

	"github.com/xiaonanln/gwdatatype/engine/gwlog"
)

// PostCallback is the type of functions to be posted
type PostCallback func()

var (
	callbacks []PostCallback
	lock      sync.Mutex
)

// Post a callback which will be executed by the next Tick
//
// Post might be called from other goroutine, so we use a lock to protect the data
func Post(f PostCallback) {
	lock.Lock()
	callbacks = append(callbacks, f)
	lock.Unlock()
}

// Tick runs all posted functions, including those posted while running
func Tick() {
	for { // loop until there is no callbacks posted anymore
		lock.Lock()
		if len(callbacks) == 0 {
			lock.Unlock()
			break
		}
		// switch callbacks in locked section
		callbacksCopy := callbacks
		callbacks = make([]PostCallback, 0, len(callbacks))
		lock.Unlock()

		for _, f := range callbacksCopy {
			RunPanicless(f)
		}
	}
}

// Pending returns the number of callbacks waiting for Tick
func Pending() int {
	lock.Lock()
	n := len(callbacks)
	lock.Unlock()
	return n
}

// RunPanicless calls a function panic-freely
func RunPanicless(f func()) (paniced bool) {
	defer func() {
		err := recover()
		if err != nil {
			gwlog.TraceError("%p panic: %s", f, err)
			paniced = true
		}
	}()

	f()
	return
}
