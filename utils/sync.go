package utils

import "sync/atomic"

// AtomicBool is a lock-free boolean flag, zero value is false.
type AtomicBool struct {
	i32 int32
}

// Bool reports the current value
func (a *AtomicBool) Bool() bool {
	return atomic.LoadInt32(&a.i32) == 1
}

// Set flips the flag to true
func (a *AtomicBool) Set() {
	atomic.StoreInt32(&a.i32, 1)
}

// Unset flips the flag back to false
func (a *AtomicBool) Unset() {
	atomic.StoreInt32(&a.i32, 0)
}
