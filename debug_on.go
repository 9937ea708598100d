//go:build slabpooldebug

package slabpool

// debugAsserts turns outstanding blocks at Release into a panic.
const debugAsserts = true
