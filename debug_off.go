//go:build !slabpooldebug

package slabpool

const debugAsserts = false
