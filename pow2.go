package slabpool

import "math/bits"

// MaxPowerOfTwo is the largest power of two an int can hold.
const MaxPowerOfTwo = 1 << (bits.UintSize - 2)

// NextPowerOfTwo returns the smallest power of two >= n.
// Powers of two are returned unchanged and NextPowerOfTwo(0) is 1.
// It returns 0 when n > MaxPowerOfTwo.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	if n > MaxPowerOfTwo {
		return 0
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

// Log2ExactPowerOfTwo returns e such that n == 2^e, or 0 if n is not an
// exact power of two.
func Log2ExactPowerOfTwo(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		return 0
	}
	return bits.TrailingZeros(uint(n))
}

// PowerOfTwo returns 2^exponent by repeated doubling.
func PowerOfTwo(exponent int) int {
	result := 1
	for i := 0; i < exponent; i++ {
		result <<= 1
	}
	return result
}

// classIndex maps a request size to its rounded block size and class index.
// Sizes that cannot be rounded get an index past every class table.
func classIndex(size int) (memorySize, index int) {
	memorySize = NextPowerOfTwo(size)
	if memorySize == 0 {
		return 0, bits.UintSize
	}
	return memorySize, Log2ExactPowerOfTwo(memorySize)
}
