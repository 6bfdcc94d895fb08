package math

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func Min[T Unsigned](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// SaturatingAdd returns `a + b`, or `limit` if the sum would pass it.
func SaturatingAdd[T Unsigned](a, b, limit T) T {
	if a > limit || b > limit-a {
		return limit
	}
	return a + b
}
