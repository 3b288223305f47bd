package crypto

// Zero overwrites a byte slice in memory with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroKey clears a derived key in place.
func ZeroKey(k *[KeySize]byte) {
	Zero(k[:])
}
