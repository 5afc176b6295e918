package pluto

// DeriveID maps an opaque provider identifier to a stable positive 31-bit integer.
//
// The hash is djb2 over the UTF-8 bytes of id (h = 5381, h = h*33 + b, mod 2^32)
// with the sign bit masked off. A folded value of 0 is reported as 1 so callers
// never see the zero sentinel.
func DeriveID(id string) int32 {
	var h uint32 = 5381
	for i := 0; i < len(id); i++ {
		h = h*33 + uint32(id[i])
	}

	h &= 0x7fffffff
	if h == 0 {
		return 1
	}

	return int32(h)
}
