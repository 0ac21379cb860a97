package scsarchive

import (
	"encoding/binary"
	"math/bits"
	"strconv"
)

// The 64-bit CityHash seed constants (CityHash v1.1, unseeded CityHash64).
const (
	k0 uint64 = 0xc3a5c85c97cb3127
	k1 uint64 = 0xb492b66fbe98f273
	k2 uint64 = 0x9ae16a3b2f90404f
)

// Key hashes an archive-internal virtual path into the 64-bit value used to
// address entries inside a container. When salt is non-zero its decimal
// representation is prepended to the path as text before hashing, not
// concatenated as binary; a salt of zero hashes the bare path.
func Key(path string, salt uint16) uint64 {
	if salt == 0 {
		return cityHash64([]byte(path))
	}
	buf := make([]byte, 0, len(path)+5)
	buf = strconv.AppendUint(buf, uint64(salt), 10)
	buf = append(buf, path...)
	return cityHash64(buf)
}

func fetch64(p []byte) uint64 { return binary.LittleEndian.Uint64(p) }
func fetch32(p []byte) uint32 { return binary.LittleEndian.Uint32(p) }

func rotate64(val uint64, shift uint) uint64 {
	if shift == 0 {
		return val
	}
	return (val >> shift) | (val << (64 - shift))
}

func shiftMix(val uint64) uint64 { return val ^ (val >> 47) }

func hashLen16WithMul(u, v, mul uint64) uint64 {
	a := (u ^ v) * mul
	a ^= a >> 47
	b := (v ^ a) * mul
	b ^= b >> 47
	b *= mul
	return b
}

func hashLen16(u, v uint64) uint64 {
	return hash128to64(u, v)
}

func hash128to64(low, high uint64) uint64 {
	const kMul = 0x9ddfea08eb382d69
	a := (low ^ high) * kMul
	a ^= a >> 47
	b := (high ^ a) * kMul
	b ^= b >> 47
	b *= kMul
	return b
}

func hashLen0to16(s []byte) uint64 {
	length := uint64(len(s))
	if length >= 8 {
		mul := k2 + length*2
		a := fetch64(s) + k2
		b := fetch64(s[len(s)-8:])
		c := rotate64(b, 37)*mul + a
		d := (rotate64(a, 25) + b) * mul
		return hashLen16WithMul(c, d, mul)
	}
	if length >= 4 {
		mul := k2 + length*2
		a := fetch32(s)
		return hashLen16WithMul(length+(uint64(a)<<3), uint64(fetch32(s[len(s)-4:])), mul)
	}
	if length > 0 {
		a := s[0]
		b := s[length>>1]
		c := s[length-1]
		y := uint32(a) + (uint32(b) << 8)
		z := uint32(length) + (uint32(c) << 2)
		return shiftMix(uint64(y)*k2^uint64(z)*k0) * k2
	}
	return k2
}

func hashLen17to32(s []byte) uint64 {
	length := uint64(len(s))
	mul := k2 + length*2
	a := fetch64(s) * k1
	b := fetch64(s[8:])
	c := fetch64(s[len(s)-8:]) * mul
	d := fetch64(s[len(s)-16:]) * k2
	return hashLen16WithMul(
		rotate64(a+b, 43)+rotate64(c, 30)+d,
		a+rotate64(b+k2, 18)+c,
		mul)
}

func hashLen33to64(s []byte) uint64 {
	length := uint64(len(s))
	mul := k2 + length*2
	a := fetch64(s) * k2
	b := fetch64(s[8:])
	c := fetch64(s[len(s)-24:])
	d := fetch64(s[len(s)-32:])
	e := fetch64(s[16:]) * k2
	f := fetch64(s[24:]) * 9
	g := fetch64(s[len(s)-8:])
	h := fetch64(s[len(s)-16:]) * mul

	u := rotate64(a+g, 43) + (rotate64(b, 30)+c)*9
	v := ((a + g) ^ d) + f + 1
	w := bits.ReverseBytes64((u+v)*mul) + h
	x := rotate64(e+f, 42) + c
	y := (bits.ReverseBytes64((v+w)*mul) + g) * mul
	z := e + f + c
	a = bits.ReverseBytes64((x+z)*mul+y) + b
	b = shiftMix((z+a)*mul+d+h) * mul
	return b + x
}

func weakHashLen32WithSeedsWords(w, x, y, z, a, b uint64) (uint64, uint64) {
	a += w
	b = rotate64(b+a+z, 21)
	c := a
	a += x
	a += y
	b += rotate64(a, 44)
	return a + z, b + c
}

func weakHashLen32WithSeeds(s []byte, a, b uint64) (uint64, uint64) {
	return weakHashLen32WithSeedsWords(fetch64(s), fetch64(s[8:]), fetch64(s[16:]), fetch64(s[24:]), a, b)
}

// cityHash64 is a from-scratch reimplementation of Google's CityHash64
// (CityHash v1.1, unseeded variant), reproduced bit-for-bit because it is
// part of the archive format's public contract and no library in the
// dependency graph implements this exact algorithm (see DESIGN.md).
func cityHash64(s []byte) uint64 {
	length := len(s)
	switch {
	case length <= 16:
		return hashLen0to16(s)
	case length <= 32:
		return hashLen17to32(s)
	case length <= 64:
		return hashLen33to64(s)
	}

	x := fetch64(s[length-40:])
	y := fetch64(s[length-16:]) + fetch64(s[length-56:])
	z := hashLen16(fetch64(s[length-48:])+uint64(length), fetch64(s[length-24:]))
	v0, v1 := weakHashLen32WithSeeds(s[length-64:], uint64(length), z)
	w0, w1 := weakHashLen32WithSeeds(s[length-32:], y+k1, x)
	x = x*k1 + fetch64(s)

	remaining := (length - 1) &^ 63
	idx := 0
	for {
		x = rotate64(x+y+v0+fetch64(s[idx+8:]), 37) * k1
		y = rotate64(y+v1+fetch64(s[idx+48:]), 42) * k1
		x ^= w1
		y += v0 + fetch64(s[idx+40:])
		z = rotate64(z+w0, 33) * k1
		v0, v1 = weakHashLen32WithSeeds(s[idx:], v1*k1, x+w0)
		w0, w1 = weakHashLen32WithSeeds(s[idx+32:], z+w1, y+fetch64(s[idx+16:]))
		z, x = x, z
		idx += 64
		remaining -= 64
		if remaining == 0 {
			break
		}
	}

	return hashLen16(hashLen16(v0, w0)+shiftMix(y)*k1+z, hashLen16(v1, w1)+x)
}
