package openpgp

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

// S2KType identifies which of the three RFC 4880 section 3.7.1
// string-to-key specifiers is in use.
type S2KType uint8

const (
	S2KSimple        S2KType = 0
	S2KSalted        S2KType = 1
	S2KIteratedSalted S2KType = 3
)

// S2K is a decoded string-to-key specifier.
type S2K struct {
	Type     S2KType
	HashAlgo HashAlgorithm
	Salt     []byte // len 8, present for Salted and IteratedSalted
	Count    uint32 // decoded (expanded) iteration count, IteratedSalted only
}

// newHash returns a fresh hash.Hash for the given algorithm id, or an
// UnsupportedError naming the id if this package doesn't implement it.
func newHash(algo HashAlgorithm) (hash.Hash, error) {
	switch algo {
	case HashMD5:
		return md5.New(), nil
	case HashSHA1:
		return sha1.New(), nil
	case HashRIPEMD160:
		return ripemd160.New(), nil
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	case HashSHA224:
		return sha256.New224(), nil
	default:
		return nil, UnsupportedError(fmt.Sprintf("hash algorithm id %d", int(algo)))
	}
}

// expandCount decodes the RFC 4880 section 3.7.1.3 octet-coded
// iteration count: (16 + (c & 15)) << ((c >> 4) + 6).
func expandCount(c byte) uint32 {
	return uint32(16+(c&15)) << (uint(c>>4) + 6)
}

// DecodeS2K reads one S2K specifier from the front of b, returning the
// specifier and the remaining bytes.
func DecodeS2K(b []byte) (*S2K, []byte, error) {
	if len(b) < 2 {
		return nil, nil, MalformedError("S2K specifier truncated")
	}
	s := &S2K{Type: S2KType(b[0]), HashAlgo: HashAlgorithm(b[1])}
	b = b[2:]

	switch s.Type {
	case S2KSimple:
		return s, b, nil
	case S2KSalted:
		if len(b) < 8 {
			return nil, nil, MalformedError("salted S2K truncated")
		}
		s.Salt = append([]byte(nil), b[:8]...)
		return s, b[8:], nil
	case S2KIteratedSalted:
		if len(b) < 9 {
			return nil, nil, MalformedError("iterated-salted S2K truncated")
		}
		s.Salt = append([]byte(nil), b[:8]...)
		s.Count = expandCount(b[8])
		return s, b[9:], nil
	default:
		return nil, nil, MalformedError("unknown S2K type")
	}
}

// Encode appends the wire form of s to dst.
func (s *S2K) Encode(dst []byte) ([]byte, error) {
	dst = append(dst, byte(s.Type), byte(s.HashAlgo))
	switch s.Type {
	case S2KSimple:
		return dst, nil
	case S2KSalted:
		if len(s.Salt) != 8 {
			return nil, InvalidArgumentError("salted S2K requires an 8-byte salt")
		}
		return append(dst, s.Salt...), nil
	case S2KIteratedSalted:
		if len(s.Salt) != 8 {
			return nil, InvalidArgumentError("iterated-salted S2K requires an 8-byte salt")
		}
		dst = append(dst, s.Salt...)
		return append(dst, encodeCount(s.Count)), nil
	default:
		return nil, InvalidArgumentError("unknown S2K type")
	}
}

// encodeCount is the (lossy) inverse of expandCount: it finds the
// smallest encoded octet whose expansion is >= count, which is the
// conventional way implementations pick an encoding for a desired
// iteration count.
func encodeCount(count uint32) byte {
	for c := 0; c <= 255; c++ {
		if expandCount(byte(c)) >= count {
			return byte(c)
		}
	}
	return 255
}

// DeriveKey runs the S2K function against passphrase to produce a key
// of length keyLen octets: parallel hash contexts, each preceded by i
// zero octets (i = 0, 1, 2, ...), concatenated and truncated to keyLen.
func (s *S2K) DeriveKey(passphrase []byte, keyLen int) ([]byte, error) {
	out := make([]byte, 0, keyLen)
	for i := 0; len(out) < keyLen; i++ {
		h, err := newHash(s.HashAlgo)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			h.Write(make([]byte, i))
		}
		if err := s.feed(h, passphrase); err != nil {
			return nil, err
		}
		out = append(out, h.Sum(nil)...)
	}
	return out[:keyLen], nil
}

// feed writes the S2K's input sequence into h: the bare passphrase for
// Simple, salt||passphrase for Salted, and salt||passphrase repeated
// (and truncated) to exactly Count octets for IteratedSalted; when
// Count is smaller than salt||passphrase, that sequence is fed once in
// full.
func (s *S2K) feed(h hash.Hash, passphrase []byte) error {
	switch s.Type {
	case S2KSimple:
		h.Write(passphrase)
		return nil
	case S2KSalted:
		h.Write(s.Salt)
		h.Write(passphrase)
		return nil
	case S2KIteratedSalted:
		combined := append(append([]byte(nil), s.Salt...), passphrase...)
		if len(combined) == 0 {
			return MalformedError("iterated-salted S2K has empty salt+passphrase")
		}
		remaining := int(s.Count)
		if remaining < len(combined) {
			remaining = len(combined)
		}
		for remaining > 0 {
			n := len(combined)
			if n > remaining {
				n = remaining
			}
			h.Write(combined[:n])
			remaining -= n
		}
		return nil
	default:
		return MalformedError("unknown S2K type")
	}
}
