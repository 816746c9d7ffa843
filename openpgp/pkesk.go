package openpgp

import "encoding/binary"

// PKESKPacket is a version-3 Public-Key Encrypted Session Key packet
// (tag 1). For ElGamal, Ciphertext holds exactly two MPIs (c1, c2); for
// RSA, exactly one.
type PKESKPacket struct {
	KeyID      [8]byte
	Algo       PublicKeyAlgorithm
	Ciphertext []*MPI
}

func (p *PKESKPacket) Tag() int { return 1 }

func (p *PKESKPacket) EncodeBody(dst []byte) ([]byte, error) {
	dst = append(dst, 0x03)
	dst = append(dst, p.KeyID[:]...)
	dst = append(dst, byte(p.Algo))
	var err error
	for _, m := range p.Ciphertext {
		if dst, err = m.Encode(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// pkeskMPICount reports how many ciphertext MPIs a PKESK carries for a
// given public-key algorithm.
func pkeskMPICount(algo PublicKeyAlgorithm) (int, error) {
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly:
		return 1, nil
	case PubKeyAlgoElGamal:
		return 2, nil
	default:
		return 0, UnsupportedError("public-key algorithm for PKESK")
	}
}

// DecodePKESKPacket decodes a version-3 PKESK packet body.
func DecodePKESKPacket(body []byte) (*PKESKPacket, error) {
	if len(body) < 10 {
		return nil, MalformedError("PKESK packet truncated")
	}
	if body[0] != 0x03 {
		return nil, MalformedError("unsupported PKESK version (only v3 is supported)")
	}
	p := &PKESKPacket{Algo: PublicKeyAlgorithm(body[9])}
	copy(p.KeyID[:], body[1:9])

	n, err := pkeskMPICount(p.Algo)
	if err != nil {
		return nil, err
	}
	rest := body[10:]
	for i := 0; i < n; i++ {
		var m *MPI
		m, rest, err = DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		p.Ciphertext = append(p.Ciphertext, m)
	}
	if len(rest) != 0 {
		return nil, MalformedError("trailing data after PKESK ciphertext")
	}
	return p, nil
}

func keyIDFromBytes(b [8]byte) uint64 {
	return binary.BigEndian.Uint64(b[:])
}

// KeyIDUint64 returns a Key ID's conventional big-endian numeric form,
// the way implementations print it in diagnostics (e.g. "Key ID:
// 0123456789ABCDEF").
func KeyIDUint64(b [8]byte) uint64 {
	return keyIDFromBytes(b)
}
