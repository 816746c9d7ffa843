package openpgp

import (
	"crypto/rand"
	"io"
	"math/big"
)

// WrapSessionKeyElGamal takes a recipient ElGamal public key, a chosen
// symmetric algorithm, and a session key, and builds the wrapped blob
// W = algo || key || checksum(key), EME-PKCS1-v1.5 encodes it to the
// modulus byte length, and ElGamal-encrypts it, returning a finished
// PKESKPacket addressed to recipientKeyID.
//
// Both the non-zero EME padding octets and the ephemeral exponent x are
// drawn from rnd, which must be a cryptographic source.
func WrapSessionKeyElGamal(rnd io.Reader, recipientKeyID [8]byte, pub *ElGamalMaterial, cipherFunc CipherFunction, key []byte) (*PKESKPacket, error) {
	if cipherFunc.KeySize() != len(key) {
		return nil, InvalidArgumentError("session key length does not match cipher")
	}

	w := make([]byte, 0, 1+len(key)+2)
	w = append(w, byte(cipherFunc))
	w = append(w, key...)
	w = AppendChecksum(w, key)

	p := new(big.Int).SetBytes(pub.P.Bytes())
	g := new(big.Int).SetBytes(pub.G.Bytes())
	y := new(big.Int).SetBytes(pub.Y.Bytes())

	k := pub.P.ByteLen()
	em, err := padEME(rnd, w, k)
	if err != nil {
		return nil, err
	}
	m := new(big.Int).SetBytes(em)
	if m.Cmp(p) >= 0 {
		return nil, InvalidArgumentError("padded message is not smaller than the modulus")
	}

	x, err := randomExponent(rnd, p)
	if err != nil {
		return nil, err
	}

	c1 := new(big.Int).Exp(g, x, p)
	c2 := new(big.Int).Mul(m, new(big.Int).Exp(y, x, p))
	c2.Mod(c2, p)

	return &PKESKPacket{
		KeyID:      recipientKeyID,
		Algo:       PubKeyAlgoElGamal,
		Ciphertext: []*MPI{NewMPI(c1.Bytes()), NewMPI(c2.Bytes())},
	}, nil
}

// randomExponent draws a uniform x with 1 < x < p-1, using rnd.
func randomExponent(rnd io.Reader, p *big.Int) (*big.Int, error) {
	pMinus3 := new(big.Int).Sub(p, big.NewInt(3))
	if pMinus3.Sign() <= 0 {
		return nil, InvalidArgumentError("modulus too small for ElGamal")
	}
	// crypto/rand.Int returns a uniform value in [0, max); with max =
	// p-3, shifting by 2 gives a uniform value in [2, p-1), i.e.
	// 1 < x < p-1.
	n, err := rand.Int(rnd, pMinus3)
	if err != nil {
		return nil, err
	}
	return n.Add(n, big.NewInt(2)), nil
}

// UnwrapSessionKeyElGamal is the inverse of WrapSessionKeyElGamal: given
// the recipient's ElGamal private exponent x and the PKESK's
// ciphertext, it recovers the cipher function and session key,
// verifying the embedded checksum. It returns UnsupportedError if the
// packet isn't addressed to an ElGamal key, and PaddingErrorValue (via
// UnpadEME) or ChecksumMismatchError on a corrupt unwrap.
func UnwrapSessionKeyElGamal(pkesk *PKESKPacket, p *big.Int, x *big.Int) (CipherFunction, []byte, error) {
	if pkesk.Algo != PubKeyAlgoElGamal {
		return 0, nil, UnsupportedError("PKESK is not addressed to an ElGamal key")
	}
	if len(pkesk.Ciphertext) != 2 {
		return 0, nil, MalformedError("ElGamal PKESK must carry exactly two MPIs")
	}
	c1 := new(big.Int).SetBytes(pkesk.Ciphertext[0].Bytes())
	c2 := new(big.Int).SetBytes(pkesk.Ciphertext[1].Bytes())

	// m = c2 * (c1^x)^-1 mod p
	s := new(big.Int).Exp(c1, x, p)
	sInv := new(big.Int).ModInverse(s, p)
	if sInv == nil {
		return 0, nil, InvalidArgumentError("ElGamal ciphertext is not invertible modulo p")
	}
	m := new(big.Int).Mul(c2, sInv)
	m.Mod(m, p)

	k := byteLenOf(p)
	em := m.Bytes()
	if len(em) < k {
		padded := make([]byte, k)
		copy(padded[k-len(em):], em)
		em = padded
	}

	w, err := UnpadEME(em, k)
	if err != nil {
		return 0, nil, err
	}
	if len(w) < 3 {
		return 0, nil, PaddingErrorValue("EME-PKCS1-v1.5 decode failed")
	}
	cipherFunc := CipherFunction(w[0])
	keyAndChecksum := w[1:]
	key, checksum := keyAndChecksum[:len(keyAndChecksum)-2], keyAndChecksum[len(keyAndChecksum)-2:]
	want := uint16(checksum[0])<<8 | uint16(checksum[1])
	if Checksum(key) != want {
		return 0, nil, ChecksumMismatchError("ElGamal session-key checksum mismatch")
	}
	return cipherFunc, key, nil
}

func byteLenOf(n *big.Int) int {
	return (n.BitLen() + 7) / 8
}
