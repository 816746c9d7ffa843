package openpgp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
)

// PKMaterial is the algorithm-dispatched public-key material carried
// inside a PublicKeyPacket or SecretKeyPacket. It is a closed set:
// RSA, ElGamal, DSA.
type PKMaterial interface {
	Algo() PublicKeyAlgorithm
	encode(dst []byte) ([]byte, error)
}

// RSAMaterial holds an RSA public key's two MPI fields.
type RSAMaterial struct {
	N, E *MPI
}

func (m *RSAMaterial) Algo() PublicKeyAlgorithm { return PubKeyAlgoRSA }

func (m *RSAMaterial) encode(dst []byte) ([]byte, error) {
	var err error
	if dst, err = m.N.Encode(dst); err != nil {
		return nil, err
	}
	return m.E.Encode(dst)
}

// ElGamalMaterial holds an ElGamal public key's three MPI fields.
type ElGamalMaterial struct {
	P, G, Y *MPI
}

func (m *ElGamalMaterial) Algo() PublicKeyAlgorithm { return PubKeyAlgoElGamal }

func (m *ElGamalMaterial) encode(dst []byte) ([]byte, error) {
	var err error
	if dst, err = m.P.Encode(dst); err != nil {
		return nil, err
	}
	if dst, err = m.G.Encode(dst); err != nil {
		return nil, err
	}
	return m.Y.Encode(dst)
}

// DSAMaterial holds a DSA public key's four MPI fields.
type DSAMaterial struct {
	P, Q, G, Y *MPI
}

func (m *DSAMaterial) Algo() PublicKeyAlgorithm { return PubKeyAlgoDSA }

func (m *DSAMaterial) encode(dst []byte) ([]byte, error) {
	var err error
	for _, f := range []*MPI{m.P, m.Q, m.G, m.Y} {
		if dst, err = f.Encode(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func decodePKMaterial(algo PublicKeyAlgorithm, body []byte) (PKMaterial, []byte, error) {
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		n, rest, err := DecodeMPI(body)
		if err != nil {
			return nil, nil, err
		}
		e, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, nil, err
		}
		return &RSAMaterial{N: n, E: e}, rest, nil
	case PubKeyAlgoElGamal:
		p, rest, err := DecodeMPI(body)
		if err != nil {
			return nil, nil, err
		}
		g, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, nil, err
		}
		y, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, nil, err
		}
		return &ElGamalMaterial{P: p, G: g, Y: y}, rest, nil
	case PubKeyAlgoDSA:
		p, rest, err := DecodeMPI(body)
		if err != nil {
			return nil, nil, err
		}
		q, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, nil, err
		}
		g, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, nil, err
		}
		y, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, nil, err
		}
		return &DSAMaterial{P: p, Q: q, G: g, Y: y}, rest, nil
	default:
		return nil, nil, UnknownAlgorithmError("public-key", int(algo), []int{
			int(PubKeyAlgoRSA), int(PubKeyAlgoRSAEncryptOnly), int(PubKeyAlgoRSASignOnly),
			int(PubKeyAlgoElGamal), int(PubKeyAlgoDSA),
		})
	}
}

// PublicKeyPacket is a version-4 Public-Key packet (tag 6) or, when
// embedded inside a SecretKeyPacket, the public portion of a
// Secret-Key packet (tag 5). Only version 4 is in scope.
type PublicKeyPacket struct {
	CreatedAt   uint32
	Algo        PublicKeyAlgorithm
	Material    PKMaterial
	KeyID       [8]byte
	Fingerprint [20]byte
}

func (p *PublicKeyPacket) Tag() int { return 6 }

// encodeMaterialBody returns version || created || algo || material,
// i.e. the body of a bare Public-Key packet, which also doubles as the
// hash input for the v4 fingerprint.
func (p *PublicKeyPacket) encodeMaterialBody() ([]byte, error) {
	body := make([]byte, 0, 6)
	body = append(body, 0x04)
	var created [4]byte
	binary.BigEndian.PutUint32(created[:], p.CreatedAt)
	body = append(body, created[:]...)
	body = append(body, byte(p.Algo))
	return p.Material.encode(body)
}

func (p *PublicKeyPacket) EncodeBody(dst []byte) ([]byte, error) {
	body, err := p.encodeMaterialBody()
	if err != nil {
		return nil, err
	}
	return append(dst, body...), nil
}

// computeFingerprint fills in KeyID and Fingerprint from the packet's
// already-decoded fields: SHA-1 of
// 0x99 || two-octet length || version || created || algo || material.
func (p *PublicKeyPacket) computeFingerprint() error {
	body, err := p.encodeMaterialBody()
	if err != nil {
		return err
	}
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	sum := h.Sum(nil)
	copy(p.Fingerprint[:], sum)
	copy(p.KeyID[:], sum[12:20])
	return nil
}

// DecodePublicKeyPacket decodes a version-4 Public-Key packet body.
func DecodePublicKeyPacket(body []byte) (*PublicKeyPacket, error) {
	if len(body) < 6 {
		return nil, MalformedError("public-key packet truncated")
	}
	if body[0] != 0x04 {
		return nil, MalformedError("unsupported public-key packet version (only v4 is supported)")
	}
	p := &PublicKeyPacket{
		CreatedAt: binary.BigEndian.Uint32(body[1:5]),
		Algo:      PublicKeyAlgorithm(body[5]),
	}
	material, rest, err := decodePKMaterial(p.Algo, body[6:])
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, MalformedError("trailing data after public-key material")
	}
	p.Material = material
	if err := p.computeFingerprint(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPublicKeyPacket builds a PublicKeyPacket from caller-supplied
// fields, computing KeyID and Fingerprint.
func NewPublicKeyPacket(createdAt uint32, material PKMaterial) (*PublicKeyPacket, error) {
	p := &PublicKeyPacket{CreatedAt: createdAt, Algo: material.Algo(), Material: material}
	if err := p.computeFingerprint(); err != nil {
		return nil, err
	}
	return p, nil
}

// SecretKeyPacket is a version-4 Secret-Key packet (tag 5).
// s2kUsage selects how SecretMaterial is protected:
//
//	0:       unencrypted; SecretMaterial is plaintext MPIs plus a
//	         trailing two-octet additive checksum.
//	254:     encrypted; EncryptedBlob holds ciphertext whose last 20
//	         octets are a SHA-1 of the plaintext.
//	255/sym: encrypted; EncryptedBlob holds ciphertext whose last 2
//	         octets are the additive checksum of the plaintext.
type SecretKeyPacket struct {
	Public *PublicKeyPacket

	S2KUsage int
	SymAlgo  CipherFunction
	S2K      *S2K
	IV       []byte

	// SecretMaterial holds the decoded MPIs when S2KUsage == 0.
	SecretMaterial []*MPI
	// EncryptedBlob holds the raw ciphertext (MPIs + trailer, still
	// encrypted) when S2KUsage != 0.
	EncryptedBlob []byte
}

func (p *SecretKeyPacket) Tag() int { return 5 }

func (p *SecretKeyPacket) EncodeBody(dst []byte) ([]byte, error) {
	pubBody, err := p.Public.encodeMaterialBody()
	if err != nil {
		return nil, err
	}
	dst = append(dst, pubBody...)
	dst = append(dst, byte(p.S2KUsage))

	switch p.S2KUsage {
	case 0:
		dst, err = encodeSecretMPIs(dst, p.SecretMaterial)
		return dst, err
	case 254, 255:
		dst = append(dst, byte(p.SymAlgo))
		if dst, err = p.S2K.Encode(dst); err != nil {
			return nil, err
		}
		dst = append(dst, p.IV...)
		dst = append(dst, p.EncryptedBlob...)
		return dst, nil
	default:
		// Direct symmetric algorithm id (legacy, s2kUsage == sym algo):
		// the usage octet already names the cipher.
		if dst, err = p.S2K.Encode(dst); err != nil {
			return nil, err
		}
		dst = append(dst, p.IV...)
		dst = append(dst, p.EncryptedBlob...)
		return dst, nil
	}
}

func encodeSecretMPIs(dst []byte, mpis []*MPI) ([]byte, error) {
	start := len(dst)
	var err error
	for _, m := range mpis {
		if dst, err = m.Encode(dst); err != nil {
			return nil, err
		}
	}
	return AppendChecksum(dst, dst[start:]), nil
}

// secretFieldCount returns how many MPIs the secret half of a key of
// the given public algorithm carries, per RFC 4880 section 5.5.3.
func secretFieldCount(algo PublicKeyAlgorithm) (int, error) {
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		return 4, nil // d, p, q, u
	case PubKeyAlgoElGamal:
		return 1, nil // x
	case PubKeyAlgoDSA:
		return 1, nil // x
	default:
		return 0, UnknownAlgorithmError("public-key", int(algo), []int{
			int(PubKeyAlgoRSA), int(PubKeyAlgoElGamal), int(PubKeyAlgoDSA),
		})
	}
}

// DecodeSecretKeyPacket decodes a version-4 Secret-Key packet body. The
// length of the embedded Public-Key portion is found by decoding it
// with decodePublicKeyPrefix, which shares the material decoder with
// DecodePublicKeyPacket.
func DecodeSecretKeyPacket(body []byte) (*SecretKeyPacket, error) {
	pub, pubLen, err := decodePublicKeyPrefix(body)
	if err != nil {
		return nil, err
	}
	if len(body) <= pubLen {
		return nil, MalformedError("secret-key packet missing s2k_usage octet")
	}
	rest := body[pubLen:]
	usage := int(rest[0])
	rest = rest[1:]

	sk := &SecretKeyPacket{Public: pub, S2KUsage: usage}

	switch usage {
	case 0:
		n, err := secretFieldCount(pub.Algo)
		if err != nil {
			return nil, err
		}
		mpis := make([]*MPI, 0, n)
		for i := 0; i < n; i++ {
			var m *MPI
			m, rest, err = DecodeMPI(rest)
			if err != nil {
				return nil, err
			}
			mpis = append(mpis, m)
		}
		if len(rest) != 2 {
			return nil, MalformedError("secret-key plaintext checksum trailer malformed")
		}
		encoded := body[pubLen+1 : len(body)-2]
		want := binary.BigEndian.Uint16(rest)
		if Checksum(encoded) != want {
			return nil, ChecksumMismatchError("secret-key plaintext checksum mismatch")
		}
		sk.SecretMaterial = mpis
		return sk, nil

	case 254, 255:
		if len(rest) < 1 {
			return nil, MalformedError("secret-key s2k header truncated")
		}
		sk.SymAlgo = CipherFunction(rest[0])
		rest = rest[1:]
		s2k, rest2, err := DecodeS2K(rest)
		if err != nil {
			return nil, err
		}
		rest = rest2
		sk.S2K = s2k
		blockSize := sk.SymAlgo.BlockSize()
		if blockSize == 0 {
			blockSize = 16
		}
		if len(rest) < blockSize {
			return nil, MalformedError("secret-key IV truncated")
		}
		sk.IV = append([]byte(nil), rest[:blockSize]...)
		sk.EncryptedBlob = append([]byte(nil), rest[blockSize:]...)
		return sk, nil

	default:
		// Legacy form: usage byte IS a cipher algorithm id directly.
		sk.SymAlgo = CipherFunction(usage)
		s2k, rest2, err := DecodeS2K(rest)
		if err != nil {
			return nil, err
		}
		rest = rest2
		sk.S2K = s2k
		blockSize := sk.SymAlgo.BlockSize()
		if blockSize == 0 {
			blockSize = 16
		}
		if len(rest) < blockSize {
			return nil, MalformedError("secret-key IV truncated")
		}
		sk.IV = append([]byte(nil), rest[:blockSize]...)
		sk.EncryptedBlob = append([]byte(nil), rest[blockSize:]...)
		return sk, nil
	}
}

// decodePublicKeyPrefix decodes the Public-Key portion at the front of
// a Secret-Key packet body and reports how many octets it consumed.
func decodePublicKeyPrefix(body []byte) (*PublicKeyPacket, int, error) {
	if len(body) < 6 {
		return nil, 0, MalformedError("secret-key packet truncated")
	}
	if body[0] != 0x04 {
		return nil, 0, MalformedError("unsupported secret-key packet version (only v4 is supported)")
	}
	p := &PublicKeyPacket{
		CreatedAt: binary.BigEndian.Uint32(body[1:5]),
		Algo:      PublicKeyAlgorithm(body[5]),
	}
	material, rest, err := decodePKMaterial(p.Algo, body[6:])
	if err != nil {
		return nil, 0, err
	}
	p.Material = material
	if err := p.computeFingerprint(); err != nil {
		return nil, 0, err
	}
	consumed := len(body) - len(rest)
	return p, consumed, nil
}

// DecryptSecretMaterial decrypts an s2kUsage-254 or -255 SecretKeyPacket
// with passphrase, verifying the embedded integrity trailer, and
// returns the plaintext MPIs. It fails with UnsupportedError if
// SymAlgo isn't one of the supported AES variants, and with
// ChecksumMismatchError if the trailer doesn't match (which, for a
// usage-254 packet, is also how a wrong passphrase is detected, since a
// wrong key decrypts to garbage that very likely fails the check).
func (p *SecretKeyPacket) DecryptSecretMaterial(passphrase []byte) ([]*MPI, error) {
	if p.S2KUsage == 0 {
		return p.SecretMaterial, nil
	}
	keySize := p.SymAlgo.KeySize()
	if keySize == 0 {
		return nil, UnsupportedError("secret-key symmetric algorithm")
	}
	key, err := p.S2K.DeriveKey(passphrase, keySize)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	plain := append([]byte(nil), p.EncryptedBlob...)
	stream := cipher.NewCFBDecrypter(block, p.IV)
	stream.XORKeyStream(plain, plain)

	switch p.S2KUsage {
	case 254:
		if len(plain) < sha1.Size {
			return nil, MalformedError("secret-key SHA-1 trailer truncated")
		}
		data, trailer := plain[:len(plain)-sha1.Size], plain[len(plain)-sha1.Size:]
		sum := sha1.Sum(data)
		if subtle.ConstantTimeCompare(sum[:], trailer) != 1 {
			return nil, ChecksumMismatchError("secret-key SHA-1 trailer mismatch")
		}
		return decodeSecretMPIs(p.Public.Algo, data)
	default: // 255 or legacy direct-algo usage
		if len(plain) < 2 {
			return nil, MalformedError("secret-key checksum trailer truncated")
		}
		data, trailer := plain[:len(plain)-2], plain[len(plain)-2:]
		want := binary.BigEndian.Uint16(trailer)
		if Checksum(data) != want {
			return nil, ChecksumMismatchError("secret-key checksum mismatch")
		}
		return decodeSecretMPIs(p.Public.Algo, data)
	}
}

func decodeSecretMPIs(algo PublicKeyAlgorithm, data []byte) ([]*MPI, error) {
	n, err := secretFieldCount(algo)
	if err != nil {
		return nil, err
	}
	mpis := make([]*MPI, 0, n)
	rest := data
	for i := 0; i < n; i++ {
		var m *MPI
		m, rest, err = DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		mpis = append(mpis, m)
	}
	return mpis, nil
}
