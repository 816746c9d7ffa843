package openpgp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
)

// IPDPPacket is a version-1 Sym. Encrypted Integrity Protected Data
// packet (tag 18). Ciphertext is the AES-CFB-encrypted form of
// random_prefix || prefix_repeat || payload || mdc_packet, as built by
// EncryptIPDP and consumed by DecryptIPDP.
type IPDPPacket struct {
	Ciphertext []byte
}

func (p *IPDPPacket) Tag() int { return 18 }

func (p *IPDPPacket) EncodeBody(dst []byte) ([]byte, error) {
	dst = append(dst, 0x01)
	return append(dst, p.Ciphertext...), nil
}

// DecodeIPDPPacket decodes an IPDP packet body: 0x01 || ciphertext.
func DecodeIPDPPacket(body []byte) (*IPDPPacket, error) {
	if len(body) < 1 {
		return nil, MalformedError("IPDP packet truncated")
	}
	if body[0] != 0x01 {
		return nil, MalformedError("unsupported IPDP version (only v1 is supported)")
	}
	return &IPDPPacket{Ciphertext: append([]byte(nil), body[1:]...)}, nil
}

// MDCPacket is a Modification Detection Code packet (tag 19): always
// exactly a 20-octet SHA-1 digest, with no internal length prefix.
type MDCPacket struct {
	Digest [20]byte
}

func (p *MDCPacket) Tag() int { return 19 }

func (p *MDCPacket) EncodeBody(dst []byte) ([]byte, error) {
	return append(dst, p.Digest[:]...), nil
}

// DecodeMDCPacket decodes an MDC packet body.
func DecodeMDCPacket(body []byte) (*MDCPacket, error) {
	if len(body) != 20 {
		return nil, MalformedError("MDC packet must be exactly 20 octets")
	}
	m := &MDCPacket{}
	copy(m.Digest[:], body)
	return m, nil
}

// mdcFraming is the fixed new-format tag+length header for a bare MDC
// packet, which always has a 20-octet body (0xD3 is tag 19 new-format,
// 0x14 is the one-octet length 20).
var mdcFraming = [2]byte{0xD3, 0x14}

// EncryptIPDP wraps payload (already-serialized inner packets) in a
// randomized prefix and a trailing MDC packet, then AES-CFB encrypts
// the whole thing with a zero IV and no resync, returning the finished
// IPDPPacket.
func EncryptIPDP(key []byte, cipherFunc CipherFunction, payload []byte) (*IPDPPacket, error) {
	if !cipherFunc.IsSupported() || cipherFunc.KeySize() != len(key) {
		return nil, UnsupportedError("IPDP cipher/key size mismatch")
	}
	blockSize := cipherFunc.BlockSize()

	prefix := make([]byte, blockSize+2)
	if _, err := rand.Read(prefix[:blockSize]); err != nil {
		return nil, err
	}
	prefix[blockSize] = prefix[blockSize-2]
	prefix[blockSize+1] = prefix[blockSize-1]

	plaintext := make([]byte, 0, len(prefix)+len(payload)+22)
	plaintext = append(plaintext, prefix...)
	plaintext = append(plaintext, payload...)

	h := sha1.New()
	h.Write(plaintext)
	h.Write(mdcFraming[:])
	digest := h.Sum(nil)

	plaintext = append(plaintext, mdcFraming[0], mdcFraming[1])
	plaintext = append(plaintext, digest...)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, blockSize)
	stream := cipher.NewCFBEncrypter(block, iv)
	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)

	return &IPDPPacket{Ciphertext: ciphertext}, nil
}

// DecryptIPDP AES-CFB decrypts p.Ciphertext with a zero IV, verifies
// the prefix-repeat quick-check and the trailing MDC digest, and
// returns the inner payload bytes. Both failure modes return the same
// IntegrityCheckFailedError so a caller cannot distinguish which check
// failed.
func DecryptIPDP(p *IPDPPacket, key []byte, cipherFunc CipherFunction) ([]byte, error) {
	if !cipherFunc.IsSupported() || cipherFunc.KeySize() != len(key) {
		return nil, UnsupportedError("IPDP cipher/key size mismatch")
	}
	blockSize := cipherFunc.BlockSize()
	if len(p.Ciphertext) < blockSize+2+22 {
		return nil, IntegrityCheckFailedError()
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, blockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	plaintext := make([]byte, len(p.Ciphertext))
	stream.XORKeyStream(plaintext, p.Ciphertext)

	if plaintext[blockSize-2] != plaintext[blockSize] || plaintext[blockSize-1] != plaintext[blockSize+1] {
		return nil, IntegrityCheckFailedError()
	}

	trailerStart := len(plaintext) - 22
	trailer := plaintext[trailerStart:]
	if trailer[0] != mdcFraming[0] || trailer[1] != mdcFraming[1] {
		return nil, IntegrityCheckFailedError()
	}
	h := sha1.New()
	h.Write(plaintext[:trailerStart+2])
	digest := h.Sum(nil)
	if subtle.ConstantTimeCompare(digest, trailer[2:]) != 1 {
		return nil, IntegrityCheckFailedError()
	}

	return plaintext[blockSize+2 : trailerStart], nil
}
