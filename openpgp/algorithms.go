package openpgp

// PublicKeyAlgorithm identifies an RFC 4880 section 9.1 public-key
// algorithm id.
type PublicKeyAlgorithm uint8

// RFC 4880, section 9.1.
const (
	PubKeyAlgoRSA            PublicKeyAlgorithm = 1
	PubKeyAlgoRSAEncryptOnly PublicKeyAlgorithm = 2
	PubKeyAlgoRSASignOnly    PublicKeyAlgorithm = 3
	PubKeyAlgoElGamal        PublicKeyAlgorithm = 16
	PubKeyAlgoDSA            PublicKeyAlgorithm = 17
)

var pubKeyAlgoNames = map[PublicKeyAlgorithm]string{
	PubKeyAlgoRSA:            "RSA",
	PubKeyAlgoRSAEncryptOnly: "RSA (encrypt only)",
	PubKeyAlgoRSASignOnly:    "RSA (sign only)",
	PubKeyAlgoElGamal:        "ElGamal",
	PubKeyAlgoDSA:            "DSA",
}

func (a PublicKeyAlgorithm) known() bool {
	_, ok := pubKeyAlgoNames[a]
	return ok
}

func (a PublicKeyAlgorithm) String() string {
	if name, ok := pubKeyAlgoNames[a]; ok {
		return name
	}
	if a >= 100 && a <= 110 {
		return "private/experimental"
	}
	return "unknown"
}

// CipherFunction identifies an RFC 4880 section 9.2 symmetric cipher
// id. Only the AES family is implemented; other ids are recognized for
// diagnostics but rejected as Unsupported at encrypt/decrypt time.
type CipherFunction uint8

const (
	CipherAES128 CipherFunction = 7
	CipherAES192 CipherFunction = 8
	CipherAES256 CipherFunction = 9
)

var cipherKeySizes = map[CipherFunction]int{
	CipherAES128: 16,
	CipherAES192: 24,
	CipherAES256: 32,
}

// KeySize returns the session-key length in octets for a supported
// cipher, or 0 if unsupported.
func (c CipherFunction) KeySize() int {
	return cipherKeySizes[c]
}

// BlockSize returns the cipher's block size in octets. All ciphers
// this package supports (the AES family) use 16-octet blocks.
func (c CipherFunction) BlockSize() int {
	if _, ok := cipherKeySizes[c]; ok {
		return 16
	}
	return 0
}

// IsSupported reports whether this package can encrypt/decrypt with c.
func (c CipherFunction) IsSupported() bool {
	return c.KeySize() != 0
}

// HashAlgorithm identifies an RFC 4880 section 9.4 hash algorithm id,
// used by the S2K specifier.
type HashAlgorithm uint8

const (
	HashMD5       HashAlgorithm = 1
	HashSHA1      HashAlgorithm = 2
	HashRIPEMD160 HashAlgorithm = 3
	HashSHA256    HashAlgorithm = 8
	HashSHA384    HashAlgorithm = 9
	HashSHA512    HashAlgorithm = 10
	HashSHA224    HashAlgorithm = 11
)

var hashAlgoNames = map[HashAlgorithm]string{
	HashMD5:       "MD5",
	HashSHA1:      "SHA-1",
	HashRIPEMD160: "RIPEMD-160",
	HashSHA256:    "SHA-256",
	HashSHA384:    "SHA-384",
	HashSHA512:    "SHA-512",
	HashSHA224:    "SHA-224",
}

func (h HashAlgorithm) String() string {
	if name, ok := hashAlgoNames[h]; ok {
		return name
	}
	return "unknown"
}

// CompressionAlgorithm identifies an RFC 4880 section 9.3 compression
// algorithm id. Compressed-data packets are out of scope for this
// package; only the id constants are defined, and nothing in this
// package decodes, names or validates a compression id.
type CompressionAlgorithm uint8

const (
	CompressionNone CompressionAlgorithm = 0
	CompressionZIP  CompressionAlgorithm = 1
	CompressionZLIB CompressionAlgorithm = 2
	CompressionBZIP CompressionAlgorithm = 3
)

// isPrivateOrExperimental reports whether id falls in the RFC 4880
// section 9 reserved private/experimental range, which carries no
// defined semantics in this library.
func isPrivateOrExperimental(id int) bool {
	return id >= 100 && id <= 110
}
