package openpgp

import (
	"bytes"
	"testing"
)

func TestIPDPRoundTripEmptyPayload(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	p, err := EncryptIPDP(key, CipherAES128, nil)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	// blockSize(16) prefix + 2 repeat octets + 22-octet MDC trailer, no payload.
	wantLen := 16 + 2 + 22
	if len(p.Ciphertext) != wantLen {
		t.Fatalf("got ciphertext length %d, want %d", len(p.Ciphertext), wantLen)
	}
	got, err := DecryptIPDP(p, key, CipherAES128)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got payload %x, want empty", got)
	}
}

func TestIPDPRoundTripWithPayload(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, 16)
	payload := []byte("the quick brown fox jumps over the lazy dog")
	p, err := EncryptIPDP(key, CipherAES128, payload)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := DecryptIPDP(p, key, CipherAES128)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestIPDPBitFlipFailsIntegrityCheck(t *testing.T) {
	key := bytes.Repeat([]byte{0x13}, 16)
	p, err := EncryptIPDP(key, CipherAES128, []byte("tamper me"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	corrupt := append([]byte(nil), p.Ciphertext...)
	corrupt[len(corrupt)-1] ^= 0x01
	_, err = DecryptIPDP(&IPDPPacket{Ciphertext: corrupt}, key, CipherAES128)
	if !IsCategory(err, CategoryIntegrityCheckFailed) {
		t.Fatalf("expected IntegrityCheckFailedError, got %v", err)
	}
}

func TestIPDPPrefixQuickCheckFailureIsIndistinguishable(t *testing.T) {
	key := bytes.Repeat([]byte{0x55}, 16)
	p, err := EncryptIPDP(key, CipherAES128, []byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	corrupt := append([]byte(nil), p.Ciphertext...)
	corrupt[0] ^= 0x01 // corrupts the prefix, not the MDC
	_, err1 := DecryptIPDP(&IPDPPacket{Ciphertext: corrupt}, key, CipherAES128)

	corrupt2 := append([]byte(nil), p.Ciphertext...)
	corrupt2[len(corrupt2)-1] ^= 0x01 // corrupts the MDC digest
	_, err2 := DecryptIPDP(&IPDPPacket{Ciphertext: corrupt2}, key, CipherAES128)

	if err1 == nil || err2 == nil {
		t.Fatalf("expected both corruptions to fail")
	}
	if err1.Error() != err2.Error() {
		t.Fatalf("quick-check and MDC failures must be indistinguishable: %v vs %v", err1, err2)
	}
}

func TestDecodeIPDPPacketRejectsWrongVersion(t *testing.T) {
	_, err := DecodeIPDPPacket([]byte{0x02, 0xAA})
	if !IsCategory(err, CategoryMalformed) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
}

func TestDecodeMDCPacketWrongLength(t *testing.T) {
	_, err := DecodeMDCPacket(make([]byte, 19))
	if !IsCategory(err, CategoryMalformed) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
}

func TestIPDPPacketEncodeBodyFraming(t *testing.T) {
	p := &IPDPPacket{Ciphertext: []byte{0xAA, 0xBB}}
	body, err := p.EncodeBody(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x01, 0xAA, 0xBB}
	if !bytes.Equal(body, want) {
		t.Fatalf("got %x, want %x", body, want)
	}
}
