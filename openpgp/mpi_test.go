package openpgp

import "bytes"

import "testing"

func TestDecodeMPISingleOctetOneBit(t *testing.T) {
	m, rest, err := DecodeMPI([]byte{0x00, 0x01, 0x01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(m.Bytes(), []byte{0x01}) {
		t.Fatalf("got magnitude %x", m.Bytes())
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remainder, got %x", rest)
	}
	if m.BitLen() != 1 {
		t.Fatalf("expected bit length 1, got %d", m.BitLen())
	}
}

func TestDecodeMPITwoOctetMagnitude(t *testing.T) {
	m, rest, err := DecodeMPI([]byte{0x00, 0x09, 0x01, 0xFF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(m.Bytes(), []byte{0x01, 0xFF}) {
		t.Fatalf("got magnitude %x", m.Bytes())
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remainder, got %x", rest)
	}
}

func TestEncodeMPITwoOctetMagnitude(t *testing.T) {
	m := NewMPI([]byte{0x01, 0xFF})
	enc, err := m.Encode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x00, 0x09, 0x01, 0xFF}
	if !bytes.Equal(enc, want) {
		t.Fatalf("got %x, want %x", enc, want)
	}
}

func TestChecksumAdditiveSum(t *testing.T) {
	got := Checksum([]byte{0x01, 0x02, 0x03})
	if got != 0x0006 {
		t.Fatalf("got %04x, want 0006", got)
	}
}

func TestMPIZeroLengthDecodesEmpty(t *testing.T) {
	m, rest, err := DecodeMPI([]byte{0x00, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Bytes()) != 0 {
		t.Fatalf("expected empty magnitude, got %x", m.Bytes())
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remainder, got %x", rest)
	}
}

func TestMPIRoundTripAllBitLengths(t *testing.T) {
	for l := 1; l <= 64; l++ {
		numBytes := (l + 7) / 8
		b := make([]byte, numBytes)
		topBit := (l - 1) % 8
		b[0] = 1 << uint(topBit)
		m := NewMPI(b)
		if m.BitLen() != l {
			t.Fatalf("bit length %d: got declared length %d", l, m.BitLen())
		}
		enc, err := m.Encode(nil)
		if err != nil {
			t.Fatalf("bit length %d: encode error: %v", l, err)
		}
		decoded, rest, err := DecodeMPI(enc)
		if err != nil {
			t.Fatalf("bit length %d: decode error: %v", l, err)
		}
		if len(rest) != 0 {
			t.Fatalf("bit length %d: unexpected remainder %x", l, rest)
		}
		if !bytes.Equal(decoded.Bytes(), b) {
			t.Fatalf("bit length %d: got %x, want %x", l, decoded.Bytes(), b)
		}
	}
}

func TestDecodeMPIRejectsOverLengthLeadingBits(t *testing.T) {
	// Declares a 1-bit length but the octet has bit 1 set too.
	_, _, err := DecodeMPI([]byte{0x00, 0x01, 0x03})
	if !IsCategory(err, CategoryMalformed) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
}

func TestDecodeMPITruncated(t *testing.T) {
	_, _, err := DecodeMPI([]byte{0x00, 0x10, 0x01})
	if !IsCategory(err, CategoryMalformed) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
}

func TestEMEPaddingRoundTrip(t *testing.T) {
	msg := []byte{0x09, 0xDE, 0xAD, 0xBE, 0xEF}
	em, err := PadEME(msg, 128)
	if err != nil {
		t.Fatalf("pad: %v", err)
	}
	if len(em) != 128 {
		t.Fatalf("got length %d, want 128", len(em))
	}
	got, err := UnpadEME(em, 128)
	if err != nil {
		t.Fatalf("unpad: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("got %x, want %x", got, msg)
	}
}

func TestEMEPaddingRejectsZeroInPS(t *testing.T) {
	em := make([]byte, 32)
	em[0] = 0x00
	em[1] = 0x02
	// PS contains an embedded zero followed by more non-zero data
	// before the real separator; the scan must treat the first zero as
	// the separator and the remainder won't parse as the sender meant,
	// but more importantly a properly-formed decoder must never accept
	// padding shorter than 8 octets.
	for i := 2; i < 9; i++ {
		em[i] = 0 // too-short PS: separator appears immediately
	}
	em[9] = 0xAB
	_, err := UnpadEME(em, 32)
	if !IsCategory(err, CategoryPaddingError) {
		t.Fatalf("expected PaddingError, got %v", err)
	}
}

func TestEMEPaddingTooLong(t *testing.T) {
	_, err := PadEME(make([]byte, 100), 64)
	if !IsCategory(err, CategoryInvalidArgument) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
}
