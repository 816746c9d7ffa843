package openpgp

import (
	"bytes"
	"io"
	"testing"
)

func TestWritePacketNewFormatRoundTrip(t *testing.T) {
	body := []byte("hello, world")
	var buf bytes.Buffer
	if err := WritePacket(&buf, 11, body); err != nil {
		t.Fatalf("write: %v", err)
	}
	pkt, err := NewReader(bytes.NewReader(buf.Bytes())).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if pkt.Tag.TagID != 11 || !pkt.Tag.NewFormat {
		t.Fatalf("got tag %+v", pkt.Tag)
	}
	if !bytes.Equal(pkt.Body(), body) {
		t.Fatalf("got body %q, want %q", pkt.Body(), body)
	}
}

func TestLiteralDataPacketRoundTrip(t *testing.T) {
	lit := &LiteralDataPacket{Format: 'b', FileName: nil, ModTime: 0, Data: []byte("hi")}
	encoded, err := Emit(lit)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := []byte{0xCB, 0x08, 0x62, 0x00, 0x00, 0x00, 0x00, 0x00, 'h', 'i'}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("got %x, want %x", encoded, want)
	}

	pkt, err := NewReader(bytes.NewReader(encoded)).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	kind, err := pkt.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := kind.(*LiteralDataPacket)
	if !ok {
		t.Fatalf("got %T", kind)
	}
	if got.Format != 'b' || !bytes.Equal(got.Data, []byte("hi")) {
		t.Fatalf("got %+v", got)
	}
}

func TestReadAllMultiplePackets(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePacket(&buf, 11, mustEncode(t, &LiteralDataPacket{Format: 'b', Data: []byte("a")})); err != nil {
		t.Fatalf("write 1: %v", err)
	}
	if err := WritePacket(&buf, 11, mustEncode(t, &LiteralDataPacket{Format: 'b', Data: []byte("b")})); err != nil {
		t.Fatalf("write 2: %v", err)
	}
	packets, err := ReadAll(buf.Bytes())
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("got %d packets, want 2", len(packets))
	}
}

func mustEncode(t *testing.T, lit *LiteralDataPacket) []byte {
	t.Helper()
	body, err := lit.EncodeBody(nil)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return body
}

func TestPartialLengthStreamReassembly(t *testing.T) {
	var buf bytes.Buffer
	chunks := [][]byte{
		bytes.Repeat([]byte{0xAA}, 1),
		bytes.Repeat([]byte{0xBB}, 2),
		[]byte{0xCC},
	}
	if err := WritePacketChunks(&buf, 11, chunks); err != nil {
		t.Fatalf("write chunks: %v", err)
	}
	pkt, err := NewReader(bytes.NewReader(buf.Bytes())).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	want := append(append(append([]byte{}, chunks[0]...), chunks[1]...), chunks[2]...)
	if !bytes.Equal(pkt.Body(), want) {
		t.Fatalf("got %x, want %x", pkt.Body(), want)
	}
	if len(pkt.Chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(pkt.Chunks))
	}
	if !pkt.Chunks[0].IsPartial {
		t.Fatalf("expected first chunk to be partial")
	}
	if pkt.Chunks[len(pkt.Chunks)-1].IsPartial {
		t.Fatalf("expected terminal chunk to be non-partial")
	}
}

func TestLonePartialChunkRejected(t *testing.T) {
	// A new-format packet whose only length octet is in the partial
	// range with no terminal chunk following must be rejected rather
	// than silently truncated.
	data := []byte{0xCB, 224} // tag 11 new-format, partial length 2^0=1, then EOF
	_, err := NewReader(bytes.NewReader(data)).Next()
	if err == nil {
		t.Fatalf("expected error for truncated partial stream")
	}
}

func TestOldFormatIndeterminateLength(t *testing.T) {
	// Old-format tag 11, selector 3 (indeterminate length): reads to EOF.
	tagByte := byte(0x80 | (11 << 2) | 0x03)
	data := append([]byte{tagByte}, []byte("payload")...)
	pkt, err := NewReader(bytes.NewReader(data)).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !bytes.Equal(pkt.Body(), []byte("payload")) {
		t.Fatalf("got %q", pkt.Body())
	}
	_, err = NewReader(bytes.NewReader(nil)).Next()
	if err != io.EOF {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestEmitRetainedPreservesOriginalFraming(t *testing.T) {
	tagByte := byte(0x80 | (11 << 2) | 0x00) // old-format, one-octet length
	body := []byte("xyz")
	data := append([]byte{tagByte, byte(len(body))}, body...)
	pkt, err := NewReader(bytes.NewReader(data)).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	out, err := EmitRetained(pkt)
	if err != nil {
		t.Fatalf("emit retained: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("got %x, want %x", out, data)
	}
}
