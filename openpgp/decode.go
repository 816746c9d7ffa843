package openpgp

import (
	"bytes"
	"io"
)

// Decode interprets p's framed body as a typed PacketKind, dispatching
// on p.Tag.TagID. Unknown tags decode to a *RawPacket rather than an
// error; interpretation of the OpenPGP tag registry is deferred until
// a caller asks for it.
func (p *Packet) Decode() (PacketKind, error) {
	if p.Decoded != nil {
		return p.Decoded, nil
	}
	body := p.Body()
	var (
		kind PacketKind
		err  error
	)
	switch p.Tag.TagID {
	case 1:
		kind, err = DecodePKESKPacket(body)
	case 5:
		kind, err = DecodeSecretKeyPacket(body)
	case 6:
		kind, err = DecodePublicKeyPacket(body)
	case 11:
		kind, err = DecodeLiteralDataPacket(body)
	case 18:
		kind, err = DecodeIPDPPacket(body)
	case 19:
		kind, err = DecodeMDCPacket(body)
	default:
		kind, err = &RawPacket{TagID: p.Tag.TagID, Data: body}, nil
	}
	if err != nil {
		return nil, err
	}
	p.Decoded = kind
	return kind, nil
}

// Emit serializes a decoded PacketKind back into a framed packet,
// choosing the new-format length form (the inverse of Decode for every
// kind this package implements).
func Emit(kind PacketKind) ([]byte, error) {
	body, err := kind.EncodeBody(nil)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WritePacket(&buf, kind.Tag(), body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmitRetained re-emits p using its originally framed chunks rather
// than re-encoding p.Decoded, reproducing the exact input bytes when
// the original framing already used canonical length forms.
// Partial-length originals are re-streamed chunk-for-chunk.
func EmitRetained(p *Packet) ([]byte, error) {
	var buf bytes.Buffer
	tagByte := byte(0x80)
	if p.Tag.NewFormat {
		tagByte |= 0x40 | byte(p.Tag.TagID&0x3F)
	} else {
		tagByte |= byte((p.Tag.TagID & 0x0F) << 2)
		switch p.Tag.Form {
		case LengthOneOctet:
			tagByte |= 0
		case LengthTwoOctet:
			tagByte |= 1
		case LengthFourOctet:
			tagByte |= 2
		default:
			tagByte |= 3
		}
	}
	if _, err := buf.Write([]byte{tagByte}); err != nil {
		return nil, err
	}

	if !p.Tag.NewFormat {
		body := p.Body()
		switch p.Tag.Form {
		case LengthOneOctet:
			buf.WriteByte(byte(len(body)))
		case LengthTwoOctet:
			buf.Write([]byte{byte(len(body) >> 8), byte(len(body))})
		case LengthFourOctet:
			buf.Write([]byte{byte(len(body) >> 24), byte(len(body) >> 16), byte(len(body) >> 8), byte(len(body))})
		}
		buf.Write(body)
		return buf.Bytes(), nil
	}

	for i, chunk := range p.Chunks {
		last := i == len(p.Chunks)-1
		if chunk.IsPartial && !last {
			exp := 0
			for (1 << uint(exp)) < len(chunk.Data) {
				exp++
			}
			buf.WriteByte(byte(224 + exp))
			buf.Write(chunk.Data)
			continue
		}
		buf.Write(encodeBodyLengthOnly(len(chunk.Data)))
		buf.Write(chunk.Data)
	}
	return buf.Bytes(), nil
}

// ReadAll frames and decodes every packet in data, stopping at the
// first clean end of stream. It returns whatever packets were
// successfully read before a fatal framing or decode error, alongside
// that error, so a caller can inspect partial progress.
func ReadAll(data []byte) ([]*Packet, error) {
	rd := NewReader(bytes.NewReader(data))
	var packets []*Packet
	for {
		pkt, err := rd.Next()
		if err != nil {
			if err == io.EOF {
				return packets, nil
			}
			return packets, err
		}
		if _, err := pkt.Decode(); err != nil {
			return packets, err
		}
		packets = append(packets, pkt)
	}
}
