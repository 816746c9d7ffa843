package openpgp

import "encoding/binary"

// LiteralDataPacket is a Literal Data packet (tag 11).
type LiteralDataPacket struct {
	Format   byte // 'b' (binary), 't' (text), or 'u' (UTF-8 text)
	FileName []byte
	ModTime  uint32
	Data     []byte
}

func (p *LiteralDataPacket) Tag() int { return 11 }

func (p *LiteralDataPacket) EncodeBody(dst []byte) ([]byte, error) {
	if len(p.FileName) > 255 {
		return nil, InvalidArgumentError("literal data file name exceeds 255 bytes")
	}
	dst = append(dst, p.Format, byte(len(p.FileName)))
	dst = append(dst, p.FileName...)
	var mtime [4]byte
	binary.BigEndian.PutUint32(mtime[:], p.ModTime)
	dst = append(dst, mtime[:]...)
	dst = append(dst, p.Data...)
	return dst, nil
}

// DecodeLiteralDataPacket decodes a Literal Data packet body:
// format || name_len || name_bytes || u32 mtime || data.
func DecodeLiteralDataPacket(body []byte) (*LiteralDataPacket, error) {
	if len(body) < 6 {
		return nil, MalformedError("literal data packet truncated")
	}
	format := body[0]
	switch format {
	case 'b', 't', 'u':
	default:
		return nil, MalformedError("unknown literal data format")
	}
	nameLen := int(body[1])
	if len(body) < 2+nameLen+4 {
		return nil, MalformedError("literal data packet truncated")
	}
	name := append([]byte(nil), body[2:2+nameLen]...)
	mtime := binary.BigEndian.Uint32(body[2+nameLen : 2+nameLen+4])
	data := append([]byte(nil), body[2+nameLen+4:]...)
	return &LiteralDataPacket{Format: format, FileName: name, ModTime: mtime, Data: data}, nil
}
