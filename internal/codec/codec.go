// Package codec implements the pluggable forward-error-correction and
// compression stages that sit between the transport layer and the line
// coder: Identity, Reed-Solomon, four-to-six-bit symbol coding, LZSS, and
// a Chain composer.
package codec

import "errors"

var (
	// ErrEncode is returned by Encode when the input cannot be encoded
	// (e.g. exceeds a fixed internal buffer).
	ErrEncode = errors.New("codec: encode error")
	// ErrDecode is returned by Decode when the input cannot be decoded,
	// or cannot be corrected to a valid codeword.
	ErrDecode = errors.New("codec: decode error")
)

// Codec is the uniform encode/decode capability every FEC/compression
// stage implements. GetEncodeSize reports the worst-case encoded size for
// a given payload size, used by callers that must size fixed buffers up
// front.
type Codec interface {
	Encode(payload []byte) ([]byte, error)
	Decode(payload []byte) ([]byte, error)
	GetEncodeSize(payloadSize int) int
}

// Identity passes bytes through unchanged. It is the default codec and
// compressor when no FEC or compression is configured.
type Identity struct{}

func (Identity) Encode(payload []byte) ([]byte, error) {
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (Identity) Decode(payload []byte) ([]byte, error) {
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (Identity) GetEncodeSize(payloadSize int) int { return payloadSize }
