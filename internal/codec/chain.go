package codec

// Chain composes two codecs end to end: encoding applies A then B;
// decoding reverses the order. Chains may be nested to build arbitrarily
// deep pipelines (e.g. Reed-Solomon over four-to-six-bit symbols).
type Chain struct {
	A, B Codec
}

func NewChain(a, b Codec) Chain { return Chain{A: a, B: b} }

func (c Chain) GetEncodeSize(payloadSize int) int {
	return c.B.GetEncodeSize(c.A.GetEncodeSize(payloadSize))
}

func (c Chain) Encode(payload []byte) ([]byte, error) {
	mid, err := c.A.Encode(payload)
	if err != nil {
		return nil, err
	}
	return c.B.Encode(mid)
}

func (c Chain) Decode(payload []byte) ([]byte, error) {
	mid, err := c.B.Decode(payload)
	if err != nil {
		return nil, err
	}
	return c.A.Decode(mid)
}
