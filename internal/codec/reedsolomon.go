package codec

// ReedSolomon is a systematic Reed-Solomon encoder/decoder over GF(256)
// with the standard 0x11d primitive polynomial and generator element 2.
// EccLen parity bytes are appended to each codeword; decode corrects up
// to EccLen/2 byte errors.
//
// No third-party Reed-Solomon library appears anywhere in the example
// pack (see DESIGN.md), so this ports the classical syndrome/Berlekamp-
// Massey/Forney decode algorithm directly against the field arithmetic
// below. Every polynomial here is stored big-endian: index 0 is the
// highest-degree coefficient, matching the byte order of the codeword
// itself.
type ReedSolomon struct {
	EccLen int
}

func NewReedSolomon(eccLen int) *ReedSolomon {
	if eccLen <= 0 {
		panic("codec: ReedSolomon eccLen must be positive")
	}
	return &ReedSolomon{EccLen: eccLen}
}

func (r *ReedSolomon) GetEncodeSize(payloadSize int) int { return payloadSize + r.EccLen }

func (r *ReedSolomon) Encode(payload []byte) ([]byte, error) {
	gen := generatorPoly(r.EccLen)

	remainder := make([]byte, len(payload)+r.EccLen)
	copy(remainder, payload)
	for i := 0; i < len(payload); i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j, g := range gen {
			remainder[i+j] ^= gfMul(g, coef)
		}
	}

	out := make([]byte, len(payload)+r.EccLen)
	copy(out, payload)
	copy(out[len(payload):], remainder[len(payload):])
	return out, nil
}

func (r *ReedSolomon) Decode(payload []byte) ([]byte, error) {
	if len(payload) < r.EccLen {
		return nil, ErrDecode
	}

	synd := syndromes(payload, r.EccLen)
	if allZero(synd) {
		return dup(payload[:len(payload)-r.EccLen]), nil
	}

	errLoc, err := berlekampMassey(synd, r.EccLen)
	if err != nil {
		return nil, ErrDecode
	}

	errPos, ok := findErrors(errLoc, len(payload))
	if !ok {
		return nil, ErrDecode
	}

	corrected, err := correctErrata(payload, synd, errPos)
	if err != nil {
		return nil, ErrDecode
	}

	if !allZero(syndromes(corrected, r.EccLen)) {
		return nil, ErrDecode
	}

	return dup(corrected[:len(corrected)-r.EccLen]), nil
}

// --- GF(256) arithmetic, primitive polynomial 0x11d, generator 2 ---

var (
	gfExp [512]byte
	gfLog [256]byte
)

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11d
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])-int(gfLog[b])+255]
}

// gfPow supports negative exponents via the 255-periodic cycle of gfExp.
func gfPow(a byte, power int) byte {
	if a == 0 {
		if power == 0 {
			return 1
		}
		return 0
	}
	p := (int(gfLog[a]) * power) % 255
	if p < 0 {
		p += 255
	}
	return gfExp[p]
}

func gfInverse(a byte) byte { return gfExp[255-int(gfLog[a])] }

func polyMul(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b)-1)
	for i, ca := range a {
		if ca == 0 {
			continue
		}
		for j, cb := range b {
			out[i+j] ^= gfMul(ca, cb)
		}
	}
	return out
}

// polyAdd XORs two big-endian polynomials, padding the shorter on the
// left (its high-degree end) with zeros.
func polyAdd(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < len(a); i++ {
		out[i+n-len(a)] ^= a[i]
	}
	for i := 0; i < len(b); i++ {
		out[i+n-len(b)] ^= b[i]
	}
	return out
}

func polyScale(p []byte, x byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = gfMul(c, x)
	}
	return out
}

func polyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}

// generatorPoly returns the RS generator polynomial of degree eccLen,
// product_{i=0}^{eccLen-1} (x - 2^i), stored big-endian.
func generatorPoly(eccLen int) []byte {
	g := []byte{1}
	for i := 0; i < eccLen; i++ {
		g = polyMul(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// syndromes evaluates the received codeword (as a big-endian polynomial)
// at each root of the generator; all-zero means no detected error.
func syndromes(received []byte, eccLen int) []byte {
	synd := make([]byte, eccLen)
	for i := 0; i < eccLen; i++ {
		synd[i] = polyEval(received, gfPow(2, i))
	}
	return synd
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func dup(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// berlekampMassey finds the error-locator polynomial from the syndromes,
// following the classical linear-feedback-shift-register synthesis.
// synd[i] corresponds to S_{i+1} in the usual notation; indices of synd
// that would fall before the start of the sequence contribute zero.
func berlekampMassey(synd []byte, eccLen int) ([]byte, error) {
	errLoc := []byte{1}
	oldLoc := []byte{1}

	for i := 0; i < eccLen; i++ {
		oldLoc = append(oldLoc, 0)

		delta := synd[i]
		for j := 1; j < len(errLoc); j++ {
			if i-j < 0 {
				continue
			}
			delta ^= gfMul(errLoc[len(errLoc)-1-j], synd[i-j])
		}

		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := polyScale(oldLoc, delta)
				oldLoc = polyScale(errLoc, gfInverse(delta))
				errLoc = newLoc
			}
			errLoc = polyAdd(errLoc, polyScale(oldLoc, delta))
		}
	}

	errLoc = stripLeadingZeros(errLoc)
	errs := len(errLoc) - 1
	if errs*2 > eccLen {
		return nil, ErrDecode
	}
	return errLoc, nil
}

func stripLeadingZeros(p []byte) []byte {
	i := 0
	for i < len(p)-1 && p[i] == 0 {
		i++
	}
	return p[i:]
}

// findErrors locates error positions (as indices from the start of the
// codeword) via Chien search over the error-locator polynomial's roots.
func findErrors(errLoc []byte, codewordLen int) ([]int, bool) {
	errs := len(errLoc) - 1
	if errs == 0 {
		return nil, true
	}

	var positions []int
	for i := 0; i < codewordLen; i++ {
		if polyEval(errLoc, gfPow(2, -i)) == 0 {
			positions = append(positions, codewordLen-1-i)
		}
	}
	if len(positions) != errs {
		return nil, false
	}
	return positions, true
}

// correctErrata applies Forney's algorithm to compute each error's
// magnitude and flips the corresponding codeword byte.
func correctErrata(received []byte, synd []byte, errPos []int) ([]byte, error) {
	n := len(received)

	coefPos := make([]int, len(errPos))
	for i, p := range errPos {
		coefPos[i] = n - 1 - p
	}

	errLoc := errataLocator(coefPos)

	sRev := reversed(synd)
	errEvalRev := polyMulTruncatedLow(sRev, errLoc, len(errLoc))
	errEval := reversed(errEvalRev)

	x := make([]byte, len(coefPos))
	for i, cp := range coefPos {
		l := 255 - cp
		x[i] = gfPow(2, -l)
	}

	out := dup(received)
	for i, xi := range x {
		xiInv := gfInverse(xi)

		primeFactor := byte(1)
		for j, xj := range x {
			if j == i {
				continue
			}
			primeFactor = gfMul(primeFactor, byte(1)^gfMul(xiInv, xj))
		}
		if primeFactor == 0 {
			return nil, ErrDecode
		}

		y := polyEval(reversed(errEval), xiInv)

		magnitude := gfDiv(y, primeFactor)
		out[errPos[i]] ^= magnitude
	}
	return out, nil
}

// errataLocator builds product_i (2^{pos_i} * x + 1), big-endian.
func errataLocator(positions []int) []byte {
	loc := []byte{1}
	for _, pos := range positions {
		loc = polyMul(loc, []byte{gfPow(2, pos), 1})
	}
	return loc
}

// polyMulTruncatedLow multiplies a and b and keeps only the last keep
// coefficients (the low-degree terms) of the big-endian product, i.e.
// the product reduced modulo x^keep.
func polyMulTruncatedLow(a, b []byte, keep int) []byte {
	prod := polyMul(a, b)
	if len(prod) <= keep {
		out := make([]byte, keep)
		copy(out[keep-len(prod):], prod)
		return out
	}
	return prod[len(prod)-keep:]
}

func reversed(p []byte) []byte {
	out := make([]byte, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}
