// Package factortable implements C10: a bit-packed lookup table over the
// wheel-30030 residue classes (2*3*5*7*11*13) that resolves any 2 <= x <
// 2^B to its prime factorization in O(1) table reads per factor, trading
// memory for the trial-division/Pollard-Rho work package factor otherwise
// does. Grounded on the teacher's ring/table.go (Encode/Decode's manual
// binary.LittleEndian header-then-payload framing, and its "recompute
// auxiliary fields from the loaded payload, then validate" Decode pattern)
// and on original_source's FactorByTable32.h for the wheel reindexing and
// entry-encoding scheme.
package factortable

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"

	"github.com/hurchalla/go-factoring/mayer"
	"github.com/hurchalla/go-factoring/millerrabin"
)

// Sentinel errors for the table's load/save I/O, per the engine's closed
// error taxonomy (see montgomery.ErrPrecondition, mayer.ErrPrecondition).
var (
	ErrFileOpen        = errors.New("factortable: failed to open file")
	ErrFileRead        = errors.New("factortable: failed to read file")
	ErrFileWrite       = errors.New("factortable: failed to write file")
	ErrFormatMismatch  = errors.New("factortable: file header does not match requested table configuration")
	ErrIntegerOverflow = errors.New("factortable: declared table size overflows a 32-bit counter")
)

const (
	wheelModulus = 30030 // 2*3*5*7*11*13
	halfWheel    = wheelModulus / 2
	numSpokes    = 5760 // (2-1)(3-1)(5-1)(7-1)(11-1)(13-1)
)

var wheelPrimes = [6]uint64{2, 3, 5, 7, 11, 13}

// spokeReindex[r/2] gives the dense 0-based ordinal of odd residue r among
// the residues in [0, wheelModulus) coprime to wheelModulus. Entries for
// non-coprime r are never read.
var spokeReindex [halfWheel]uint16

// spokeValue is the inverse of spokeReindex: spokeValue[spokeReindex[r/2]]
// == r.
var spokeValue [numSpokes]uint32

func init() {
	idx := 0
	for r := uint32(1); r < wheelModulus; r += 2 {
		if gcdUint32(r, wheelModulus) == 1 {
			spokeReindex[r/2] = uint16(idx)
			spokeValue[idx] = r
			idx++
		}
	}
	if idx != numSpokes {
		panic("factortable: wheel spoke count mismatch")
	}
	buildPrimeSieve()
}

func gcdUint32(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// primesUnder2_16 is the dense, ascending table of the 6542 primes below
// 2^16, used both for the 'small' entry encoding's prime-index scheme and
// for trial-dividing table entries during Build.
var primesUnder2_16 []uint32
var primeIndexOf map[uint32]int

func buildPrimeSieve() {
	const limit = 1 << 16
	sieve := make([]bool, limit)
	for i := 2; i < limit; i++ {
		if !sieve[i] {
			primesUnder2_16 = append(primesUnder2_16, uint32(i))
			for j := i * i; j < limit; j += i {
				sieve[j] = true
			}
		}
	}
	primeIndexOf = make(map[uint32]int, len(primesUnder2_16))
	for i, p := range primesUnder2_16 {
		primeIndexOf[p] = i
	}
}

// Table is a loaded or built factor table for a fixed bit-limit B and
// entry-width mode ('small' packs a prime index in 13 bits, else the
// prime's halved value in 15 bits -- both plus one cofactor-primality bit).
type Table struct {
	bitLimit    int
	small       bool
	entryWidth  int
	numEntries  int
	payloadSize int
	payload     []byte
}

func entryWidthFor(small bool) int {
	if small {
		return 14
	}
	return 16
}

// dimensions computes the number of (quotient, spoke) entries whose
// represented integer n = quotient*wheelModulus + spokeValue[spoke] is
// below 2^bitLimit, matching §4.10.2's table-sizing rule.
func dimensions(bitLimit int) int {
	limit := uint64(1) << uint(bitLimit)
	count := 0
	for quotient := uint64(0); ; quotient++ {
		base := quotient * wheelModulus
		if base+uint64(spokeValue[0]) >= limit {
			break
		}
		for _, sv := range spokeValue {
			if base+uint64(sv) >= limit {
				return count
			}
			count++
		}
	}
	return count
}

// Build constructs a table in memory for bit-limit B and mode small,
// running millerrabin.Prime and trial division over every wheel index
// below 2^B. This is the supplemental construction routine
// original_source's resource_intensive_api/FactorByTable32.h exposes
// alongside its loader; the distilled table-format spec is silent on how a
// table is built, only on its shape and lookup.
func Build(bitLimit int, small bool) (*Table, error) {
	numEntries := dimensions(bitLimit)
	entryWidth := entryWidthFor(small)
	payloadBytes := (numEntries*entryWidth + 7) / 8
	if uint64(numEntries) > math.MaxUint32 || uint64(payloadBytes) > math.MaxUint32 {
		return nil, ErrIntegerOverflow
	}

	t := &Table{
		bitLimit:    bitLimit,
		small:       small,
		entryWidth:  entryWidth,
		numEntries:  numEntries,
		payloadSize: payloadBytes,
		payload:     make([]byte, payloadBytes),
	}

	limit := uint64(1) << uint(bitLimit)
	index := 0
	for quotient := uint64(0); index < numEntries; quotient++ {
		base := quotient * wheelModulus
		for _, sv := range spokeValue {
			if index >= numEntries {
				break
			}
			n := base + uint64(sv)
			if n >= limit {
				break
			}
			t.setEntry(index, encodeEntry(uint32(n), small))
			index++
		}
	}
	return t, nil
}

// encodeEntry implements §4.10.3's per-index entry encoding.
func encodeEntry(n uint32, small bool) uint32 {
	if n < 2 || millerrabin.Prime(n) {
		return 0
	}
	p := largestPrimeFactorUnder2_16(n)
	cofactor := n / p
	cofactorIsPrime := cofactor == 1 || millerrabin.Prime(cofactor)
	var bit uint32
	if cofactorIsPrime {
		bit = 1
	}
	if small {
		return (uint32(primeIndexOf[p]) << 1) | bit
	}
	return ((p / 2) << 1) | bit
}

// largestPrimeFactorUnder2_16 finds the largest prime factor of n that is
// itself less than 2^16. Every composite n < 2^32 has at least one such
// factor (its smallest prime factor is at most sqrt(n) < 2^16); by wheel
// construction n is never divisible by 2, 3, 5, 7, 11 or 13.
func largestPrimeFactorUnder2_16(n uint32) uint32 {
	best := uint32(0)
	q := n
	for _, p := range primesUnder2_16 {
		if uint64(p)*uint64(p) > uint64(q) {
			break
		}
		if q%p == 0 {
			best = p
			for q%p == 0 {
				q /= p
			}
		}
	}
	// Once trial division's p*p > q stopping condition triggers, whatever
	// remains of q is prime (standard trial-division argument). If that
	// residual prime is itself below 2^16, it may be larger than any
	// factor found so far (a later prime can divide out and leave a large
	// earlier-missed prime residual), so it must still be compared.
	if q > 1 && q < (1<<16) && q > best {
		best = q
	}
	return best
}

func (t *Table) setEntry(index int, value uint32) {
	bitOffset := index * t.entryWidth
	for b := 0; b < t.entryWidth; b++ {
		if value&(1<<uint(b)) == 0 {
			continue
		}
		byteIdx := (bitOffset + b) / 8
		bitIdx := uint((bitOffset + b) % 8)
		t.payload[byteIdx] |= 1 << bitIdx
	}
}

func (t *Table) getEntry(index int) uint32 {
	bitOffset := index * t.entryWidth
	var value uint32
	for b := 0; b < t.entryWidth; b++ {
		byteIdx := (bitOffset + b) / 8
		bitIdx := uint((bitOffset + b) % 8)
		if t.payload[byteIdx]&(1<<bitIdx) != 0 {
			value |= 1 << uint(b)
		}
	}
	return value
}

// formatID distinguishes the two entry-width modes in the file header.
func formatID(small bool) uint32 {
	if small {
		return 1
	}
	return 2
}

// Save writes the table to path as three little-endian uint32 header words
// (format ID, entry count, payload byte count) followed by the raw
// bit-packed payload.
func (t *Table) Save(path string) error {
	if uint64(t.numEntries) > math.MaxUint32 || uint64(t.payloadSize) > math.MaxUint32 {
		return ErrIntegerOverflow
	}
	f, err := os.Create(path)
	if err != nil {
		return ErrFileOpen
	}
	defer f.Close()

	var header [12]byte
	binary.LittleEndian.PutUint32(header[0:4], formatID(t.small))
	binary.LittleEndian.PutUint32(header[4:8], uint32(t.numEntries))
	binary.LittleEndian.PutUint32(header[8:12], uint32(t.payloadSize))

	if _, err := f.Write(header[:]); err != nil {
		return ErrFileWrite
	}
	if _, err := f.Write(t.payload); err != nil {
		return ErrFileWrite
	}
	return nil
}

// Load reads a table file and validates its header against the expected
// shape for bitLimit and small, returning ErrFormatMismatch if they
// disagree.
func Load(path string, bitLimit int, small bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrFileOpen
	}
	defer f.Close()

	var header [12]byte
	if _, err := readFull(f, header[:]); err != nil {
		return nil, ErrFileRead
	}
	gotFormat := binary.LittleEndian.Uint32(header[0:4])
	gotEntries := binary.LittleEndian.Uint32(header[4:8])
	gotPayload := binary.LittleEndian.Uint32(header[8:12])

	wantEntries := dimensions(bitLimit)
	entryWidth := entryWidthFor(small)
	wantPayload := (wantEntries*entryWidth + 7) / 8

	if gotFormat != formatID(small) || int(gotEntries) != wantEntries || int(gotPayload) != wantPayload {
		return nil, ErrFormatMismatch
	}

	payload := make([]byte, wantPayload)
	if _, err := readFull(f, payload); err != nil {
		return nil, ErrFileRead
	}

	return &Table{
		bitLimit:    bitLimit,
		small:       small,
		entryWidth:  entryWidth,
		numEntries:  wantEntries,
		payloadSize: wantPayload,
		payload:     payload,
	}, nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	if total != len(buf) {
		return total, io.ErrUnexpectedEOF
	}
	return total, nil
}

// Factor resolves x (2 <= x < 2^B) to its prime factorization via table
// lookups, per §4.10.4: peel the six wheel primes directly, then
// repeatedly reindex the cofactor into the table and decode its entry.
func (t *Table) Factor(x uint32, sink func(uint32)) error {
	q := x
	for q&1 == 0 {
		sink(2)
		q >>= 1
		if q == 1 {
			return nil
		}
	}
	for _, p64 := range wheelPrimes[1:] {
		p := uint32(p64)
		dv := mayer.NewDivisor(p64)
		for {
			quotient, divides := mayer.Divides(dv, uint64(q))
			if !divides {
				break
			}
			sink(p)
			q = uint32(quotient)
			if q == 1 {
				return nil
			}
		}
	}

	for q != 1 {
		quotient := q / wheelModulus
		r := q % wheelModulus
		spoke := spokeReindex[r/2]
		index := int(quotient)*numSpokes + int(spoke)

		encoded := t.getEntry(index)
		if encoded == 0 {
			sink(q)
			return nil
		}
		bit := encoded & 1
		var p uint32
		if t.small {
			p = primesUnder2_16[encoded>>1]
		} else {
			p = (encoded>>1)*2 + 1
		}
		sink(p)
		q = q / p
		if bit == 1 {
			if q > 1 {
				sink(q)
			}
			return nil
		}
	}
	return nil
}
