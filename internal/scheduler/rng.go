package scheduler

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"strconv"
	"strings"
)

// mwcRand is a multiply-with-carry generator. The algorithm is pinned so a
// seed reproduces the same grid across releases, which math/rand does not
// guarantee.
type mwcRand struct {
	value uint32
	carry uint32
}

func newMWCRand(seed int64) *mwcRand {
	r := &mwcRand{
		value: uint32(seed),
		carry: uint32(uint64(seed) >> 32),
	}
	if r.value == 0 {
		r.value = 362436069
	}
	if r.carry == 0 {
		r.carry = 521288629
	}
	return r
}

func (r *mwcRand) next() uint32 {
	t := uint64(r.value)*1791398085 + uint64(r.carry)
	r.value = uint32(t)
	r.carry = uint32(t >> 32)
	return r.value
}

func (r *mwcRand) intn(n int) int {
	if n <= 1 {
		return 0
	}
	return int(r.next() % uint32(n))
}

// shuffle performs a Fisher-Yates shuffle over n elements.
func (r *mwcRand) shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.intn(i + 1)
		swap(i, j)
	}
}

// ParseSeed accepts a decimal integer or an arbitrary string, which is
// folded to an integer with FNV-1a so textual seeds stay reproducible.
func ParseSeed(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, true
	}
	h := fnv.New64a()
	h.Write([]byte(value))
	return int64(h.Sum64()), true
}

// NewSeed draws a fresh random seed for runs that did not supply one.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	seed := int64(binary.BigEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
