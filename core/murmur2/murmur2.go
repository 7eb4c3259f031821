// Package murmur2 implements the CurseForge fingerprint variant of
// MurmurHash2: whitespace bytes (tab, newline, carriage return, space) are
// stripped from the input before hashing with seed 1.
package murmur2

import (
	"encoding/binary"
	"hash"

	"github.com/aviddiviner/go-murmur"
)

const cfSeed = 1

type Murmur2CF struct {
	buf []byte
}

func New() hash.Hash {
	return &Murmur2CF{}
}

// Write accumulates p with CurseForge's normalization applied. The full
// length of p is reported as written even though whitespace is dropped.
func (m *Murmur2CF) Write(p []byte) (int, error) {
	for _, b := range p {
		switch b {
		case 9, 10, 13, 32:
			continue
		default:
			m.buf = append(m.buf, b)
		}
	}
	return len(p), nil
}

func (m *Murmur2CF) Sum(b []byte) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, m.Sum32())
	return append(b, out...)
}

func (m *Murmur2CF) Sum32() uint32 {
	return murmur.MurmurHash2(m.buf, cfSeed)
}

func (m *Murmur2CF) Reset() {
	m.buf = nil
}

func (m *Murmur2CF) Size() int { return 4 }

func (m *Murmur2CF) BlockSize() int { return 4 }
