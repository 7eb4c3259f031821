package murmur2

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteStripsWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"No whitespace", "HelloWorld", "HelloWorld"},
		{"With spaces", "Hello World", "HelloWorld"},
		{"With tab", "Hello\tWorld", "HelloWorld"},
		{"With newline", "Hello\nWorld", "HelloWorld"},
		{"With carriage return", "Hello\rWorld", "HelloWorld"},
		{"Mixed whitespace", "Hello \t\n\rWorld", "HelloWorld"},
		{"Only whitespace", " \t\n\r", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New().(*Murmur2CF)
			n, err := m.Write([]byte(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, len(tt.input), n, "Write must report the full input length")
			assert.Equal(t, tt.want, string(m.buf))
		})
	}
}

func TestNormalizedInputsHashEqual(t *testing.T) {
	a := New().(*Murmur2CF)
	b := New().(*Murmur2CF)

	_, _ = a.Write([]byte("some mod file contents\r\n"))
	_, _ = b.Write([]byte("somemodfilecontents"))

	assert.Equal(t, b.Sum32(), a.Sum32())
}

func TestSumMatchesSum32(t *testing.T) {
	m := New().(*Murmur2CF)
	_, _ = m.Write([]byte("Hello, World!"))

	sum := m.Sum(nil)
	assert.Len(t, sum, 4)
	assert.Equal(t, m.Sum32(), binary.BigEndian.Uint32(sum))

	// Sum must append, not overwrite
	prefixed := m.Sum([]byte{0xff})
	assert.Len(t, prefixed, 5)
	assert.Equal(t, byte(0xff), prefixed[0])
}

func TestReset(t *testing.T) {
	m := New().(*Murmur2CF)
	_, _ = m.Write([]byte("Hello"))
	before := m.Sum32()

	m.Reset()
	assert.Empty(t, m.buf)

	_, _ = m.Write([]byte("Hello"))
	assert.Equal(t, before, m.Sum32(), "hash must be deterministic across Reset")
}

func TestSize(t *testing.T) {
	m := New()
	assert.Equal(t, 4, m.Size())
}
