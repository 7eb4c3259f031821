package core

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"github.com/lantern-mc/lantern/core/murmur2"
)

// GetHashImpl gets an implementation of hash.Hash for the given hash format string
func GetHashImpl(hashFormat string) (HashStringer, error) {
	switch strings.ToLower(hashFormat) {
	case "sha1":
		return &hexStringer{sha1.New()}, nil
	case "sha256":
		return &hexStringer{sha256.New()}, nil
	case "sha512":
		return &hexStringer{sha512.New()}, nil
	case "md5":
		return &hexStringer{md5.New()}, nil
	case "murmur2": // CurseForge fingerprint variant
		return &number32As64Stringer{murmur2.New()}, nil
	}
	return nil, fmt.Errorf("hash implementation %s not found", hashFormat)
}

// PreferredHashList orders hash formats from least to most preferred when a
// source publishes several for the same file.
var PreferredHashList = []string{
	"murmur2",
	"md5",
	"sha1",
	"sha256",
	"sha512",
}

// VerifyingReader wraps a stream and checks it against an expected hash once
// it has been fully consumed. A mismatch is reported in place of io.EOF, so a
// consumer copying the stream fails before it commits anything.
type VerifyingReader struct {
	r        io.Reader
	hasher   HashStringer
	format   string
	expected string
}

func NewVerifyingReader(r io.Reader, hashFormat, expected string) (*VerifyingReader, error) {
	hasher, err := GetHashImpl(hashFormat)
	if err != nil {
		return nil, err
	}
	return &VerifyingReader{
		r:        io.TeeReader(r, hasher),
		hasher:   hasher,
		format:   hashFormat,
		expected: expected,
	}, nil
}

func (v *VerifyingReader) Read(p []byte) (int, error) {
	n, err := v.r.Read(p)
	if err == io.EOF {
		if actual := v.hasher.String(); !strings.EqualFold(actual, v.expected) {
			return n, fmt.Errorf("%s hash mismatch: expected %s, got %s", v.format, v.expected, actual)
		}
	}
	return n, err
}

type HashStringer interface {
	hash.Hash
	String() string
}

type hexStringer struct {
	hash.Hash
}

func (h *hexStringer) String() string {
	return hex.EncodeToString(h.Sum(nil))
}

type number32As64Stringer struct {
	hash.Hash
}

func (h *number32As64Stringer) String() string {
	return strconv.FormatUint(uint64(binary.BigEndian.Uint32(h.Sum(nil))), 10)
}
