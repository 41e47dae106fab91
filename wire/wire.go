// Package wire implements the length-prefixed binary primitives shared
// by the port-creation list and structure-parameter serializers (spec.md
// §6). No third-party binary codec in the example corpus matches the
// field-by-field layout the spec prescribes (gob's self-describing
// format would reorder/tag fields rather than emit them positionally),
// so this is a small stdlib encoding/binary helper rather than an
// adopted dependency.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteString writes a uint32 length prefix followed by s's bytes.
func WriteString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadString reads a length-prefixed string written by WriteString.
func ReadString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("wire: reading string body: %w", err)
	}
	return string(buf), nil
}

// WriteBool writes b as a single byte.
func WriteBool(w io.Writer, b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

// ReadBool reads a single byte written by WriteBool.
func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

// WriteInt32 writes n as a big-endian int32.
func WriteInt32(w io.Writer, n int32) error {
	return binary.Write(w, binary.BigEndian, n)
}

// ReadInt32 reads a big-endian int32 written by WriteInt32.
func ReadInt32(r io.Reader) (int32, error) {
	var n int32
	err := binary.Read(r, binary.BigEndian, &n)
	return n, err
}
