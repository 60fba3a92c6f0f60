package util

import (
	"bytes"
	"math"
	"testing"
)

func TestVarLenIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 256, 16383, 16384, 16511, 65535,
		1 << 32, math.MaxUint64}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteVarLenInt(&buf, v); err != nil {
			t.Fatalf("write %d: %v", v, err)
		}
		got, err := ReadVarLenInt(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

func TestVarLenIntEncoding(t *testing.T) {
	cases := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x00}},
		{0xff, []byte{0x80, 0x7f}},
		{0x100, []byte{0x81, 0x00}},
		{0x407f, []byte{0xff, 0x7f}},
		{0x4080, []byte{0x80, 0x80, 0x00}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteVarLenInt(&buf, c.value); err != nil {
			t.Fatalf("write %d: %v", c.value, err)
		}
		if !bytes.Equal(buf.Bytes(), c.want) {
			t.Errorf("encode %#x = %x, want %x", c.value, buf.Bytes(), c.want)
		}
	}
}

func TestVarLenIntOrderPreserving(t *testing.T) {
	// Larger integers never get shorter encodings, and same-length
	// encodings compare bytewise in integer order.
	prev := []byte(nil)
	for _, v := range []uint64{0, 1, 127, 128, 300, 40000, 1 << 20, 1 << 40} {
		var buf bytes.Buffer
		if err := WriteVarLenInt(&buf, v); err != nil {
			t.Fatal(err)
		}
		cur := buf.Bytes()
		if prev != nil {
			less := len(prev) < len(cur) || (len(prev) == len(cur) && bytes.Compare(prev, cur) < 0)
			if !less {
				t.Errorf("encoding of %d does not sort after its predecessor", v)
			}
		}
		prev = cur
	}
}

func TestVarLenIntTruncated(t *testing.T) {
	// A stream ending on a continuation byte is an error.
	if _, err := ReadVarLenInt(bytes.NewReader([]byte{0x80})); err == nil {
		t.Error("expected error on truncated input")
	}
	if _, err := ReadVarLenInt(bytes.NewReader(nil)); err == nil {
		t.Error("expected error on empty input")
	}
}
