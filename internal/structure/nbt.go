package structure

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
)

// NBT tag ids.
const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

// maxNBTLen caps string/list/array lengths so a corrupt file cannot ask for
// gigabytes of allocation.
const maxNBTLen = 1 << 26

// Load reads and decodes a structure file from disk.
func Load(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode decodes a structure from an NBT stream. The stream may be raw or
// gzip-compressed; compression is sniffed from the magic bytes.
func Decode(r io.Reader) (*Structure, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	d := &decoder{r: br}
	typ, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("root tag: %w", err)
	}
	if typ != tagCompound {
		return nil, fmt.Errorf("root tag: want compound, got type %d", typ)
	}
	if _, err := d.readString(); err != nil { // root name, usually ""
		return nil, fmt.Errorf("root name: %w", err)
	}
	root, err := d.readCompound()
	if err != nil {
		return nil, err
	}
	return fromRoot(root)
}

type decoder struct {
	r *bufio.Reader
}

func (d *decoder) readPayload(typ byte) (any, error) {
	switch typ {
	case tagByte:
		b, err := d.r.ReadByte()
		return int8(b), err
	case tagShort:
		var v int16
		err := binary.Read(d.r, binary.BigEndian, &v)
		return v, err
	case tagInt:
		var v int32
		err := binary.Read(d.r, binary.BigEndian, &v)
		return v, err
	case tagLong:
		var v int64
		err := binary.Read(d.r, binary.BigEndian, &v)
		return v, err
	case tagFloat:
		var v uint32
		err := binary.Read(d.r, binary.BigEndian, &v)
		return math.Float32frombits(v), err
	case tagDouble:
		var v uint64
		err := binary.Read(d.r, binary.BigEndian, &v)
		return math.Float64frombits(v), err
	case tagByteArray:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case tagString:
		return d.readString()
	case tagList:
		return d.readList()
	case tagCompound:
		return d.readCompound()
	case tagIntArray:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			if err := binary.Read(d.r, binary.BigEndian, &out[i]); err != nil {
				return nil, err
			}
		}
		return out, nil
	case tagLongArray:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			if err := binary.Read(d.r, binary.BigEndian, &out[i]); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown tag type %d", typ)
}

func (d *decoder) readCompound() (map[string]any, error) {
	out := map[string]any{}
	for {
		typ, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if typ == tagEnd {
			return out, nil
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		v, err := d.readPayload(typ)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		out[name] = v
	}
}

func (d *decoder) readList() ([]any, error) {
	elem, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	n, err := d.readLen()
	if err != nil {
		return nil, err
	}
	if n > 0 && elem == tagEnd {
		return nil, fmt.Errorf("non-empty list of end tags")
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.readPayload(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) readString() (string, error) {
	var n uint16
	if err := binary.Read(d.r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) readLen() (int, error) {
	var n int32
	if err := binary.Read(d.r, binary.BigEndian, &n); err != nil {
		return 0, err
	}
	if n < 0 || n > maxNBTLen {
		return 0, fmt.Errorf("bad length %d", n)
	}
	return int(n), nil
}
