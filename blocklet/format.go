package blocklet

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/hupe1980/scanfilter/codec"
	"github.com/hupe1980/scanfilter/column"
)

const (
	// Magic closes every blocklet blob.
	Magic = "SFBL"
	// Version is the footer version written by this package.
	Version = 1
	// TrailerSize is the size of the fixed trailer in bytes.
	TrailerSize = 4 + 4 + codec.MaxNameLen + 4
)

// Region locates a byte range of the blob.
type Region struct {
	Offset   int64  `json:"off"`
	Length   int64  `json:"len"`
	Checksum uint32 `json:"crc"`
}

// End returns the offset one past the region.
func (r Region) End() int64 { return r.Offset + r.Length }

// ChunkMeta describes one column chunk.
type ChunkMeta struct {
	Pages []Region `json:"pages"`
	// Dictionary is the serialized local dictionary, if the chunk has one.
	Dictionary *Region `json:"dict,omitempty"`
}

// Footer describes the layout of a blocklet.
type Footer struct {
	Version     int                `json:"version"`
	Compression column.Compression `json:"compression"`
	PageRows    []int              `json:"page_rows"`
	Dimensions  []ChunkMeta        `json:"dimensions"`
	Measures    []ChunkMeta        `json:"measures"`
}

// RowCount returns the total number of rows.
func (f *Footer) RowCount() int {
	var n int
	for _, r := range f.PageRows {
		n += r
	}
	return n
}

func (f *Footer) validate(size int64) error {
	if f.Version != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, f.Version)
	}
	check := func(kind string, i int, m ChunkMeta) error {
		if len(m.Pages) != len(f.PageRows) {
			return fmt.Errorf("%w: %s chunk %d has %d pages, want %d", ErrCorrupt, kind, i, len(m.Pages), len(f.PageRows))
		}
		regions := m.Pages
		if m.Dictionary != nil {
			regions = append(regions[:len(regions):len(regions)], *m.Dictionary)
		}
		for _, r := range regions {
			if r.Offset < 0 || r.Length < 0 || r.End() > size {
				return fmt.Errorf("%w: %s chunk %d region [%d,%d) outside blob", ErrCorrupt, kind, i, r.Offset, r.End())
			}
		}
		return nil
	}
	for i, m := range f.Dimensions {
		if err := check("dimension", i, m); err != nil {
			return err
		}
	}
	for i, m := range f.Measures {
		if err := check("measure", i, m); err != nil {
			return err
		}
	}
	return nil
}

type trailer struct {
	footerLen uint32
	footerCRC uint32
	codec     string
}

func (t trailer) encode() []byte {
	buf := make([]byte, TrailerSize)
	binary.LittleEndian.PutUint32(buf[0:], t.footerLen)
	binary.LittleEndian.PutUint32(buf[4:], t.footerCRC)
	copy(buf[8:8+codec.MaxNameLen], t.codec)
	copy(buf[8+codec.MaxNameLen:], Magic)
	return buf
}

func decodeTrailer(buf []byte) (trailer, error) {
	if len(buf) != TrailerSize {
		return trailer{}, fmt.Errorf("%w: trailer is %d bytes", ErrCorrupt, len(buf))
	}
	if string(buf[8+codec.MaxNameLen:]) != Magic {
		return trailer{}, ErrInvalidMagic
	}
	return trailer{
		footerLen: binary.LittleEndian.Uint32(buf[0:]),
		footerCRC: binary.LittleEndian.Uint32(buf[4:]),
		codec:     strings.TrimRight(string(buf[8:8+codec.MaxNameLen]), "\x00"),
	}, nil
}
