package column

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/hupe1980/scanfilter/datatype"
)

const msrHeaderSize = 1 + 4 + 4 + 4 + 4

// EncodeMeasurePage serializes a page as
// [type u8][rows u32][scale i32][precision i32][nullsLen u32][nulls][values].
//
// Fixed-width values are little-endian, booleans one byte, decimals 16 bytes
// (low word first) and strings u32-length-prefixed. Null rows hold zero values.
func EncodeMeasurePage(p MeasurePage, precision int32) ([]byte, error) {
	t := p.DataType()
	nulls, err := p.NullBits().ToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode null bitmap: %w", err)
	}

	out := make([]byte, msrHeaderSize, msrHeaderSize+len(nulls)+p.RowCount()*max(t.Width(), 4))
	out[0] = byte(t)
	binary.LittleEndian.PutUint32(out[1:], uint32(p.RowCount()))
	binary.LittleEndian.PutUint32(out[5:], uint32(p.Scale()))
	binary.LittleEndian.PutUint32(out[9:], uint32(precision))
	binary.LittleEndian.PutUint32(out[13:], uint32(len(nulls)))
	out = append(out, nulls...)

	for row := 0; row < p.RowCount(); row++ {
		switch t {
		case datatype.Boolean:
			var b byte
			if p.Boolean(row) {
				b = 1
			}
			out = append(out, b)
		case datatype.Byte:
			out = append(out, byte(int8(p.Long(row))))
		case datatype.Short:
			out = binary.LittleEndian.AppendUint16(out, uint16(int16(p.Long(row))))
		case datatype.Int:
			out = binary.LittleEndian.AppendUint32(out, uint32(int32(p.Long(row))))
		case datatype.Long:
			out = binary.LittleEndian.AppendUint64(out, uint64(p.Long(row)))
		case datatype.Float:
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(p.Double(row))))
		case datatype.Double:
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(p.Double(row)))
		case datatype.Decimal:
			d := p.Decimal(row)
			out = binary.LittleEndian.AppendUint64(out, d.LowBits())
			out = binary.LittleEndian.AppendUint64(out, uint64(d.HighBits()))
		case datatype.String:
			s := p.String(row)
			out = binary.LittleEndian.AppendUint32(out, uint32(len(s)))
			out = append(out, s...)
		default:
			return nil, fmt.Errorf("%w: cannot encode %s", ErrValueType, t)
		}
	}
	return out, nil
}

// DecodeMeasurePage parses the output of EncodeMeasurePage.
func DecodeMeasurePage(data []byte) (MeasurePage, error) {
	if len(data) < msrHeaderSize {
		return nil, fmt.Errorf("%w: measure header truncated", ErrCorruptPage)
	}
	t := datatype.DataType(data[0])
	rows := int(binary.LittleEndian.Uint32(data[1:]))
	scale := int32(binary.LittleEndian.Uint32(data[5:]))
	precision := int32(binary.LittleEndian.Uint32(data[9:]))
	nullsLen := int(binary.LittleEndian.Uint32(data[13:]))

	body := data[msrHeaderSize:]
	if len(body) < nullsLen {
		return nil, fmt.Errorf("%w: null bitmap truncated", ErrCorruptPage)
	}
	nulls := roaring.New()
	if err := nulls.UnmarshalBinary(body[:nullsLen]); err != nil {
		return nil, fmt.Errorf("%w: null bitmap: %v", ErrCorruptPage, err)
	}
	body = body[nullsLen:]

	if w := t.Width(); w > 0 && len(body) != rows*w {
		return nil, fmt.Errorf("%w: %s body is %d bytes, want %d", ErrCorruptPage, t, len(body), rows*w)
	}

	values := make([]any, rows)
	off := 0
	for row := 0; row < rows; row++ {
		var v any
		switch t {
		case datatype.Boolean:
			v = body[off] != 0
			off++
		case datatype.Byte:
			v = int8(body[off])
			off++
		case datatype.Short:
			v = int16(binary.LittleEndian.Uint16(body[off:]))
			off += 2
		case datatype.Int:
			v = int32(binary.LittleEndian.Uint32(body[off:]))
			off += 4
		case datatype.Long:
			v = int64(binary.LittleEndian.Uint64(body[off:]))
			off += 8
		case datatype.Float:
			v = math.Float32frombits(binary.LittleEndian.Uint32(body[off:]))
			off += 4
		case datatype.Double:
			v = math.Float64frombits(binary.LittleEndian.Uint64(body[off:]))
			off += 8
		case datatype.Decimal:
			lo := binary.LittleEndian.Uint64(body[off:])
			hi := int64(binary.LittleEndian.Uint64(body[off+8:]))
			v = decimal128.New(hi, lo)
			off += 16
		case datatype.String:
			if len(body)-off < 4 {
				return nil, fmt.Errorf("%w: string length truncated at row %d", ErrCorruptPage, row)
			}
			n := int(binary.LittleEndian.Uint32(body[off:]))
			off += 4
			if len(body)-off < n {
				return nil, fmt.Errorf("%w: string truncated at row %d", ErrCorruptPage, row)
			}
			v = string(body[off : off+n])
			off += n
		default:
			return nil, fmt.Errorf("%w: cannot decode %s", ErrValueType, t)
		}
		if nulls.Contains(uint32(row)) {
			v = nil
		}
		values[row] = v
	}
	if off != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptPage, len(body)-off)
	}

	return NewMeasurePage(t, values, precision, scale)
}
