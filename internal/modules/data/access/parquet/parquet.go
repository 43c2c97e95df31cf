// Package parquet implements a minimal self-describing binary columnar
// container for the access service's per-asset persisted series. No
// third-party parquet library appears anywhere in the retrieved example
// pack (see DESIGN.md), so this narrow boundary is hand-rolled: a fixed
// magic header, a shared date index encoded as Unix-day int32s, and named
// float64 columns (NaN marks a gap). It is not a general-purpose parquet
// implementation and never claims to be one.
package parquet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const magic = "QLPQ1\n"

// Column is one named float64 series aligned to the container's date index.
type Column struct {
	Name   string
	Values []float64
}

// Encode writes dates and columns into the container format. Every column
// must have the same length as dates.
func Encode(dates []int32, columns []Column) ([]byte, error) {
	for _, c := range columns {
		if len(c.Values) != len(dates) {
			return nil, fmt.Errorf("parquet: column %q has %d values, want %d", c.Name, len(c.Values), len(dates))
		}
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(dates))); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(columns))); err != nil {
		return nil, err
	}
	for _, d := range dates {
		if err := binary.Write(&buf, binary.LittleEndian, d); err != nil {
			return nil, err
		}
	}
	for _, c := range columns {
		name := []byte(c.Name)
		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(name))); err != nil {
			return nil, err
		}
		buf.Write(name)
		for _, v := range c.Values {
			if err := binary.Write(&buf, binary.LittleEndian, math.Float64bits(v)); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

// Decode is Encode's inverse.
func Decode(data []byte) (dates []int32, columns []Column, err error) {
	r := bytes.NewReader(data)
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("parquet: read header: %w", err)
	}
	if string(header) != magic {
		return nil, nil, fmt.Errorf("parquet: bad magic %q", header)
	}

	var nRows, nCols uint32
	if err := binary.Read(r, binary.LittleEndian, &nRows); err != nil {
		return nil, nil, fmt.Errorf("parquet: read row count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nCols); err != nil {
		return nil, nil, fmt.Errorf("parquet: read column count: %w", err)
	}

	dates = make([]int32, nRows)
	for i := range dates {
		if err := binary.Read(r, binary.LittleEndian, &dates[i]); err != nil {
			return nil, nil, fmt.Errorf("parquet: read date %d: %w", i, err)
		}
	}

	columns = make([]Column, nCols)
	for i := range columns {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, nil, fmt.Errorf("parquet: read column %d name length: %w", i, err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, nil, fmt.Errorf("parquet: read column %d name: %w", i, err)
		}
		values := make([]float64, nRows)
		for j := range values {
			var bits uint64
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return nil, nil, fmt.Errorf("parquet: read column %d value %d: %w", i, j, err)
			}
			values[j] = math.Float64frombits(bits)
		}
		columns[i] = Column{Name: string(nameBytes), Values: values}
	}
	return dates, columns, nil
}

// EpochDay converts Unix seconds to whole days since the epoch without
// pulling timezone concerns into the codec -- callers own date semantics.
func EpochDay(unixSeconds int64) int32 {
	return int32(unixSeconds / 86400)
}
