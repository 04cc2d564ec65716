// Package tsv reads and writes feature-by-condition matrices in the simple
// tab-separated layout:
//
//	feature_ids	cond1	cond2
//	gene.1	1.234	0.5
//	gene.2		NA
//
// The first header cell names the row-id column and is otherwise ignored.
// Empty, "NA", "N/A" and "null" cells are missing values; "NaN" parses as a
// present NaN.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/featval/matrix"
)

// HeaderID is the first header cell written by Write.
const HeaderID = "feature_ids"

var (
	// ErrNoHeader is returned for input without a header line.
	ErrNoHeader = errors.New("tsv: missing header line")

	// ErrBadCell is returned for a cell that is neither a number nor a
	// missing-value marker.
	ErrBadCell = errors.New("tsv: malformed cell")
)

// IsMissing reports whether cell is a missing-value marker.
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "n/a", "null":
		return true
	}

	return false
}

// Read parses a matrix. Rows shorter than the header are padded with missing
// cells; longer rows fail with matrix.ErrDimensionMismatch. Blank lines are
// skipped.
func Read(r io.Reader, opts ...matrix.Option) (*matrix.FeatureMatrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("tsv: header: %w", err)
	}
	colIDs := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		colIDs = append(colIDs, strings.TrimSpace(h))
	}

	var (
		rowIDs []string
		values [][]*float64
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tsv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec)-1 > len(colIDs) {
			return nil, fmt.Errorf("tsv: line %d: %d values for %d columns: %w",
				line, len(rec)-1, len(colIDs), matrix.ErrDimensionMismatch)
		}
		row := make([]*float64, len(colIDs))
		for j, cell := range rec[1:] {
			if IsMissing(cell) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("tsv: line %d column %q: %q: %w", line, colIDs[j], cell, ErrBadCell)
			}
			row[j] = &v
		}
		rowIDs = append(rowIDs, strings.TrimSpace(rec[0]))
		values = append(values, row)
	}

	return matrix.NewFeatureMatrix(rowIDs, colIDs, values, opts...)
}

// Write renders m with a "feature_ids" header. Missing cells are written as
// empty fields; values use the shortest representation that round-trips.
func Write(w io.Writer, m matrix.Matrix) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(append([]string{HeaderID}, m.ColIDs()...)); err != nil {
		return err
	}
	rec := make([]string, m.Cols()+1)
	rowIDs := m.RowIDs()
	for i := 0; i < m.Rows(); i++ {
		rec[0] = rowIDs[i]
		for j := 0; j < m.Cols(); j++ {
			v, ok, err := m.At(i, j)
			if err != nil {
				return err
			}
			rec[j+1] = ""
			if ok {
				rec[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
