// Package codec converts artifacts to and from their slot encodings: CSV
// text for datasets and gob for trained models.
package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"autostreamml/internal/core/domain"
)

const utf8BOM = "\ufeff"

// ReadDataset parses a CSV table whose first record is the header.
func ReadDataset(r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no columns to parse from file", domain.ErrInvalidDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDataset, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	header = domain.NormalizeHeader(header)

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDataset, err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d",
				domain.ErrInvalidDataset, line, len(header), len(record))
		}
		rows = append(rows, record)
	}

	return domain.NewDataset(header, rows), nil
}

// WriteDataset renders the dataset as CSV with a header line.
func WriteDataset(w io.Writer, ds *domain.Dataset) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writeRecord(writer, &buf, ds.ColumnNames()); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := writeRecord(writer, &buf, row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// A lone empty field would be written as a blank line, which readers skip.
func writeRecord(writer *csv.Writer, buf *bytes.Buffer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func EncodeDataset(ds *domain.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeDataset(data []byte) (*domain.Dataset, error) {
	return ReadDataset(bytes.NewReader(data))
}
