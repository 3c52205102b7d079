package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ayurpredict/ml"
)

var header = []string{"symptoms", "dosha", "num_symptoms", "mixed"}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.Symptoms, string(r.Dosha), strconv.Itoa(r.NumSymptoms), strconv.FormatBool(r.Mixed)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads rows. Only the symptoms and dosha columns are required; the
// column order is taken from the header.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, err
	}
	cols := make(map[string]int, len(head))
	for i, name := range head {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	symptomsCol, ok := cols["symptoms"]
	if !ok {
		return nil, errors.New("dataset has no symptoms column")
	}
	doshaCol, ok := cols["dosha"]
	if !ok {
		return nil, errors.New("dataset has no dosha column")
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if symptomsCol >= len(record) || doshaCol >= len(record) {
			return nil, fmt.Errorf("line %d: missing columns", line)
		}
		label, err := ml.ParseLabel(record[doshaCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := Row{Symptoms: record[symptomsCol], Dosha: label}
		if idx, ok := cols["num_symptoms"]; ok && idx < len(record) {
			row.NumSymptoms, _ = strconv.Atoi(record[idx])
		}
		if idx, ok := cols["mixed"]; ok && idx < len(record) {
			row.Mixed, _ = strconv.ParseBool(record[idx])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func SaveCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
