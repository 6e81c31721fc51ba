package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	nameColumn  = "Name"
	emailColumn = "Email"
)

// LoadContacts reads the contacts table at path. CSV files are read as text, anything else as an
// Excel workbook whose first sheet holds the table. Row order is kept.
func LoadContacts(path string) ([]Contact, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	default:
		rows, err = readWorkbook(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' => %v", ErrContactsNotFound, path, err)
	}

	return parseContacts(rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	// Excel's "CSV UTF-8" export starts with a byte order mark.
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// parseContacts maps the header row to the Name and Email columns and reads one contact per row.
func parseContacts(rows [][]string) ([]Contact, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrContactsSchema)
	}

	nameIdx, emailIdx := -1, -1
	for i, h := range rows[0] {
		switch h {
		case nameColumn:
			if nameIdx < 0 {
				nameIdx = i
			}
		case emailColumn:
			if emailIdx < 0 {
				emailIdx = i
			}
		}
	}

	var missing []string
	if nameIdx < 0 {
		missing = append(missing, nameColumn)
	}
	if emailIdx < 0 {
		missing = append(missing, emailColumn)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrContactsSchema, strings.Join(missing, ", "))
	}

	contacts := make([]Contact, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		contacts = append(contacts, Contact{
			Name:  cell(row, nameIdx),
			Email: cell(row, emailIdx),
		})
	}
	return contacts, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
