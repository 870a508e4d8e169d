package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Columns understood by Parse. Unknown columns are ignored.
const (
	colFirstName   = "first_name"
	colLastName    = "last_name"
	colFullName    = "full_name"
	colEmail       = "email"
	colPhone       = "phone"
	colAddress1    = "address_line1"
	colAddress2    = "address_line2"
	colCity        = "city"
	colState       = "state"
	colPostalCode  = "postal_code"
	colCountry     = "country"
	colBirthDate   = "date_of_birth"
	colAnniversary = "wedding_anniversary_date"
	colGender      = "gender"
	colGeneration  = "generation"
	colHousehold   = "household_name"
	colMother      = "mother_name"
	colFather      = "father_name"
	colSpouse      = "spouse_name"
	colDeceased    = "is_deceased"
	colPhotoURL    = "photo_url"
)

// Record is one trimmed CSV row keyed by column name.
type Record struct {
	Line   int
	fields map[string]string
}

func (r Record) Get(column string) string {
	return r.fields[column]
}

// Name is the "first last" key other rows use to reference this one.
func (r Record) Name() string {
	return nameKey(r.Get(colFirstName) + " " + r.Get(colLastName))
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Parse reads a header row followed by person rows. Blank rows are skipped.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	if !slices.Contains(columns, colFirstName) || !slices.Contains(columns, colLastName) {
		return nil, errors.New("csv must have first_name and last_name columns")
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		fields := make(map[string]string, len(columns))
		blank := true
		for i, value := range row {
			if i >= len(columns) {
				break
			}
			value = strings.TrimSpace(value)
			if value != "" {
				blank = false
			}
			fields[columns[i]] = value
		}
		if blank {
			continue
		}
		rec := Record{Line: line, fields: fields}
		if rec.Get(colFirstName) == "" || rec.Get(colLastName) == "" {
			return nil, fmt.Errorf("line %d: first_name and last_name are required", line)
		}
		records = append(records, rec)
	}
	return records, nil
}
