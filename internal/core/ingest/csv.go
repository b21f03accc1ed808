package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/agenthands/linkgraph/internal/core/model"
)

// Canonical column names a mapping may refer to.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldCompany     = "company"
	FieldPosition    = "position"
	FieldLocation    = "location"
	FieldSchool      = "school"
	FieldConnectedOn = "connected_on"
)

// Mapping assigns canonical fields to zero-based column indexes.
type Mapping map[int]string

// headerScanLimit bounds how many leading rows may precede the header.
const headerScanLimit = 10

var headerAliases = map[string]string{
	"first name":     FieldFirstName,
	"firstname":      FieldFirstName,
	"first":          FieldFirstName,
	"given name":     FieldFirstName,
	"last name":      FieldLastName,
	"lastname":       FieldLastName,
	"last":           FieldLastName,
	"surname":        FieldLastName,
	"email":          FieldEmail,
	"email address":  FieldEmail,
	"e mail":         FieldEmail,
	"company":        FieldCompany,
	"company name":   FieldCompany,
	"organization":   FieldCompany,
	"employer":       FieldCompany,
	"position":       FieldPosition,
	"title":          FieldPosition,
	"job title":      FieldPosition,
	"role":           FieldPosition,
	"location":       FieldLocation,
	"city":           FieldLocation,
	"region":         FieldLocation,
	"school":         FieldSchool,
	"university":     FieldSchool,
	"college":        FieldSchool,
	"education":      FieldSchool,
	"connected on":   FieldConnectedOn,
	"connected":      FieldConnectedOn,
	"date connected": FieldConnectedOn,
}

var knownFields = map[string]bool{
	FieldFirstName: true, FieldLastName: true, FieldEmail: true, FieldCompany: true,
	FieldPosition: true, FieldLocation: true, FieldSchool: true, FieldConnectedOn: true,
}

func inferenceField(f string) bool {
	return f == FieldCompany || f == FieldPosition || f == FieldLocation || f == FieldSchool
}

// ParseCSV reads a contact export. With an empty mapping the header row is
// located and mapped by name; leading preamble rows such as LinkedIn's
// "Notes:" block are skipped. Otherwise the first row is the header and the
// mapping is used as given.
func ParseCSV(r io.Reader, mapping Mapping) ([]model.Contact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, invalid(fmt.Errorf("malformed csv: %w", err))
	}
	records = dropBlank(records)
	if len(records) == 0 {
		return nil, invalid(errors.New("empty csv"))
	}

	var data [][]string
	if len(mapping) == 0 {
		header := -1
		for i := 0; i < len(records) && i < headerScanLimit; i++ {
			if m := DetectMapping(records[i]); hasInferenceField(m) {
				header, mapping = i, m
				break
			}
		}
		if header == -1 {
			return nil, invalid(errors.New("no recognizable header row"))
		}
		data = records[header+1:]
	} else {
		if err := validateMapping(mapping); err != nil {
			return nil, err
		}
		data = records[1:]
	}
	if len(data) == 0 {
		return nil, invalid(errors.New("csv has no data rows"))
	}

	contacts := make([]model.Contact, 0, len(data))
	for i, row := range data {
		contacts = append(contacts, toContact(i, row, mapping))
	}
	return contacts, nil
}

// DetectMapping maps header cells to canonical fields by name. Unknown
// headers are ignored; the first column claiming a field wins.
func DetectMapping(header []string) Mapping {
	m := Mapping{}
	claimed := map[string]bool{}
	for i, cell := range header {
		field, ok := headerAliases[normalizeHeader(cell)]
		if !ok || claimed[field] {
			continue
		}
		claimed[field] = true
		m[i] = field
	}
	return m
}

func validateMapping(m Mapping) error {
	if !hasInferenceField(m) {
		return invalid(errors.New("mapping names none of company, position, location or school"))
	}
	cols := make([]int, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	for _, col := range cols {
		if col < 0 {
			return invalid(fmt.Errorf("negative column index %d", col))
		}
		if !knownFields[m[col]] {
			return invalid(fmt.Errorf("unknown field %q for column %d", m[col], col))
		}
	}
	return nil
}

func hasInferenceField(m Mapping) bool {
	for _, f := range m {
		if inferenceField(f) {
			return true
		}
	}
	return false
}

func toContact(i int, row []string, m Mapping) model.Contact {
	var first, last, connected string
	c := model.Contact{ID: strconv.Itoa(i)}
	for col, field := range m {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		switch field {
		case FieldFirstName:
			first = v
		case FieldLastName:
			last = v
		case FieldEmail:
			c.Email = v
		case FieldCompany:
			c.Company = v
		case FieldPosition:
			c.Position = v
		case FieldLocation:
			c.Location = v
		case FieldSchool:
			c.School = v
		case FieldConnectedOn:
			connected = v
		}
	}

	c.Name = strings.TrimSpace(first + " " + last)
	switch {
	case c.Name != "":
		c.Label = c.Name
	case c.Company != "":
		c.Label = "Contact at " + c.Company
	default:
		c.Label = fmt.Sprintf("Contact %d", i+1)
	}
	if connected != "" {
		if t, err := model.ParseDate(connected); err == nil {
			c.ConnectedOn = &t
		}
	}
	return c
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, row := range records {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func invalid(err error) error {
	return model.NewError(model.KindInvalidInput, "parse_csv", "", err)
}
