package haptools_api

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	haplotypeColumns = 4
	variantColumns   = 5
)

// ParseRecord parses one data line against the schema. The line type is taken
// from the first column
func ParseRecord(line string, lineNumber int, schema *Schema) (Record, error) {
	fields := strings.Split(line, "\t")
	switch fields[0] {
	case "H":
		return parseHaplotype(fields, lineNumber, schema)
	case "V":
		return parseVariant(fields, lineNumber, schema)
	}
	return nil, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("unknown line type %q", fields[0])}
}

// Parse the fields of a haplotype line and return it as a Haplotype struct
func parseHaplotype(fields []string, lineNumber int, schema *Schema) (*Haplotype, error) {
	if len(fields) < haplotypeColumns+1 {
		return nil, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("H line has %d columns, expected at least %d", len(fields)-1, haplotypeColumns)}
	}

	haplotype := &Haplotype{
		Chromosome: fields[1],
		Id:         fields[4],
		Line:       lineNumber,
	}

	var err error
	haplotype.Start, haplotype.End, err = parseInterval(fields[2], fields[3], lineNumber)
	if err != nil {
		return nil, err
	}

	haplotype.Extra, err = parseExtras(fields[haplotypeColumns+1:], HaplotypeLine, lineNumber, schema)
	if err != nil {
		return nil, err
	}
	return haplotype, nil
}

// Parse the fields of a variant line and return it as a Variant struct
func parseVariant(fields []string, lineNumber int, schema *Schema) (*Variant, error) {
	if len(fields) < variantColumns+1 {
		return nil, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("V line has %d columns, expected at least %d", len(fields)-1, variantColumns)}
	}

	variant := &Variant{
		HaplotypeId: fields[1],
		Id:          fields[4],
		Allele:      fields[5],
		Line:        lineNumber,
	}

	var err error
	variant.Start, variant.End, err = parseInterval(fields[2], fields[3], lineNumber)
	if err != nil {
		return nil, err
	}

	variant.Extra, err = parseExtras(fields[variantColumns+1:], VariantLine, lineNumber, schema)
	if err != nil {
		return nil, err
	}
	return variant, nil
}

// Coerce the two position columns of a data line
func parseInterval(startField string, endField string, lineNumber int) (int64, int64, error) {
	start, err := strconv.ParseInt(startField, 10, 64)
	if err != nil {
		return 0, 0, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("start position %q is not an integer", startField)}
	}
	end, err := strconv.ParseInt(endField, 10, 64)
	if err != nil {
		return 0, 0, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("end position %q is not an integer", endField)}
	}
	if start < 0 {
		return 0, 0, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("start position %d is negative", start)}
	}
	if end < start {
		return 0, 0, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("end position %d precedes start position %d", end, start)}
	}
	return start, end, nil
}

// Coerce the extra columns of a data line by their declared format tags. The
// column count must match the declarations exactly
func parseExtras(columns []string, lineType LineType, lineNumber int, schema *Schema) ([]Value, error) {
	declarations := schema.FieldsFor(lineType)
	if len(columns) > len(declarations) {
		return nil, &UndeclaredFieldError{Line: lineNumber, LineType: lineType, Found: len(columns), Declared: len(declarations)}
	}
	if len(columns) < len(declarations) {
		return nil, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("%c line has %d extra columns but %d are declared", lineType, len(columns), len(declarations))}
	}

	values := make([]Value, len(columns))
	for i, column := range columns {
		field := declarations[i]
		switch field.Tag.Kind {
		case IntKind:
			parsed, err := strconv.ParseInt(column, 10, 64)
			if err != nil {
				return nil, &TypeCoercionError{Line: lineNumber, Field: field.Name, Value: column, Tag: field.Tag.String()}
			}
			values[i] = IntValue(parsed)
		case FloatKind:
			parsed, err := strconv.ParseFloat(column, 64)
			if err != nil {
				return nil, &TypeCoercionError{Line: lineNumber, Field: field.Name, Value: column, Tag: field.Tag.String()}
			}
			values[i] = FloatValue(parsed)
		default:
			values[i] = StrValue(column)
		}
	}
	return values, nil
}

// Format a single extra field value by its declared tag. Floats with a fixed
// precision use Go's %.*f verb, which rounds half to even
func formatValue(value Value, tag FormatTag) (string, error) {
	if value.Kind != tag.Kind {
		return "", fmt.Errorf("cannot format %s value with %s tag %q", value.Kind, tag.Kind, tag)
	}
	switch tag.Kind {
	case IntKind:
		return strconv.FormatInt(value.Int, 10), nil
	case StrKind:
		return value.Str, nil
	}
	if tag.Precision < 0 {
		return strconv.FormatFloat(value.Float, 'f', -1, 64), nil
	}
	return fmt.Sprintf("%.*f", tag.Precision, value.Float), nil
}

// Format the extra field values of a record in declaration order
func formatExtras(values []Value, lineType LineType, schema *Schema) ([]string, error) {
	declarations := schema.FieldsFor(lineType)
	if len(values) != len(declarations) {
		return nil, fmt.Errorf("%c record has %d extra values but schema declares %d", lineType, len(values), len(declarations))
	}
	columns := make([]string, len(values))
	for i, value := range values {
		column, err := formatValue(value, declarations[i].Tag)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", declarations[i].Name, err)
		}
		columns[i] = column
	}
	return columns, nil
}

// String serializes the haplotype to its tab-delimited line under the schema
func (h *Haplotype) String(schema *Schema) (string, error) {
	extras, err := formatExtras(h.Extra, HaplotypeLine, schema)
	if err != nil {
		return "", err
	}
	columns := append([]string{
		"H",
		h.Chromosome,
		strconv.FormatInt(h.Start, 10),
		strconv.FormatInt(h.End, 10),
		h.Id,
	}, extras...)
	return strings.Join(columns, "\t"), nil
}

// String serializes the variant to its tab-delimited line under the schema
func (v *Variant) String(schema *Schema) (string, error) {
	extras, err := formatExtras(v.Extra, VariantLine, schema)
	if err != nil {
		return "", err
	}
	columns := append([]string{
		"V",
		v.HaplotypeId,
		strconv.FormatInt(v.Start, 10),
		strconv.FormatInt(v.End, 10),
		v.Id,
		v.Allele,
	}, extras...)
	return strings.Join(columns, "\t"), nil
}

// Field returns the extra field value with the given declared name
func (h *Haplotype) Field(schema *Schema, name string) (Value, bool) {
	return fieldByName(h.Extra, schema.FieldsFor(HaplotypeLine), name)
}

// Field returns the extra field value with the given declared name
func (v *Variant) Field(schema *Schema, name string) (Value, bool) {
	return fieldByName(v.Extra, schema.FieldsFor(VariantLine), name)
}

func fieldByName(values []Value, declarations []ExtraField, name string) (Value, bool) {
	for i, field := range declarations {
		if field.Name == name && i < len(values) {
			return values[i], true
		}
	}
	return Value{}, false
}
