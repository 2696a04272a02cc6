package haptools_api

import (
	"fmt"
	"strconv"
	"strings"
)

// The kind of a typed extra field value
type Kind int

const (
	IntKind Kind = iota
	FloatKind
	StrKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "integer"
	case FloatKind:
		return "float"
	default:
		return "string"
	}
}

// A FormatTag describes how the values of one extra field are parsed and
// formatted. Tags follow the .hap declaration lines:
// "d" for integers, "s" for strings and "f" or ".<N>f" for floats, where N
// fixes the number of decimals on output
type FormatTag struct {
	// The kind of value the tag describes
	Kind Kind

	// The number of decimals for float tags, -1 when not fixed
	Precision int
}

// ParseFormatTag parses a format tag from a schema declaration line
func ParseFormatTag(tag string) (FormatTag, error) {
	switch tag {
	case "d":
		return FormatTag{Kind: IntKind, Precision: -1}, nil
	case "s":
		return FormatTag{Kind: StrKind, Precision: -1}, nil
	case "f":
		return FormatTag{Kind: FloatKind, Precision: -1}, nil
	}
	if strings.HasPrefix(tag, ".") && strings.HasSuffix(tag, "f") {
		precision, err := strconv.Atoi(tag[1 : len(tag)-1])
		if err == nil && precision >= 0 {
			return FormatTag{Kind: FloatKind, Precision: precision}, nil
		}
	}
	return FormatTag{}, fmt.Errorf("unknown format tag %q", tag)
}

func (t FormatTag) String() string {
	switch t.Kind {
	case IntKind:
		return "d"
	case StrKind:
		return "s"
	}
	if t.Precision < 0 {
		return "f"
	}
	return fmt.Sprintf(".%df", t.Precision)
}

// A typed value of an extra field
type Value struct {
	// The kind of the value
	Kind Kind

	// The value when Kind is IntKind
	Int int64

	// The value when Kind is FloatKind
	Float float64

	// The value when Kind is StrKind
	Str string
}

// IntValue creates an integer extra field value
func IntValue(v int64) Value { return Value{Kind: IntKind, Int: v} }

// FloatValue creates a float extra field value
func FloatValue(v float64) Value { return Value{Kind: FloatKind, Float: v} }

// StrValue creates a string extra field value
func StrValue(v string) Value { return Value{Kind: StrKind, Str: v} }

// A struct representing one extra field declaration of the schema
type ExtraField struct {
	// The name of the field, unique within its line type
	Name string

	// The format tag of the field
	Tag FormatTag

	// The free-text description of the field
	Description string
}

// The schema holds the ordered extra field declarations of a .hap file.
// It is built once, from the header or by the caller, and must not change
// once data lines are being read or written
type Schema struct {
	haplotype []ExtraField
	variant   []ExtraField
}

// NewSchema creates a schema without any extra field declarations
func NewSchema() *Schema {
	return &Schema{}
}

// Declare appends an extra field declaration for the given line type. The
// declaration order fixes the column position of the field
func (s *Schema) Declare(lineType LineType, name string, tag string, description string) error {
	if lineType != HaplotypeLine && lineType != VariantLine {
		return fmt.Errorf("unknown line type %q", string(lineType))
	}
	for _, field := range s.FieldsFor(lineType) {
		if field.Name == name {
			return &DuplicateFieldError{LineType: lineType, Name: name}
		}
	}
	formatTag, err := ParseFormatTag(tag)
	if err != nil {
		return err
	}
	field := ExtraField{Name: name, Tag: formatTag, Description: description}
	if lineType == HaplotypeLine {
		s.haplotype = append(s.haplotype, field)
	} else {
		s.variant = append(s.variant, field)
	}
	return nil
}

// FieldsFor returns the ordered extra field declarations of the given line
// type. The returned slice must not be modified
func (s *Schema) FieldsFor(lineType LineType) []ExtraField {
	if lineType == HaplotypeLine {
		return s.haplotype
	}
	return s.variant
}

// DeclarationLines returns the schema declaration header lines, H declarations
// first, each of the form "#<H|V>\t<name>\t<tag>\t<description>"
func (s *Schema) DeclarationLines() []string {
	lines := []string{}
	for _, lineType := range []LineType{HaplotypeLine, VariantLine} {
		for _, field := range s.FieldsFor(lineType) {
			lines = append(lines, fmt.Sprintf("#%c\t%s\t%s\t%s", lineType, field.Name, field.Tag, field.Description))
		}
	}
	return lines
}
