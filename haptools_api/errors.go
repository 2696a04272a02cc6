package haptools_api

import "fmt"

// MalformedLineError is returned when a line has the wrong column count or an
// unparseable mandatory field
type MalformedLineError struct {
	// The 1-based line number of the offending line
	Line int

	// A description of what is wrong with the line
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed line %d: %s", e.Line, e.Reason)
}

// TypeCoercionError is returned when an extra field value cannot be parsed
// according to its declared format tag
type TypeCoercionError struct {
	// The 1-based line number of the offending line
	Line int

	// The name of the declared extra field
	Field string

	// The textual value that failed to parse
	Value string

	// The declared format tag of the field
	Tag string
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("line %d: value %q of field %q does not conform to format tag %q", e.Line, e.Value, e.Field, e.Tag)
}

// DuplicateFieldError is returned when a schema declares the same extra field
// name twice for one line type
type DuplicateFieldError struct {
	// The line type the field was declared for
	LineType LineType

	// The name of the duplicated field
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %q is declared more than once for %c lines", e.Name, e.LineType)
}

// UndeclaredFieldError is returned when a data line carries more extra columns
// than its line type declares
type UndeclaredFieldError struct {
	// The 1-based line number of the offending line
	Line int

	// The line type of the offending line
	LineType LineType

	// The number of extra columns found on the line
	Found int

	// The number of extra fields declared for the line type
	Declared int
}

func (e *UndeclaredFieldError) Error() string {
	return fmt.Sprintf("line %d: %c line carries %d extra columns but only %d are declared", e.Line, e.LineType, e.Found, e.Declared)
}

// DuplicateHaplotypeError is returned when two haplotype lines share an ID
type DuplicateHaplotypeError struct {
	// The 1-based line number of the second occurrence
	Line int

	// The duplicated haplotype ID
	Id string
}

func (e *DuplicateHaplotypeError) Error() string {
	return fmt.Sprintf("line %d: haplotype ID %q occurs more than once", e.Line, e.Id)
}

// DanglingVariantError is returned when a variant references a haplotype ID
// that does not resolve within the same file
type DanglingVariantError struct {
	// The 1-based line number of the offending variant
	Line int

	// The ID of the offending variant
	VariantId string

	// The haplotype ID that failed to resolve
	HaplotypeId string
}

func (e *DanglingVariantError) Error() string {
	return fmt.Sprintf("line %d: variant %q references unknown haplotype %q", e.Line, e.VariantId, e.HaplotypeId)
}

// NameCollisionError is returned when a haplotype ID equals a chromosome
// name. Both occupy the name column of the index, so they must not collide
type NameCollisionError struct {
	// The 1-based line number of the haplotype whose ID collides, 0 when
	// the collision was detected on programmatically supplied records
	Line int

	// The colliding name
	Id string
}

func (e *NameCollisionError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("haplotype ID %q collides with a chromosome name", e.Id)
	}
	return fmt.Sprintf("line %d: haplotype ID %q collides with a chromosome name", e.Line, e.Id)
}

// UnsortedFileError is returned when index construction or sorted output is
// requested over records that are not in index-compatible order
type UnsortedFileError struct {
	// The 1-based line number of the first out-of-order line, 0 when the
	// order violation was detected on programmatically supplied records
	Line int

	// A description of the order violation
	Reason string
}

func (e *UnsortedFileError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("records are not sorted: %s", e.Reason)
	}
	return fmt.Sprintf("line %d is not sorted: %s", e.Line, e.Reason)
}
