package haptools_api

// The line type symbol in the first column of every .hap data line
type LineType byte

const (
	// A named genomic interval representing one haplotype
	HaplotypeLine LineType = 'H'

	// A genomic interval belonging to exactly one haplotype, carrying an allele
	VariantLine LineType = 'V'
)

// A record is a single data line of a .hap file
type Record interface {
	// The line type symbol of the record
	Type() LineType

	// The value of the name column used for indexing
	// This is the chromosome for haplotypes and the haplotype ID for variants
	RefName() string

	// The 1-based inclusive interval of the record
	Span() (start, end int64)

	// The tab-delimited text of the record under the given schema
	String(schema *Schema) (string, error)

	// The 1-based line number in the source file
	// This is 0 for records constructed programmatically
	LineNumber() int
}

// The struct representing the header of a .hap file in a parseable format
type Header struct {
	// The extra field declarations for haplotype and variant lines
	Schema *Schema

	// All comment lines that are not schema declarations, kept verbatim
	// Schema declaration lines are not stored here; they are regenerated
	// from the schema on write
	Comments []string
}

// A struct representing a haplotype line (H) in the .hap file
type Haplotype struct {
	// The chromosome the haplotype is located on
	Chromosome string

	// The 1-based start position of the haplotype
	Start int64

	// The inclusive end position of the haplotype
	End int64

	// The ID of the haplotype, unique within the file
	Id string

	// The extra field values, in the order of the H declarations
	Extra []Value

	// The 1-based line number in the source file, 0 when constructed
	Line int
}

// A struct representing a variant line (V) in the .hap file
type Variant struct {
	// The ID of the haplotype this variant belongs to
	// This is a weak reference that must resolve within the same file
	HaplotypeId string

	// The 1-based start position of the variant
	Start int64

	// The inclusive end position of the variant
	End int64

	// The ID of the variant
	Id string

	// The allele of the variant
	Allele string

	// The extra field values, in the order of the V declarations
	Extra []Value

	// The 1-based line number in the source file, 0 when constructed
	Line int
}

// A struct representing a whole .hap file
type HapFile struct {
	// The header of the file
	Header Header

	// All data lines of the file, in file order
	Records []Record
}

func (h *Haplotype) Type() LineType       { return HaplotypeLine }
func (h *Haplotype) RefName() string      { return h.Chromosome }
func (h *Haplotype) Span() (int64, int64) { return h.Start, h.End }
func (h *Haplotype) LineNumber() int      { return h.Line }

func (v *Variant) Type() LineType       { return VariantLine }
func (v *Variant) RefName() string      { return v.HaplotypeId }
func (v *Variant) Span() (int64, int64) { return v.Start, v.End }
func (v *Variant) LineNumber() int      { return v.Line }

// NewHapFile creates an empty .hap file with the given schema
func NewHapFile(schema *Schema) *HapFile {
	if schema == nil {
		schema = NewSchema()
	}
	return &HapFile{
		Header: Header{Schema: schema},
	}
}

// Haplotypes returns all haplotype records in file order
func (f *HapFile) Haplotypes() []*Haplotype {
	haplotypes := []*Haplotype{}
	for _, record := range f.Records {
		if h, ok := record.(*Haplotype); ok {
			haplotypes = append(haplotypes, h)
		}
	}
	return haplotypes
}

// Variants returns all variant records in file order
func (f *HapFile) Variants() []*Variant {
	variants := []*Variant{}
	for _, record := range f.Records {
		if v, ok := record.(*Variant); ok {
			variants = append(variants, v)
		}
	}
	return variants
}

// VariantsOf returns the variants referencing the given haplotype ID, in file order
func (f *HapFile) VariantsOf(haplotypeId string) []*Variant {
	variants := []*Variant{}
	for _, record := range f.Records {
		if v, ok := record.(*Variant); ok && v.HaplotypeId == haplotypeId {
			variants = append(variants, v)
		}
	}
	return variants
}
