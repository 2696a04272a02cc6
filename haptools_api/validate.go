package haptools_api

import (
	"errors"
	"fmt"
	"sort"
)

// The index-compatible ordering of data lines: line type symbol first, then
// the name column, then the two positions, all non-decreasing
type sortKey struct {
	lineType LineType
	name     string
	start    int64
	end      int64
}

func keyOf(record Record) sortKey {
	start, end := record.Span()
	return sortKey{
		lineType: record.Type(),
		name:     record.RefName(),
		start:    start,
		end:      end,
	}
}

func (a sortKey) less(b sortKey) bool {
	if a.lineType != b.lineType {
		return a.lineType < b.lineType
	}
	if a.name != b.name {
		return a.name < b.name
	}
	if a.start != b.start {
		return a.start < b.start
	}
	return a.end < b.end
}

// Validate runs the whole-file checks over the record set: haplotype ID
// uniqueness and variant to haplotype referential integrity. All dangling
// variant references are collected and reported together
func (f *HapFile) Validate() error {
	haplotypes := map[string]bool{}
	for _, record := range f.Records {
		if h, ok := record.(*Haplotype); ok {
			if haplotypes[h.Id] {
				return &DuplicateHaplotypeError{Line: h.Line, Id: h.Id}
			}
			haplotypes[h.Id] = true
		}
	}

	var dangling []error
	for _, record := range f.Records {
		if v, ok := record.(*Variant); ok && !haplotypes[v.HaplotypeId] {
			dangling = append(dangling, &DanglingVariantError{
				Line:        v.Line,
				VariantId:   v.Id,
				HaplotypeId: v.HaplotypeId,
			})
		}
	}
	return errors.Join(dangling...)
}

// CheckSorted verifies the index-compatible sort order of the record set and
// returns an UnsortedFileError naming the first out-of-order line otherwise
func (f *HapFile) CheckSorted() error {
	var previous sortKey
	for i, record := range f.Records {
		key := keyOf(record)
		if i > 0 && key.less(previous) {
			return &UnsortedFileError{
				Line:   record.LineNumber(),
				Reason: fmt.Sprintf("%c line for %q at position %d follows a later record", key.lineType, key.name, key.start),
			}
		}
		previous = key
	}
	return nil
}

// CheckIndexable verifies everything index construction relies on: the record
// set validates, it is sorted, and no haplotype ID collides with a chromosome
// name (both occupy the name column of the index)
func (f *HapFile) CheckIndexable() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := f.CheckSorted(); err != nil {
		return err
	}

	chromosomes := map[string]bool{}
	for _, h := range f.Haplotypes() {
		chromosomes[h.Chromosome] = true
	}
	for _, h := range f.Haplotypes() {
		if chromosomes[h.Id] {
			return &NameCollisionError{Line: h.Line, Id: h.Id}
		}
	}
	return nil
}

// Sort reorders the record set into index-compatible order. Sorting is stable,
// so records with equal keys keep their file order
func (f *HapFile) Sort() {
	sort.SliceStable(f.Records, func(i, j int) bool {
		return keyOf(f.Records[i]).less(keyOf(f.Records[j]))
	})
}
