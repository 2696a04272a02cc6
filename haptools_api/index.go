package haptools_api

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/tabix"
	lru "github.com/hashicorp/golang-lru/v2"
)

// The suffix of the index file accompanying an indexed .hap.gz file
const IndexSuffix = ".tbi"

// The largest position the classic tabix binning scheme can hold
const maxIndexedPosition = 1 << 29

// The number of per-haplotype variant fetches an indexed reader caches
const variantCacheSize = 64

// tabixSpan adapts one data line to the record interface of the tabix index.
// The index bins with 0-based half-open coordinates while .hap positions are
// 1-based inclusive
type tabixSpan struct {
	name  string
	start int64
	end   int64
}

func (s tabixSpan) RefName() string { return s.name }

func (s tabixSpan) Start() int {
	if s.start < 1 {
		return 0
	}
	return int(s.start) - 1
}

func (s tabixSpan) End() int { return int(s.end) }

// IndexFile builds the tabix index of a sorted, bgzf-compressed .hap file and
// persists it next to the file as <path>.tbi. The single pass over the file
// also runs the validator's checks: duplicate haplotype IDs, dangling variant
// references (detectable in one pass because sorted files keep all H lines
// ahead of all V lines) and, above all, the sort order the index relies on
func IndexFile(path string) error {
	if !strings.HasSuffix(path, ".gz") {
		return fmt.Errorf("%s: only bgzf-compressed files can be indexed", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	bgReader, err := bgzf.NewReader(file, 1)
	if err != nil {
		return fmt.Errorf("opening bgzf stream: %w", err)
	}
	defer bgReader.Close()

	// tabix.New initializes the index's unexported name map; a struct
	// literal leaves it nil and IDs() assignments below would panic
	index := tabix.New()
	index.NameColumn = 2
	index.BeginColumn = 3
	index.EndColumn = 4
	index.MetaChar = '#'
	header := &Header{Schema: NewSchema()}

	var (
		lineNumber   int
		inBody       bool
		previous     sortKey
		haplotypeIds = map[string]int{}
		chromosomes  = map[string]bool{}
		unresolved   []*DanglingVariantError
	)
	for {
		line, chunk, err := readBgzfLine(bgReader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		lineNumber++

		if strings.HasPrefix(line, "#") {
			if inBody {
				return &MalformedLineError{Line: lineNumber, Reason: "comment line after the first data line"}
			}
			if err := header.parseLine(line, lineNumber); err != nil {
				return err
			}
			continue
		}

		record, err := ParseRecord(line, lineNumber, header.Schema)
		if err != nil {
			return err
		}
		key := keyOf(record)
		if inBody && key.less(previous) {
			return &UnsortedFileError{
				Line:   lineNumber,
				Reason: fmt.Sprintf("%c line for %q at position %d follows a later record", key.lineType, key.name, key.start),
			}
		}
		previous = key
		inBody = true

		switch rec := record.(type) {
		case *Haplotype:
			if haplotypeIds[rec.Id] != 0 {
				return &DuplicateHaplotypeError{Line: lineNumber, Id: rec.Id}
			}
			haplotypeIds[rec.Id] = lineNumber
			chromosomes[rec.Chromosome] = true
		case *Variant:
			// Sorted files keep all H lines ahead of all V lines, but the
			// reference is only reported once the sort check has cleared the
			// whole file, so an unsorted file fails as unsorted, not dangling
			if haplotypeIds[rec.HaplotypeId] == 0 {
				unresolved = append(unresolved, &DanglingVariantError{Line: lineNumber, VariantId: rec.Id, HaplotypeId: rec.HaplotypeId})
			}
		}

		if key.end > maxIndexedPosition {
			return fmt.Errorf("line %d: position %d exceeds the tabix limit of %d", lineNumber, key.end, maxIndexedPosition)
		}
		if err := index.Add(tabixSpan{name: key.name, start: key.start, end: key.end}, chunk, true, true); err != nil {
			return fmt.Errorf("adding line %d to the index: %w", lineNumber, err)
		}
		// Add appends first-seen names to the reference table but does not
		// register them in the live ID map, so without this every later
		// line on the same reference would mint a duplicate reference
		ids := index.IDs()
		if _, known := ids[key.name]; !known {
			ids[key.name] = len(index.Names()) - 1
		}
	}

	if len(unresolved) > 0 {
		return unresolved[0]
	}
	for id, line := range haplotypeIds {
		if chromosomes[id] {
			return &NameCollisionError{Line: line, Id: id}
		}
	}

	return writeIndex(path+IndexSuffix, index)
}

// Persist the index. The tabix codec is compression agnostic, the file on
// disk is bgzf-wrapped as external tabix tooling expects
func writeIndex(path string, index *tabix.Index) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	bgWriter := bgzf.NewWriter(file, 1)
	if err := tabix.WriteTo(bgWriter, index); err != nil {
		bgWriter.Close()
		file.Close()
		return fmt.Errorf("writing index: %w", err)
	}
	if err := bgWriter.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// readIndex loads a persisted tabix index
func readIndex(path string) (*tabix.Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// compress/gzip handles the multistream bgzf wrapping
	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	defer gzReader.Close()

	index, err := tabix.ReadFrom(gzReader)
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", path, err)
	}
	return index, nil
}

// An IndexedReader answers region-bounded queries over an indexed .hap.gz
// file without scanning it fully. The header, the loaded index and the
// variant cache are read-only after construction; the bgzf cursor is not,
// so run one query at a time per reader and open one reader per goroutine
type IndexedReader struct {
	file   *os.File
	bg     *bgzf.Reader
	header *Header
	index  *tabix.Index
	refs   map[string]bool
	cache  *lru.Cache[string, []*Variant]
}

// OpenIndexed opens a bgzf-compressed .hap file along with its .tbi index
func OpenIndexed(path string) (*IndexedReader, error) {
	index, err := readIndex(path + IndexSuffix)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	bgReader, err := bgzf.NewReader(file, 1)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("opening bgzf stream: %w", err)
	}

	reader := &IndexedReader{
		file:   file,
		bg:     bgReader,
		header: &Header{Schema: NewSchema()},
		index:  index,
		refs:   map[string]bool{},
	}
	for _, name := range index.Names() {
		reader.refs[name] = true
	}
	reader.cache, _ = lru.New[string, []*Variant](variantCacheSize)

	if err := reader.readHeader(); err != nil {
		reader.Close()
		return nil, err
	}
	return reader, nil
}

// Parse the contiguous header block at the start of the file
func (r *IndexedReader) readHeader() error {
	lineNumber := 0
	for {
		line, _, err := readBgzfLine(r.bg)
		if errors.Is(err, io.EOF) || (err == nil && !strings.HasPrefix(line, "#")) {
			return nil
		}
		if err != nil {
			return err
		}
		lineNumber++
		if err := r.header.parseLine(line, lineNumber); err != nil {
			return err
		}
	}
}

// Header returns the parsed header of the file
func (r *IndexedReader) Header() *Header {
	return r.header
}

// Close releases the underlying file handles
func (r *IndexedReader) Close() error {
	err := r.bg.Close()
	if cerr := r.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// chunks returns the candidate bgzf chunks for a name column value and a
// 1-based inclusive interval. An end of 0 means no upper bound. Unknown
// names yield no chunks, like a tabix fetch on an absent sequence
func (r *IndexedReader) chunks(name string, start, end int64) ([]bgzf.Chunk, error) {
	if !r.refs[name] {
		return nil, nil
	}
	if start < 1 {
		start = 1
	}
	if end == 0 || end > maxIndexedPosition {
		end = maxIndexedPosition
	}
	return r.index.Chunks(name, int(start)-1, int(end))
}

// Query starts a region query: the haplotypes on the region's contig whose
// intervals intersect it, in file order, followed by the variants of those
// haplotypes inside the same interval, in file order. The result is lazy;
// records are only decoded as Next is called, and an abandoned query leaves
// the reader reusable
func (r *IndexedReader) Query(region Region) *Query {
	return &Query{reader: r, region: region}
}

// A Query iterates over the result of IndexedReader.Query in the manner of
// bufio.Scanner
type Query struct {
	reader *IndexedReader
	region Region

	started    bool
	done       bool
	err        error
	current    Record
	haplotypes []*Haplotype

	scanning   bool
	seenContig bool

	hapIndex     int
	variants     []*Variant
	variantIndex int
}

// Next advances the query to its next record. It returns false when the
// query is exhausted or an error occurred
func (q *Query) Next() bool {
	if q.err != nil || q.done {
		return false
	}
	if !q.started {
		q.started = true
		chunks, err := q.reader.chunks(q.region.Contig, q.region.Start, q.region.End)
		if err != nil {
			q.err = err
			return false
		}
		if len(chunks) > 0 {
			if err := q.reader.bg.Seek(chunks[0].Begin); err != nil {
				q.err = err
				return false
			}
			q.scanning = true
		}
	}

	for q.scanning {
		record, stop, err := q.scanHaplotype()
		if err != nil {
			q.err = err
			return false
		}
		if stop {
			q.scanning = false
			q.finishHaplotypes()
			break
		}
		if record != nil {
			q.current = record
			return true
		}
	}

	return q.nextVariant()
}

// scanHaplotype decodes the next line of the haplotype scan. It reports
// stop once sort order guarantees that no further haplotype can match
func (q *Query) scanHaplotype() (Record, bool, error) {
	line, _, err := readBgzfLine(q.reader.bg)
	if errors.Is(err, io.EOF) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if strings.HasPrefix(line, "#") {
		return nil, false, nil
	}
	record, err := ParseRecord(line, 0, q.reader.header.Schema)
	if err != nil {
		return nil, false, err
	}

	onContig := record.Type() == HaplotypeLine && record.RefName() == q.region.Contig
	if !onContig {
		// Sorted files keep the contig's H lines contiguous, so the first
		// foreign line after them ends the scan
		if q.seenContig {
			return nil, true, nil
		}
		return nil, false, nil
	}
	q.seenContig = true

	start, end := record.Span()
	if q.region.End != 0 && start > q.region.End {
		return nil, true, nil
	}
	if !q.region.Overlaps(start, end) {
		return nil, false, nil
	}
	haplotype := record.(*Haplotype)
	q.haplotypes = append(q.haplotypes, haplotype)
	return haplotype, false, nil
}

// finishHaplotypes fixes the order in which variant groups are emitted. The
// V block of a sorted file is ordered by haplotype ID, not by the genomic
// position of the parent haplotype
func (q *Query) finishHaplotypes() {
	sort.SliceStable(q.haplotypes, func(i, j int) bool {
		return q.haplotypes[i].Id < q.haplotypes[j].Id
	})
}

// nextVariant emits the variants of the matched haplotypes, restricted to
// the query interval
func (q *Query) nextVariant() bool {
	for {
		if q.variantIndex < len(q.variants) {
			q.current = q.variants[q.variantIndex]
			q.variantIndex++
			return true
		}
		if q.hapIndex >= len(q.haplotypes) {
			q.done = true
			return false
		}

		haplotype := q.haplotypes[q.hapIndex]
		q.hapIndex++
		all, err := q.reader.variantsOf(haplotype.Id)
		if err != nil {
			q.err = err
			return false
		}
		q.variants = q.variants[:0]
		for _, variant := range all {
			if q.region.Overlaps(variant.Start, variant.End) {
				q.variants = append(q.variants, variant)
			}
		}
		q.variantIndex = 0
	}
}

// Record returns the record produced by the last successful call to Next
func (q *Query) Record() Record {
	return q.current
}

// Err returns the first error the query ran into, if any
func (q *Query) Err() error {
	return q.err
}

// variantsOf fetches all variants referencing a haplotype ID through the
// index. Fetches are cached per reader
func (r *IndexedReader) variantsOf(haplotypeId string) ([]*Variant, error) {
	if cached, ok := r.cache.Get(haplotypeId); ok {
		return cached, nil
	}

	chunks, err := r.chunks(haplotypeId, 1, 0)
	if err != nil {
		return nil, err
	}
	variants := []*Variant{}
	if len(chunks) == 0 {
		r.cache.Add(haplotypeId, variants)
		return variants, nil
	}

	if err := r.bg.Seek(chunks[0].Begin); err != nil {
		return nil, err
	}
	seen := false
	for {
		line, _, err := readBgzfLine(r.bg)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		record, err := ParseRecord(line, 0, r.header.Schema)
		if err != nil {
			return nil, err
		}
		variant, ok := record.(*Variant)
		if !ok || variant.HaplotypeId != haplotypeId {
			if seen {
				break
			}
			continue
		}
		seen = true
		variants = append(variants, variant)
	}

	r.cache.Add(haplotypeId, variants)
	return variants, nil
}
