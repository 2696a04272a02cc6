package haptools_api

import (
	"fmt"
	"strconv"
	"strings"
)

// Region defines a genomic region of interest on one contig
type Region struct {
	// The contig (chromosome) name to match
	Contig string

	// The 1-based inclusive bounds of the region. An End of 0 is treated as
	// though it was set to the last possible position
	Start, End int64
}

// ParseRegion parses a region of the form "chr1:100-200" or "chr7". A bare
// contig name matches the whole contig
func ParseRegion(input string) (Region, error) {
	contig, interval, found := strings.Cut(input, ":")
	if contig == "" {
		return Region{}, fmt.Errorf("invalid region %q: empty contig", input)
	}
	if !found {
		return Region{Contig: contig}, nil
	}

	startField, endField, found := strings.Cut(interval, "-")
	if !found {
		return Region{}, fmt.Errorf("invalid region %q: interval must be of the form <start>-<end>", input)
	}
	start, err := strconv.ParseInt(startField, 10, 64)
	if err != nil || start < 0 {
		return Region{}, fmt.Errorf("invalid region %q: bad start position %q", input, startField)
	}
	end, err := strconv.ParseInt(endField, 10, 64)
	if err != nil || end < start {
		return Region{}, fmt.Errorf("invalid region %q: bad end position %q", input, endField)
	}
	return Region{Contig: contig, Start: start, End: end}, nil
}

// Overlaps reports whether the 1-based inclusive interval [start, end]
// intersects the region's interval
func (r Region) Overlaps(start, end int64) bool {
	if r.End != 0 && start > r.End {
		return false
	}
	return end >= r.Start
}

func (r Region) String() string {
	if r.Start == 0 && r.End == 0 {
		return r.Contig
	}
	return fmt.Sprintf("%s:%d-%d", r.Contig, r.Start, r.End)
}
