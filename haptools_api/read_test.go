package haptools_api

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleHap = `# orderH beta
#H	beta	.2f	Effect size
#V	score	d	Per-variant score
H	chr1	100	200	hap1	0.50
H	chr2	50	150	hap2	1.25
V	hap1	100	150	rs123	A	7
V	hap2	60	60	rs456	T	-2
`

func readAll(t *testing.T, input string) *HapFile {
	t.Helper()
	reader, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	hapFile := &HapFile{Header: *reader.Header()}
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return hapFile
		}
		require.NoError(t, err)
		hapFile.Records = append(hapFile.Records, record)
	}
}

func TestReader_Example(t *testing.T) {
	hapFile := readAll(t, exampleHap)

	assert.Equal(t, []string{"# orderH beta"}, hapFile.Header.Comments)
	require.Len(t, hapFile.Header.Schema.FieldsFor(HaplotypeLine), 1)
	require.Len(t, hapFile.Header.Schema.FieldsFor(VariantLine), 1)

	haplotypes := hapFile.Haplotypes()
	variants := hapFile.Variants()
	require.Len(t, haplotypes, 2)
	require.Len(t, variants, 2)

	assert.Equal(t, "hap1", haplotypes[0].Id)
	assert.Equal(t, []Value{FloatValue(0.5)}, haplotypes[0].Extra)
	assert.Equal(t, 4, haplotypes[0].Line)

	assert.Equal(t, "rs456", variants[1].Id)
	assert.Equal(t, []Value{IntValue(-2)}, variants[1].Extra)
	assert.Equal(t, 7, variants[1].Line)

	require.Len(t, hapFile.VariantsOf("hap1"), 1)
	assert.Equal(t, "rs123", hapFile.VariantsOf("hap1")[0].Id)
}

func TestReader_NoTrailingNewline(t *testing.T) {
	hapFile := readAll(t, "H\tchr1\t100\t200\thap1")
	require.Len(t, hapFile.Records, 1)
}

func TestReader_CommentAfterData(t *testing.T) {
	reader, err := NewReader(strings.NewReader("H\tchr1\t100\t200\thap1\n# too late\n"))
	require.NoError(t, err)

	_, err = reader.Next()
	require.NoError(t, err)

	_, err = reader.Next()
	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
}

func TestReader_DeclarationAfterData(t *testing.T) {
	reader, err := NewReader(strings.NewReader("H\tchr1\t100\t200\thap1\n#H\tbeta\t.2f\tEffect size\n"))
	require.NoError(t, err)

	_, err = reader.Next()
	require.NoError(t, err)
	_, err = reader.Next()
	var malformed *MalformedLineError
	assert.ErrorAs(t, err, &malformed)
}

func TestReader_BadDeclaration(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"missing description", "#H\tbeta\t.2f\n"},
		{"unknown tag", "#H\tbeta\tq\tEffect size\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tc.input))
			var malformed *MalformedLineError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestReader_DuplicateDeclaration(t *testing.T) {
	input := "#H\tbeta\t.2f\tEffect size\n#H\tbeta\td\tAgain\n"
	_, err := NewReader(strings.NewReader(input))
	var duplicate *DuplicateFieldError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "beta", duplicate.Name)
}

func TestReader_HeaderOnly(t *testing.T) {
	reader, err := NewReader(strings.NewReader("# just a comment\n"))
	require.NoError(t, err)
	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_Empty(t *testing.T) {
	reader, err := NewReader(strings.NewReader(""))
	require.NoError(t, err)
	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}
