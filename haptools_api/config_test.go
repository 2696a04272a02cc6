package haptools_api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleConfig = `haplotype:
  - name: beta
    type: float
    description: Effect size
  - name: ancestry
    type: string
    description: Local ancestry label
    default: unknown
variant:
  - name: score
    type: integer
    description: Per-variant score
    default: "0"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSchemaConfig(t *testing.T) {
	config, err := ReadSchemaConfig(writeConfig(t, exampleConfig))
	require.NoError(t, err)

	schema, err := config.Schema()
	require.NoError(t, err)

	haplotypeFields := schema.FieldsFor(HaplotypeLine)
	require.Len(t, haplotypeFields, 2)
	assert.Equal(t, "beta", haplotypeFields[0].Name)
	assert.Equal(t, FloatKind, haplotypeFields[0].Tag.Kind)
	assert.Equal(t, StrKind, haplotypeFields[1].Tag.Kind)

	variantFields := schema.FieldsFor(VariantLine)
	require.Len(t, variantFields, 1)
	assert.Equal(t, IntKind, variantFields[0].Tag.Kind)
}

func TestReadSchemaConfig_RawTags(t *testing.T) {
	config, err := ReadSchemaConfig(writeConfig(t, "haplotype:\n  - name: beta\n    type: .2f\n    description: Effect size\n"))
	require.NoError(t, err)

	schema, err := config.Schema()
	require.NoError(t, err)
	assert.Equal(t, 2, schema.FieldsFor(HaplotypeLine)[0].Tag.Precision)
}

func TestReadSchemaConfig_BadType(t *testing.T) {
	_, err := ReadSchemaConfig(writeConfig(t, "haplotype:\n  - name: beta\n    type: complex\n    description: nope\n"))
	assert.Error(t, err)
}

func TestReformat(t *testing.T) {
	input := readAll(t, exampleHap)
	config, err := ReadSchemaConfig(writeConfig(t, exampleConfig))
	require.NoError(t, err)

	output, err := Reformat(input, config)
	require.NoError(t, err)

	// beta survives, ancestry is filled from its default
	haplotypes := output.Haplotypes()
	require.Len(t, haplotypes, 2)
	assert.Equal(t, []Value{FloatValue(0.5), StrValue("unknown")}, haplotypes[0].Extra)

	// the input's integer score keeps its value under the new schema
	variants := output.Variants()
	require.Len(t, variants, 2)
	assert.Equal(t, []Value{IntValue(7)}, variants[0].Extra)

	// the input is left untouched
	assert.Len(t, input.Haplotypes()[0].Extra, 1)
}

func TestReformat_DropsUndeclaredFields(t *testing.T) {
	input := readAll(t, exampleHap)
	config, err := ReadSchemaConfig(writeConfig(t, "variant:\n  - name: score\n    type: d\n    description: kept\n"))
	require.NoError(t, err)

	output, err := Reformat(input, config)
	require.NoError(t, err)
	assert.Empty(t, output.Header.Schema.FieldsFor(HaplotypeLine))
	assert.Empty(t, output.Haplotypes()[0].Extra)
	assert.Equal(t, []Value{IntValue(7)}, output.Variants()[0].Extra)
}

func TestReformat_MissingFieldWithoutDefault(t *testing.T) {
	input := readAll(t, "H\tchr1\t100\t200\thap1\n")
	config := &SchemaConfig{
		Haplotype: []FieldConfig{{Name: "beta", Type: "float", Description: "Effect size"}},
	}
	_, err := Reformat(input, config)
	assert.Error(t, err)
}

func TestReformat_KindMismatch(t *testing.T) {
	input := readAll(t, "#H\tbeta\ts\tEffect size as text\nH\tchr1\t100\t200\thap1\thigh\n")
	config := &SchemaConfig{
		Haplotype: []FieldConfig{{Name: "beta", Type: "float", Description: "Effect size", Default: "0"}},
	}
	_, err := Reformat(input, config)
	assert.Error(t, err)
}
