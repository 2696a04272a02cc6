package haptools_api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatTag(t *testing.T) {
	testCases := []struct {
		tag       string
		kind      Kind
		precision int
	}{
		{"d", IntKind, -1},
		{"s", StrKind, -1},
		{"f", FloatKind, -1},
		{".2f", FloatKind, 2},
		{".0f", FloatKind, 0},
		{".10f", FloatKind, 10},
	}
	for _, tc := range testCases {
		t.Run(tc.tag, func(t *testing.T) {
			tag, err := ParseFormatTag(tc.tag)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, tag.Kind)
			assert.Equal(t, tc.precision, tag.Precision)
			assert.Equal(t, tc.tag, tag.String())
		})
	}
}

func TestParseFormatTag_Invalid(t *testing.T) {
	for _, tag := range []string{"", "x", "2f", ".f", ".-1f", ".2d", "dd"} {
		t.Run(tag, func(t *testing.T) {
			_, err := ParseFormatTag(tag)
			assert.Error(t, err)
		})
	}
}

func TestSchemaDeclare(t *testing.T) {
	schema := NewSchema()
	require.NoError(t, schema.Declare(HaplotypeLine, "beta", ".2f", "Effect size"))
	require.NoError(t, schema.Declare(HaplotypeLine, "ancestry", "s", "Local ancestry"))
	require.NoError(t, schema.Declare(VariantLine, "score", "d", "Per-variant score"))

	haplotypeFields := schema.FieldsFor(HaplotypeLine)
	require.Len(t, haplotypeFields, 2)
	assert.Equal(t, "beta", haplotypeFields[0].Name)
	assert.Equal(t, "ancestry", haplotypeFields[1].Name)
	require.Len(t, schema.FieldsFor(VariantLine), 1)
}

func TestSchemaDeclare_Duplicate(t *testing.T) {
	schema := NewSchema()
	require.NoError(t, schema.Declare(HaplotypeLine, "beta", ".2f", "Effect size"))

	err := schema.Declare(HaplotypeLine, "beta", "d", "Another beta")
	var duplicate *DuplicateFieldError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "beta", duplicate.Name)
	assert.Equal(t, HaplotypeLine, duplicate.LineType)

	// The same name on the other line type is fine
	assert.NoError(t, schema.Declare(VariantLine, "beta", ".2f", "Effect size"))
}

func TestSchemaDeclarationLines(t *testing.T) {
	schema := NewSchema()
	require.NoError(t, schema.Declare(VariantLine, "score", "d", "Per-variant score"))
	require.NoError(t, schema.Declare(HaplotypeLine, "beta", ".2f", "Effect size"))

	assert.Equal(t, []string{
		"#H\tbeta\t.2f\tEffect size",
		"#V\tscore\td\tPer-variant score",
	}, schema.DeclarationLines())
}
