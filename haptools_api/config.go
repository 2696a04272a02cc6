package haptools_api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

//
// Config structs
//

// The struct representing a reformat configuration file
// The config file is a YAML file declaring the target extra field schema
type SchemaConfig struct {
	// The extra fields of haplotype (H) lines, in column order
	Haplotype []FieldConfig `yaml:"haplotype"`

	// The extra fields of variant (V) lines, in column order
	Variant []FieldConfig `yaml:"variant"`
}

// A struct representing the configuration of one extra field
type FieldConfig struct {
	// The name of the field
	Name string `yaml:"name"`

	// The type of the field
	// Can be a format tag ("d", "s", "f", ".2f") or one of the words
	// "integer", "float" and "string" in any casing
	Type string `yaml:"type"`

	// The description of the field
	// This is used to generate the schema declaration lines
	Description string `yaml:"description"`

	// The value to use for records that do not carry the field
	Default string `yaml:"default"`
}

// ReadSchemaConfig reads a reformat configuration file, casts it to its
// struct and validates it
func ReadSchemaConfig(path string) (*SchemaConfig, error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open the config file: %w", err)
	}

	var config SchemaConfig
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("failed to parse the config file: %w", err)
	}

	if _, err := config.Schema(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Schema builds the schema registry the configuration declares
func (config *SchemaConfig) Schema() (*Schema, error) {
	schema := NewSchema()
	for _, field := range config.Haplotype {
		if err := schema.Declare(HaplotypeLine, field.Name, canonicalTag(field.Type), field.Description); err != nil {
			return nil, err
		}
	}
	for _, field := range config.Variant {
		if err := schema.Declare(VariantLine, field.Name, canonicalTag(field.Type), field.Description); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// canonicalTag maps the spellings the config accepts onto format tags
func canonicalTag(configType string) string {
	switch strings.ToLower(strings.TrimSpace(configType)) {
	case "int", "integer":
		return "d"
	case "float":
		return "f"
	case "str", "string":
		return "s"
	}
	return strings.TrimSpace(configType)
}

// Reformat re-emits a record set under the schema the configuration
// declares. Fields the input also declares keep their values, fields only
// the configuration declares take their configured default, and input
// fields absent from the configuration are dropped
func Reformat(input *HapFile, config *SchemaConfig) (*HapFile, error) {
	schema, err := config.Schema()
	if err != nil {
		return nil, err
	}

	output := &HapFile{
		Header: Header{
			Schema:   schema,
			Comments: input.Header.Comments,
		},
	}
	for _, record := range input.Records {
		switch rec := record.(type) {
		case *Haplotype:
			extra, err := reformatExtras(rec.Extra, input.Header.Schema, schema, config.Haplotype, HaplotypeLine)
			if err != nil {
				return nil, fmt.Errorf("haplotype %q: %w", rec.Id, err)
			}
			reformatted := *rec
			reformatted.Extra = extra
			output.Records = append(output.Records, &reformatted)
		case *Variant:
			extra, err := reformatExtras(rec.Extra, input.Header.Schema, schema, config.Variant, VariantLine)
			if err != nil {
				return nil, fmt.Errorf("variant %q: %w", rec.Id, err)
			}
			reformatted := *rec
			reformatted.Extra = extra
			output.Records = append(output.Records, &reformatted)
		}
	}
	return output, nil
}

// Build the extra values of one record under the target schema
func reformatExtras(values []Value, from *Schema, to *Schema, fields []FieldConfig, lineType LineType) ([]Value, error) {
	declarations := to.FieldsFor(lineType)
	extra := make([]Value, len(declarations))
	for i, declaration := range declarations {
		if value, ok := fieldByName(values, from.FieldsFor(lineType), declaration.Name); ok {
			if value.Kind != declaration.Tag.Kind {
				return nil, fmt.Errorf("field %q is a %s in the input but a %s in the config", declaration.Name, value.Kind, declaration.Tag.Kind)
			}
			extra[i] = value
			continue
		}
		value, err := defaultValue(fields[i], declaration.Tag)
		if err != nil {
			return nil, err
		}
		extra[i] = value
	}
	return extra, nil
}

// Coerce the configured default of a field by the field's tag
func defaultValue(field FieldConfig, tag FormatTag) (Value, error) {
	if field.Default == "" && tag.Kind != StrKind {
		return Value{}, fmt.Errorf("field %q is missing from the input and has no default", field.Name)
	}
	switch tag.Kind {
	case IntKind:
		parsed, err := strconv.ParseInt(field.Default, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("default %q of field %q is not an integer", field.Default, field.Name)
		}
		return IntValue(parsed), nil
	case FloatKind:
		parsed, err := strconv.ParseFloat(field.Default, 64)
		if err != nil {
			return Value{}, fmt.Errorf("default %q of field %q is not a float", field.Default, field.Name)
		}
		return FloatValue(parsed), nil
	}
	return StrValue(field.Default), nil
}
