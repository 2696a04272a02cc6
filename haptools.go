package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gymrek-lab/haptools/haptools_api"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func main() {
	app := &cli.App{
		Name:            "haptools",
		Usage:           "A toolkit for working with .hap haplotype files",
		HideHelpCommand: true,
		Version:         "0.1.0dev",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Check a .hap file for schema, uniqueness and reference violations",
				ArgsUsage: "<file.hap>",
				Action:    validate,
			},
			{
				Name:      "sort",
				Usage:     "Rewrite a .hap file in index-compatible order",
				ArgsUsage: "<file.hap>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "The location of the sorted output file, defaults to stdout",
						Category: "Optional",
					},
				},
				Action: sortFile,
			},
			{
				Name:      "index",
				Usage:     "Build the tabix index of a sorted, bgzf-compressed .hap file",
				ArgsUsage: "<file.hap.gz>",
				Action:    index,
			},
			{
				Name:      "query",
				Usage:     "Print the records of an indexed .hap file inside a region",
				ArgsUsage: "<file.hap.gz>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "region",
						Aliases:  []string{"r"},
						Usage:    "The region to extract records from; ex: 'chr1:1234-34566' or 'chr7'",
						Required: true,
						Category: "Required",
						Action: func(c *cli.Context, input string) error {
							if _, err := haptools_api.ParseRegion(input); err != nil {
								return cli.Exit(err.Error(), 1)
							}
							return nil
						},
					},
				},
				Action: query,
			},
			{
				Name:      "describe",
				Usage:     "Print the schema and record counts of a .hap file",
				ArgsUsage: "<file.hap>",
				Action:    describe,
			},
			{
				Name:      "reformat",
				Usage:     "Re-emit a .hap file under the extra field schema of a config file",
				ArgsUsage: "<input.hap> <output.hap>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Aliases:  []string{"s"},
						Usage:    "Configuration file (YAML) declaring the target extra fields",
						Required: true,
						Category: "Required",
					},
				},
				Action: reformat,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New(os.Stderr, "", 0).Fatal(err)
	}
}

// requireArgs fetches the positional arguments of a command
func requireArgs(Cctx *cli.Context, names ...string) ([]string, error) {
	if Cctx.Args().Len() != len(names) {
		return nil, cli.Exit(fmt.Sprintf("expected arguments: <%s>", strings.Join(names, "> <")), 1)
	}
	return Cctx.Args().Slice(), nil
}

func validate(Cctx *cli.Context) error {
	args, err := requireArgs(Cctx, "file.hap")
	if err != nil {
		return err
	}

	hapFile, err := haptools_api.Read(args[0])
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := hapFile.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := log.New(os.Stderr, "", 0)
	logger.Printf("%s is valid: %d haplotypes, %d variants", args[0], len(hapFile.Haplotypes()), len(hapFile.Variants()))
	return nil
}

func sortFile(Cctx *cli.Context) error {
	args, err := requireArgs(Cctx, "file.hap")
	if err != nil {
		return err
	}

	hapFile, err := haptools_api.Read(args[0])
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	hapFile.Sort()

	if output := Cctx.String("output"); output != "" {
		if err := haptools_api.WriteFile(output, hapFile, true); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	writer := haptools_api.NewWriter(os.Stdout, hapFile.Header.Schema)
	for _, comment := range hapFile.Header.Comments {
		if err := writer.AddComment(comment); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	for _, record := range hapFile.Records {
		if err := writer.Write(record); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	if err := writer.Flush(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func index(Cctx *cli.Context) error {
	args, err := requireArgs(Cctx, "file.hap.gz")
	if err != nil {
		return err
	}

	if err := haptools_api.IndexFile(args[0]); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.New(os.Stderr, "", 0).Printf("wrote %s%s", args[0], haptools_api.IndexSuffix)
	return nil
}

func query(Cctx *cli.Context) error {
	args, err := requireArgs(Cctx, "file.hap.gz")
	if err != nil {
		return err
	}
	region, err := haptools_api.ParseRegion(Cctx.String("region"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	reader, err := haptools_api.OpenIndexed(args[0])
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer reader.Close()

	results := reader.Query(region)
	for results.Next() {
		line, err := results.Record().String(reader.Header().Schema)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Println(line)
	}
	if err := results.Err(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func describe(Cctx *cli.Context) error {
	args, err := requireArgs(Cctx, "file.hap")
	if err != nil {
		return err
	}

	hapFile, err := haptools_api.Read(args[0])
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	title := cases.Title(language.English, cases.Compact)
	for _, lineType := range []haptools_api.LineType{haptools_api.HaplotypeLine, haptools_api.VariantLine} {
		for _, field := range hapFile.Header.Schema.FieldsFor(lineType) {
			kind := title.String(field.Tag.Kind.String())
			fmt.Printf("%c\t%s\t%s (%s)\t%s\n", lineType, field.Name, kind, field.Tag, field.Description)
		}
	}
	fmt.Printf("%d haplotypes, %d variants\n", len(hapFile.Haplotypes()), len(hapFile.Variants()))
	return nil
}

func reformat(Cctx *cli.Context) error {
	args, err := requireArgs(Cctx, "input.hap", "output.hap")
	if err != nil {
		return err
	}

	config, err := haptools_api.ReadSchemaConfig(Cctx.String("schema"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	hapFile, err := haptools_api.Read(args[0])
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	reformatted, err := haptools_api.Reformat(hapFile, config)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := haptools_api.WriteFile(args[1], reformatted, false); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
