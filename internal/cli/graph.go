package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryanrai97861/cortexhub/graphx"
)

var graphFromFile string

var generateGraphCmd = &cobra.Command{
	Use:   "generate-graph [text]",
	Short: "Extract a knowledge graph from text",
	Long: `Ask the model to extract key concepts and their relationships from the
given text and print the resulting graph as JSON. The context is passed as
an argument or read from a file with --file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerateGraph,
}

func init() {
	generateGraphCmd.Flags().StringVar(&graphFromFile, "file", "", "read the context text from this file")
	rootCmd.AddCommand(generateGraphCmd)
}

func runGenerateGraph(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return fail(err, "Failed to load configuration.")
	}

	var contextText string
	switch {
	case graphFromFile != "":
		data, err := os.ReadFile(graphFromFile)
		if err != nil {
			return fail(err, "Failed to read context file.")
		}
		contextText = string(data)
	case len(args) == 1:
		contextText = args[0]
	default:
		return fail(errors.New("no context text given, pass it as an argument or via --file"), "No context text given.")
	}

	m, err := buildModel(cmd.Context(), cfg)
	if err != nil {
		return fail(err, "Failed to initialize model client.")
	}

	generator := graphx.NewGenerator(m, func(o *graphx.GeneratorOptions) {
		o.Logger = logger
	})
	graph, err := generator.Generate(cmd.Context(), contextText)
	if err != nil {
		return fail(err, "Failed to generate knowledge graph.")
	}
	return emitJSON(graph)
}
