package cli

import (
	"github.com/spf13/cobra"

	"github.com/aryanrai97861/cortexhub/retrieval"
)

var (
	embedFileType string
	queryDocIDs   []string
	queryK        int
)

var embedDocumentCmd = &cobra.Command{
	Use:   "embed-document <path> <document-id>",
	Short: "Chunk, embed and store a document for retrieval",
	Long: `Load a document from disk, split it into overlapping chunks, embed the
chunks and store them in the local vector database. Re-embedding a document
id replaces its previous chunks.`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbedDocument,
}

var queryDocumentsCmd = &cobra.Command{
	Use:   "query-documents <query>",
	Short: "Search embedded documents for relevant snippets",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryDocuments,
}

func init() {
	embedDocumentCmd.Flags().StringVar(&embedFileType, "file-type", retrieval.FileTypeText, "document MIME type (text/plain or text/csv)")
	queryDocumentsCmd.Flags().StringSliceVar(&queryDocIDs, "document-id", nil, "restrict the search to these document ids (repeatable)")
	queryDocumentsCmd.Flags().IntVar(&queryK, "k", 0, "number of snippets to return (default 4)")

	rootCmd.AddCommand(embedDocumentCmd)
	rootCmd.AddCommand(queryDocumentsCmd)
}

func runEmbedDocument(cmd *cobra.Command, args []string) error {
	path, documentID := args[0], args[1]

	cfg, logger, err := setup()
	if err != nil {
		return fail(err, "Failed to load configuration.")
	}
	service, store, err := buildRetrieval(cfg, logger)
	if err != nil {
		return fail(err, "Failed to open vector store.")
	}
	defer store.Close()

	chunks, err := service.EmbedDocument(cmd.Context(), path, embedFileType, documentID)
	if err != nil {
		return fail(err, "Failed to embed document.")
	}
	return emitJSON(map[string]any{
		"message":     "Document embedded.",
		"document_id": documentID,
		"chunks":      chunks,
	})
}

func runQueryDocuments(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, logger, err := setup()
	if err != nil {
		return fail(err, "Failed to load configuration.")
	}
	service, store, err := buildRetrieval(cfg, logger)
	if err != nil {
		return fail(err, "Failed to open vector store.")
	}
	defer store.Close()

	snippets, err := service.QueryDocuments(cmd.Context(), query, queryDocIDs, queryK)
	if err != nil {
		return fail(err, "Failed to query documents.")
	}
	if snippets == nil {
		snippets = []retrieval.Snippet{}
	}
	return emitJSON(snippets)
}
