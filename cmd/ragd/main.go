// Package main implements the ragd CLI for manual operations against the retrieval engine.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cobwebai/llmtools/internal/config"
	"github.com/cobwebai/llmtools/internal/embeddings"
	"github.com/cobwebai/llmtools/internal/logging"
	"github.com/cobwebai/llmtools/internal/rag"
	"github.com/cobwebai/llmtools/internal/vectorstore"
)

var (
	// configPath is the optional YAML config file
	configPath string
	// tenant scopes every command to one tenant index
	tenant string
	// version information
	version = "dev"
)

var (
	addProject  string
	addDocument string

	queryProject  string
	queryDocument string
	queryTopK     int

	ctxProject  string
	ctxDocument string
	ctxKind     string
	ctxQuery    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragd",
	Short: "CLI for the llmtools retrieval engine",
	Long: `ragd is a command-line interface for the llmtools retrieval engine.
It indexes documents into per-tenant vector collections and answers
scoped similarity queries against them.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&tenant, "tenant", "", "tenant whose index to operate on")
	_ = rootCmd.MarkPersistentFlagRequired("tenant")

	addCmd.Flags().StringVar(&addProject, "project", "", "project the document belongs to")
	addCmd.Flags().StringVar(&addDocument, "document", "", "document identifier")
	_ = addCmd.MarkFlagRequired("project")
	_ = addCmd.MarkFlagRequired("document")

	queryCmd.Flags().StringVar(&queryProject, "project", "", "restrict to one project")
	queryCmd.Flags().StringVar(&queryDocument, "document", "", "restrict to one document")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of chunks to return (default from config)")

	contextCmd.Flags().StringVar(&ctxProject, "project", "", "project the attachment belongs to")
	contextCmd.Flags().StringVar(&ctxDocument, "document", "", "attachment document identifier")
	contextCmd.Flags().StringVar(&ctxKind, "kind", "file", "attachment kind: note, transcript, or file")
	contextCmd.Flags().StringVar(&ctxQuery, "query", "", "user query guiding retrieval")
	_ = contextCmd.MarkFlagRequired("project")
	_ = contextCmd.MarkFlagRequired("document")
	_ = contextCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(deleteProjectCmd)
	rootCmd.AddCommand(deleteTenantCmd)
}

// addCmd indexes a document from a file or stdin
var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Chunk and index a document",
	Long: `Chunk and index a document from a file or stdin.

Examples:
  # Index a file
  ragd add --tenant alice --project notes --document readme.md README.md

  # Index from stdin
  cat transcript.txt | ragd add --tenant alice --project calls --document 2026-08-30 -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

// queryCmd runs a scoped similarity query
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Query a tenant's index",
	Long: `Query a tenant's index for chunks similar to the given text.
At least one of --project or --document must be set.

Examples:
  ragd query --tenant alice --project notes "error budget policy"
  ragd query --tenant alice --document readme.md --top-k 5 "install steps"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

// contextCmd routes an attachment through the inline-vs-retrieve policy
var contextCmd = &cobra.Command{
	Use:   "context [file]",
	Short: "Assemble retrieval context for an attachment",
	Long: `Assemble retrieval context for an attachment read from a file or
stdin. Short attachments are inlined verbatim; long ones are indexed
and the chunks most relevant to --query are returned.

Examples:
  ragd context --tenant alice --project chat --document design.md --query "auth flow" design.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContext,
}

// invalidateCmd drops a document's chunks ahead of re-indexing
var invalidateCmd = &cobra.Command{
	Use:   "invalidate <document>",
	Short: "Remove a document's chunks from the tenant's index",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvalidate,
}

// deleteProjectCmd drops every document of a project
var deleteProjectCmd = &cobra.Command{
	Use:   "delete-project <project>",
	Short: "Remove a project's chunks from the tenant's index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteProject,
}

// deleteTenantCmd drops the tenant's entire index
var deleteTenantCmd = &cobra.Command{
	Use:   "delete-tenant",
	Short: "Drop the tenant's index and everything in it",
	RunE:  runDeleteTenant,
}

// newEngine wires config, logging, embeddings, the store, and the
// engine together. The returned cleanup flushes logs and closes the
// store.
func newEngine() (*rag.Service, *config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Fields: map[string]string{"service": "ragd"},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building logger: %w", err)
	}

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating embedding client: %w", err)
	}

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:     cfg.Store.Path,
		Compress: cfg.Store.Compress,
	}, embedder, logger.Named("vectorstore"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening store: %w", err)
	}

	policy := rag.DefaultRouterPolicy()
	policy.DefaultThreshold = cfg.Retrieval.InlineThreshold
	policy.TopK = cfg.Retrieval.TopK
	policy.Separator = cfg.Retrieval.Separator

	svc, err := rag.NewService(store,
		rag.WithChunking(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap),
		rag.WithRouterPolicy(policy),
		rag.WithLogger(logger.Named("rag")),
	)
	if err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("creating engine: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return svc, cfg, cleanup, nil
}

// readInput reads the positional file argument, or stdin when the
// argument is absent or "-".
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(content), nil
}

// runAdd handles the add command
func runAdd(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	svc, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ids, err := svc.AddDocument(context.Background(), tenant, addProject, addDocument, text)
	if err != nil {
		return fmt.Errorf("indexing document: %w", err)
	}

	fmt.Printf("Indexed %d chunk(s)\n", len(ids))
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// runQuery handles the query command
func runQuery(cmd *cobra.Command, args []string) error {
	if queryProject == "" && queryDocument == "" {
		return fmt.Errorf("at least one of --project or --document is required")
	}

	svc, cfg, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	k := queryTopK
	if k <= 0 {
		k = cfg.Retrieval.TopK
	}

	texts, err := svc.Query(context.Background(), tenant, args[0], queryProject, queryDocument, k)
	if err != nil {
		return fmt.Errorf("querying index: %w", err)
	}

	if len(texts) == 0 {
		fmt.Fprintln(os.Stderr, "No matching chunks")
		return nil
	}
	for i, text := range texts {
		if i > 0 {
			fmt.Println("---")
		}
		fmt.Println(text)
	}
	return nil
}

// runContext handles the context command
func runContext(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(ctxKind)
	if err != nil {
		return err
	}

	content, err := readInput(args)
	if err != nil {
		return err
	}

	svc, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	assembled, ok := svc.AssembleContext(context.Background(), tenant, ctxQuery, []rag.Attachment{{
		ID:       ctxDocument,
		Project:  ctxProject,
		Document: ctxDocument,
		Content:  content,
		Kind:     kind,
	}})
	if !ok {
		fmt.Fprintln(os.Stderr, "No context assembled")
		return nil
	}

	fmt.Println(assembled)
	return nil
}

func parseKind(s string) (rag.AttachmentKind, error) {
	switch strings.ToLower(s) {
	case "note":
		return rag.KindNote, nil
	case "transcript":
		return rag.KindTranscript, nil
	case "file":
		return rag.KindFile, nil
	default:
		return "", fmt.Errorf("unknown attachment kind %q (want note, transcript, or file)", s)
	}
}

// runInvalidate handles the invalidate command
func runInvalidate(cmd *cobra.Command, args []string) error {
	svc, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	found, err := svc.InvalidateDocument(context.Background(), tenant, args[0])
	if err != nil {
		return fmt.Errorf("invalidating document: %w", err)
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Tenant %q has no index\n", tenant)
		return nil
	}
	fmt.Printf("Invalidated document %q\n", args[0])
	return nil
}

// runDeleteProject handles the delete-project command
func runDeleteProject(cmd *cobra.Command, args []string) error {
	svc, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	found, err := svc.DeleteProject(context.Background(), tenant, args[0])
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Tenant %q has no index\n", tenant)
		return nil
	}
	fmt.Printf("Deleted project %q\n", args[0])
	return nil
}

// runDeleteTenant handles the delete-tenant command
func runDeleteTenant(cmd *cobra.Command, args []string) error {
	svc, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	found, err := svc.DeleteTenant(context.Background(), tenant)
	if err != nil {
		return fmt.Errorf("deleting tenant index: %w", err)
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Tenant %q has no index\n", tenant)
		return nil
	}
	fmt.Printf("Deleted tenant %q\n", tenant)
	return nil
}
