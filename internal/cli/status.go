package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-notes-etl/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show metadata of the last successful load",
	Long: `Connect to the warehouse and print the metadata recorded by the last
successful run: version, load time, source file, detected encoding and row
counts per table.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := validation.Validate(cfg.Connection,
		validation.Required.Error("connection string is required")); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return err
	}
	defer pool.Close()

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check run metadata: %w", err)
	}
	if !exists {
		cmd.Println("No load has been recorded in this database.")
		return nil
	}

	metadata, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to read run metadata: %w", err)
	}
	if len(metadata) == 0 {
		return errors.New("run metadata table is empty")
	}

	cmd.Print(formatMetadata(metadata))
	return nil
}

// formatMetadata renders key/value pairs sorted by key.
func formatMetadata(metadata map[string]string) string {
	keys := make([]string, 0, len(metadata))
	width := 0
	for k := range metadata {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	slices.Sort(keys)

	out := "Last load:\n"
	for _, k := range keys {
		out += fmt.Sprintf("  %-*s  %s\n", width, k, metadata[k])
	}
	return out
}
