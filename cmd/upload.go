package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbtools/pdf-ingest/config"
	"github.com/kbtools/pdf-ingest/types"
)

// uploadCmd runs the one-shot batch ingestion job.
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload PDF files into the vector index",
	Long: `Processes one or more PDF files: extracts page text, splits it into
overlapping segments and upserts them into the index in batches. With
--clear, deletes every vector in the index first (destructive).`,
	Run: func(cmd *cobra.Command, args []string) {
		files, _ := cmd.Flags().GetStringArray("file")
		directory, _ := cmd.Flags().GetString("dir")
		clear, _ := cmd.Flags().GetBool("clear")
		index, _ := cmd.Flags().GetString("index")
		databaseURL, _ := cmd.Flags().GetString("database-url")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if index != "" {
			cfg.Index.Index = index
		}
		if databaseURL != "" {
			cfg.Index.Host = databaseURL
		}

		uploads, err := collectUploads(files, directory)
		if err != nil {
			log.Fatalf("Failed to read input files: %v", err)
		}
		if len(uploads) == 0 {
			log.Fatal("No PDF files to upload; use --file or --dir")
		}

		ctx := context.Background()
		ingest, err := buildIngestService(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to vector index: %v", err)
		}

		summary, err := ingest.Run(ctx, uploads, types.RunOptions{ClearIndex: clear}, printProgress)
		if err != nil {
			log.Fatalf("Run aborted: %v", err)
		}

		fmt.Println()
		fmt.Println("Processing results")
		fmt.Printf("  Files processed: %d\n", summary.FilesProcessed)
		fmt.Printf("  Total pages:     %d\n", summary.TotalPages)
		fmt.Printf("  Total chunks:    %d\n", summary.TotalChunks)
		for _, r := range summary.Results {
			line := fmt.Sprintf("  %s - %s (pages: %d, chunks: %d)", r.Filename, r.Status, r.Pages, r.Chunks)
			if r.Message != "" {
				line += ": " + r.Message
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringArrayP("file", "f", nil, "PDF file to upload (repeatable)")
	uploadCmd.Flags().String("dir", "", "directory of PDF files to upload")
	uploadCmd.Flags().Bool("clear", false, "delete all vectors in the index before uploading (destructive)")
	uploadCmd.Flags().String("index", "", "index (class) name override")
	uploadCmd.Flags().StringP("database-url", "d", "", "vector index URL override")
}

func collectUploads(files []string, directory string) ([]types.RawUpload, error) {
	paths := append([]string{}, files...)

	if directory != "" {
		entries, err := os.ReadDir(directory)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			paths = append(paths, filepath.Join(directory, entry.Name()))
		}
	}

	uploads := make([]types.RawUpload, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, types.RawUpload{Filename: path, Data: data})
	}
	return uploads, nil
}

func printProgress(ev types.ProgressEvent) {
	fmt.Printf("[%3.0f%%] %s\n", ev.Fraction*100, ev.Message)
}
