package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janseva/janseva/internal/app"
	"github.com/janseva/janseva/internal/scheme"
)

var indexCmd = &cobra.Command{
	Use:   "index <file|dir>...",
	Short: "Load scheme documents into the knowledge base",
	Long: `Index reads verified scheme documents from JSON files and stores them as
new immutable versions, chunking and embedding both language renditions.
A file may hold a single document or an array of documents; a directory
argument indexes every .json file in it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(args)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	files, err := collectJSONFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .json files found in %v", args)
	}

	var indexed int
	for _, path := range files {
		docs, err := readDocuments(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for i := range docs {
			if err := a.Schemes.Put(ctx, &docs[i]); err != nil {
				return fmt.Errorf("indexing %s from %s: %w", docs[i].SchemeID, path, err)
			}
			logger.Info("indexed scheme",
				"scheme_id", docs[i].SchemeID,
				"version", docs[i].Version,
				"file", path)
			indexed++
		}
	}

	fmt.Printf("Indexed %d scheme document(s) from %d file(s)\n", indexed, len(files))
	return nil
}

// collectJSONFiles expands directory arguments into their .json entries.
func collectJSONFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	return files, nil
}

// readDocuments parses a file holding either one document or an array.
func readDocuments(path string) ([]scheme.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var docs []scheme.Document
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}

	var doc scheme.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document JSON: %w", err)
	}
	return []scheme.Document{doc}, nil
}
