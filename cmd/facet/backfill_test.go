package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/facet/internal/store"
	"github.com/hyperengineering/facet/internal/types"
)

// executeBackfill runs the backfill subcommand with captured output.
func executeBackfill(t *testing.T, dbPath string) (stdout string, err error) {
	t.Helper()

	// Reset the package-level flag so earlier runs don't leak.
	backfillDBPath = ""

	outBuf := new(bytes.Buffer)
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"backfill", "--db", dbPath})

	err = rootCmd.Execute()

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)

	return outBuf.String(), err
}

func TestBackfillCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "facet.db")

	// Seed a legacy project: no category, only a pre-category type.
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	ctx := context.Background()
	legacy, err := db.CreateProject(ctx, types.NewProject{
		Name:       "old tracker",
		LegacyType: "research",
		Status:     types.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed legacy project: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seed store: %v", err)
	}

	out, err := executeBackfill(t, dbPath)
	if err != nil {
		t.Fatalf("backfill error = %v", err)
	}
	if !strings.Contains(out, "Backfilled 1 projects") {
		t.Errorf("output = %q", out)
	}

	// Verify the category actually landed.
	db, err = store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer db.Close()

	p, err := db.GetProject(ctx, legacy.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if string(p.Category) != "experimenter" {
		t.Errorf("category = %q, want experimenter", p.Category)
	}
}

func TestBackfillCommandEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "facet.db")

	out, err := executeBackfill(t, dbPath)
	if err != nil {
		t.Fatalf("backfill error = %v", err)
	}
	if !strings.Contains(out, "Backfilled 0 projects") {
		t.Errorf("output = %q", out)
	}
}
