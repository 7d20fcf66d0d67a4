//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package main is the entry point for notes-etl.
package main

import (
	"fmt"
	"os"

	// Load NOTES_ETL_* overrides from a .env file, if present
	_ "github.com/joho/godotenv/autoload"

	"github.com/pgEdge/pgedge-notes-etl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
