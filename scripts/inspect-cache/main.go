// Command inspect-cache prints the metadata and shape of a cache container
// without re-running any analysis. Useful when deciding whether a container
// can be reused or must be rebuilt with -force-update.
//
// Usage:
//
//	go run ./scripts/inspect-cache -path results.cytb [-key runs]
//
// It prints the batch id the container was written under, the table key,
// the row count, and every column with its non-NaN value count.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/fuelcycle/cyclana/internal/table"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	path := flag.String("path", "", "cache container path")
	key := flag.String("key", "runs", "table key inside the container")
	flag.Parse()

	if *path == "" {
		return fmt.Errorf("-path is required")
	}

	tbl, batchID, err := table.Read(*path, *key)
	if err != nil {
		return err
	}

	fmt.Printf("container: %s\n", *path)
	fmt.Printf("key:       %s\n", *key)
	fmt.Printf("batch id:  %s\n", batchID)
	fmt.Printf("rows:      %d\n", tbl.NumRows())
	fmt.Printf("columns:   %d\n", len(tbl.Columns()))
	for _, col := range tbl.Columns() {
		vals, _ := tbl.Column(col)
		n := 0
		for _, v := range vals {
			if !math.IsNaN(v) {
				n++
			}
		}
		fmt.Printf("  %-28s %d values\n", col, n)
	}
	return nil
}
