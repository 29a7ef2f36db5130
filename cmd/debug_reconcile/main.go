package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"manifest-reconciler/core/config"
	"manifest-reconciler/core/loader"
	"manifest-reconciler/core/reconcile"
	"manifest-reconciler/core/storage"
)

// Diffs a single header and dumps the raw result to debug_reconcile.json.
//
//	debug_reconcile <master> <working> <header>
func main() {
	if len(os.Args) != 4 {
		log.Fatal("usage: debug_reconcile <master> <working> <header>")
	}
	masterLoc, workingLoc, header := os.Args[1], os.Args[2], os.Args[3]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	rules, err := cfg.Reconcile.Build()
	if err != nil {
		log.Fatal(err)
	}

	var client storage.Client
	for _, loc := range []string{masterLoc, workingLoc} {
		if _, _, ok := storage.ParseURI(loc); ok && client == nil {
			if client, err = storage.NewClient(cfg.Storage); err != nil {
				log.Fatal(err)
			}
		}
	}

	ctx := context.Background()
	l := loader.New(client, cfg.Storage.Bucket)

	fmt.Println("=== TEST 1: Manifest Loading ===")
	master, err := l.LoadManifest(ctx, masterLoc)
	if err != nil {
		log.Fatal(err)
	}
	working, err := l.LoadManifest(ctx, workingLoc)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Master headers: %d, working headers: %d\n", master.Len(), working.Len())

	fmt.Println("\n=== TEST 2: Header Selection ===")
	app, ok := working.Get(header)
	if !ok {
		log.Fatalf("header %q not found in working manifest", header)
	}
	if reconcile.IsIgnoredHeader(rules, header) {
		fmt.Println("⚠️  Header is skipped by an ignored prefix; diffing anyway")
	} else {
		fmt.Println("Header is selected")
	}

	fmt.Println("\n=== TEST 3: Analytics Prefix ===")
	if prefix, ok := reconcile.ExtractPrefix(app); ok {
		fmt.Printf("Prefix: %s\n", prefix)
	} else {
		fmt.Println("NOT FOUND - PATH placeholders would stay unresolved")
	}

	fmt.Println("\n=== TEST 4: Diff ===")
	root, ok := reconcile.MasterRoot(rules, master, header)
	if !ok {
		fmt.Println("⚠️  No master tree for header, comparing against an empty tree")
	}
	diff := reconcile.Diff(rules, root, app)
	fmt.Printf("Missing: %d, unique: %d, text: %d\n", len(diff.Missing), len(diff.Unique), len(diff.Text))

	data, err := loader.Encode(diff, loader.FormatJSON)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("debug_reconcile.json", data, 0o644); err != nil {
		log.Fatal(err)
	}

	fmt.Println("\nDebug complete. Check debug_reconcile.json for details.")
}
