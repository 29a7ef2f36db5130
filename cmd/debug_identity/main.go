package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"manifest-reconciler/core/config"
	"manifest-reconciler/core/loader"
	"manifest-reconciler/core/storage"
	"manifest-reconciler/core/tree"
)

// Prints the identity every element of a list gets during matching.
//
//	debug_identity <manifest> <header> <path>
func main() {
	if len(os.Args) != 4 {
		log.Fatal("usage: debug_identity <manifest> <header> <path>")
	}
	location, header, rawPath := os.Args[1], os.Args[2], os.Args[3]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	rules, err := cfg.Reconcile.Build()
	if err != nil {
		log.Fatal(err)
	}

	var client storage.Client
	if _, _, ok := storage.ParseURI(location); ok {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	m, err := loader.New(client, cfg.Storage.Bucket).LoadManifest(ctx, location)
	if err != nil {
		log.Fatal(err)
	}

	root, ok := m.Get(header)
	if !ok {
		log.Fatalf("header %q not found", header)
	}
	path, err := tree.ParsePath(rawPath)
	if err != nil {
		log.Fatal(err)
	}

	matcher := rules.Matcher()
	list, ok := matcher.Resolve(root, path)
	if !ok || !list.IsList() {
		log.Fatalf("%s does not resolve to a list in %s", rawPath, header)
	}

	fmt.Printf("Stable key fields: %s\n", strings.Join(rules.StableKeyFields, ", "))
	fmt.Printf("\n=== %s.%s (%d elements) ===\n", header, path, list.Len())

	seen := map[string]int{}
	for i, item := range list.Items() {
		id := matcher.ElementID(item)
		seen[id]++
		fmt.Printf("[%d] %s\n", i, id)
		if strings.HasPrefix(id, "#") {
			fmt.Println("  ⚠️  No stable key - matched by structural hash")
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if n := seen[id]; n > 1 {
			fmt.Printf("\n⚠️  %s is shared by %d elements\n", id, n)
		}
	}
}
