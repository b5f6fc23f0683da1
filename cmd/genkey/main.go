package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/apikey"
)

func main() {
	var (
		name  = flag.String("name", "", "name for the new API key (required)")
		ttl   = flag.Duration("ttl", 90*24*time.Hour, "key lifetime")
		keys  = flag.String("keys", "api_keys.json", "path to the key store file")
		prune = flag.Bool("prune", false, "drop expired and revoked keys instead of issuing")
	)
	flag.Parse()

	store, err := apikey.Open(*keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *prune {
		removed, err := store.Prune()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d key(s)\n", removed)
		return
	}

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: -name is required")
		flag.Usage()
		os.Exit(1)
	}

	plaintext, err := store.Issue(*name, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key for %q (expires in %s):\n\n  %s\n\nStore it now; it cannot be recovered later.\n", *name, *ttl, plaintext)
}
