// Package main provides the signer command for stamping and checking
// clip integrity trailers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"clipper/internal/config"
	"clipper/internal/validator"
	"clipper/pkg/metadata"
)

const generator = "clipper-signer/1.0"

func main() {
	inputPath := flag.String("input", "", "Path to a clip file (e.g., clips/my-article.md)")
	check := flag.Bool("check", false, "Verify the existing trailer instead of re-signing")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: signer -input <path> [-check]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	contentBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Error reading file: %v\n", err)
	}

	content := string(contentBytes)
	fmt.Printf("📂 Reading: %s (%d bytes)\n", *inputPath, len(content))

	if *check {
		ok, verifyErr := metadata.Verify(content)
		if !ok {
			log.Fatalf("❌ Integrity check failed: %v\n", verifyErr)
		}

		fmt.Println("✅ Integrity check passed")

		return
	}

	// Validate before signing so the trailer's flag means something.
	cfg := config.Default()

	res := validator.New(cfg.Clipper.Validation).Validate(content)
	if !res.IsValid {
		fmt.Printf("⚠️  Document has %d validation error(s); signing as unvalidated\n", len(res.Errors))

		for _, vErr := range res.Errors {
			fmt.Printf("   - %s\n", vErr)
		}
	}

	signed := metadata.Sign(content, generator, res.IsValid)

	if err := os.WriteFile(*inputPath, []byte(signed), 0644); err != nil {
		log.Fatalf("Error writing file: %v\n", err)
	}

	fmt.Printf("✅ Signed: %s (validated=%t, words=%d)\n", *inputPath, res.IsValid, res.Stats.Words)
}
