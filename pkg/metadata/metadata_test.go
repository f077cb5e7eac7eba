package metadata

import (
	"errors"
	"strings"
	"testing"
)

const sampleClip = "---\ntitle: \"T\"\n---\n\n# T\n\nbody\n"

func TestSignAppendsTrailer(t *testing.T) {
	signed := Sign(sampleClip, "clipper/1.0", true)

	if !strings.Contains(signed, TagStart) || !strings.Contains(signed, TagEnd) {
		t.Fatalf("signed document missing trailer tags:\n%s", signed)
	}

	trailer, clean := Extract(signed)
	if trailer == nil {
		t.Fatal("trailer not extracted from signed document")
	}

	if !trailer.Validated {
		t.Error("Validated = false, want true")
	}

	if trailer.Generator != "clipper/1.0" {
		t.Errorf("Generator = %q, want %q", trailer.Generator, "clipper/1.0")
	}

	if trailer.SignedAt.IsZero() {
		t.Error("SignedAt not set")
	}

	if clean != strings.TrimRight(sampleClip, "\n") {
		t.Errorf("clean content changed: %q", clean)
	}
}

func TestSignIsIdempotentOnContent(t *testing.T) {
	once := Sign(sampleClip, "clipper/1.0", false)
	twice := Sign(once, "clipper/1.0", false)

	_, cleanOnce := Extract(once)
	_, cleanTwice := Extract(twice)

	if cleanOnce != cleanTwice {
		t.Errorf("re-signing changed the content:\nonce:  %q\ntwice: %q", cleanOnce, cleanTwice)
	}

	if strings.Count(twice, TagStart) != 1 {
		t.Errorf("re-signing stacked trailers:\n%s", twice)
	}
}

func TestVerify(t *testing.T) {
	signed := Sign(sampleClip, "clipper/1.0", true)

	ok, err := Verify(signed)
	if err != nil || !ok {
		t.Fatalf("Verify(signed) = %v, %v; want true, nil", ok, err)
	}

	tampered := strings.Replace(signed, "body", "edited body", 1)

	ok, err = Verify(tampered)
	if ok {
		t.Error("Verify(tampered) = true, want false")
	}

	if !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify(tampered) error = %v, want ErrHashMismatch", err)
	}
}

func TestVerifyWithoutTrailer(t *testing.T) {
	ok, err := Verify(sampleClip)
	if ok {
		t.Error("Verify(unsigned) = true, want false")
	}

	if !errors.Is(err, ErrNoTrailer) {
		t.Errorf("Verify(unsigned) error = %v, want ErrNoTrailer", err)
	}
}

func TestExtractWithoutTrailer(t *testing.T) {
	trailer, clean := Extract(sampleClip)
	if trailer != nil {
		t.Errorf("Extract returned trailer %+v for unsigned content", trailer)
	}

	if clean != strings.TrimRight(sampleClip, "\n") {
		t.Errorf("clean = %q, want trimmed original", clean)
	}
}
