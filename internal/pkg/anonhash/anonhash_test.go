package anonhash

import "testing"

func TestReporterLengthAndDeterminism(t *testing.T) {
	a := Reporter("extension-install-1234")
	b := Reporter("extension-install-1234")

	if len(a) != 16 {
		t.Fatalf("expected a 16-character hash, got %d", len(a))
	}
	if a != b {
		t.Fatal("expected the same input to hash identically")
	}
	if Reporter("another-id") == a {
		t.Fatal("expected distinct inputs to hash differently")
	}
}

func TestReporterKnownDigest(t *testing.T) {
	// SHA-256("abc") = ba7816bf8f01cfea...
	if got := Reporter("abc"); got != "ba7816bf8f01cfea" {
		t.Fatalf("unexpected digest prefix: %s", got)
	}
}
