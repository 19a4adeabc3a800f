//go:build integration
// +build integration

package ncbi

import (
	"context"
	"testing"
	"time"

	"seqview/internal/genbank"
)

// This file contains integration tests that hit the real NCBI API. They are
// excluded by default; run with `go test -tags=integration ./...`.

func TestIntegrationFetchAndSplit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	text, err := NewClient("").FetchGenBank(ctx, "NM_000797.4")
	if err != nil {
		t.Skipf("ncbi unreachable: %v", err)
	}
	if got := genbank.Parse(text); len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(got))
	}
}
