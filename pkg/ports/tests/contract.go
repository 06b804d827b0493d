package tests

import (
	"context"
	"testing"

	"github.com/aretw0/kiteflow/pkg/ports"
)

// FlowLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.FlowLoader.
func FlowLoaderContractTest(t *testing.T, loader ports.FlowLoader, expected []byte, format string) {
	t.Helper()

	t.Run("LoadFlow_Success", func(t *testing.T) {
		content, gotFormat, err := loader.LoadFlow(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading flow: %v", err)
		}
		if string(content) != string(expected) {
			t.Errorf("content mismatch. got %q, want %q", content, expected)
		}
		if gotFormat != format {
			t.Errorf("format mismatch. got %q, want %q", gotFormat, format)
		}
	})

	t.Run("LoadFlow_Repeatable", func(t *testing.T) {
		first, _, err := loader.LoadFlow(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading flow: %v", err)
		}
		second, _, err := loader.LoadFlow(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading flow twice: %v", err)
		}
		if string(first) != string(second) {
			t.Error("loader returned different content on the second read")
		}
	})
}
