package stego

import (
	"bytes"
	"testing"
)

func TestZeroWidthRoundTrip(t *testing.T) {
	payload := []byte("ghost packet payload")
	carrier := EmbedZeroWidthText(payload, "visible text")
	got, err := ExtractZeroWidthText(carrier)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", got, payload)
	}
}

func TestZeroWidthEmptyPayload(t *testing.T) {
	carrier := EmbedZeroWidthText(nil, "base")
	got, err := ExtractZeroWidthText(carrier)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty payload, got %v", got)
	}
}

func TestImageBytesRoundTrip(t *testing.T) {
	payload := []byte("stego payload over image carrier")
	carrier := make([]byte, (len(payload)+4)*8+64)
	for i := range carrier {
		carrier[i] = byte(i * 37)
	}
	embedded, err := EmbedImageBytes(payload, carrier)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	got, err := ExtractImageBytes(embedded)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", got, payload)
	}
}

func TestImageBytesCapacityExceeded(t *testing.T) {
	carrier := make([]byte, 40) // tiny carrier
	payload := make([]byte, 100)
	if _, err := EmbedImageBytes(payload, carrier); err == nil {
		t.Fatalf("expected capacity error")
	}
}

func TestImageCapacityFormula(t *testing.T) {
	if got := ImageCapacity(32); got != 0 {
		t.Fatalf("ImageCapacity(32) = %d want 0", got)
	}
	if got := ImageCapacity(32 + 80); got != 10 {
		t.Fatalf("ImageCapacity(112) = %d want 10", got)
	}
}

func TestLegacyNullTerminatedExtractor(t *testing.T) {
	payload := []byte("legacy")
	carrier := make([]byte, (len(payload)+1)*8+8)
	full := append(append([]byte{}, payload...), 0)
	bitIdx := 0
	for _, b := range full {
		for bit := 7; bit >= 0; bit-- {
			carrier[bitIdx] = (carrier[bitIdx] &^ 1) | ((b >> uint(bit)) & 1)
			bitIdx++
		}
	}
	got := ExtractImageLegacyNullTerminated(carrier)
	if !bytes.Equal(got, payload) {
		t.Fatalf("legacy extractor mismatch: got %q want %q", got, payload)
	}
}
