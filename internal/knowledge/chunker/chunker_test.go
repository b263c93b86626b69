package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("This is a sentence about refunds. ", 40)
	a := Chunk(text, 128, 20)
	b := Chunk(text, 128, 20)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("chunking must be deterministic")
	}
	if len(a) < 2 {
		t.Fatalf("expected multiple chunks for long input, got %d", len(a))
	}
}

func TestChunkRespectsSize(t *testing.T) {
	text := strings.Repeat("Support agents resolve billing disputes quickly. ", 50)
	for i, chunk := range Chunk(text, 200, 30) {
		if n := len([]rune(chunk)); n > 200 {
			t.Errorf("chunk %d exceeds size: %d chars", i, n)
		}
	}
}

func TestChunkOverlapCarriedForward(t *testing.T) {
	text := strings.Repeat("Orders ship within two days of purchase. ", 30)
	chunks := Chunk(text, 150, 40)
	if len(chunks) < 2 {
		t.Fatalf("expected at least two chunks, got %d", len(chunks))
	}
	// Each chunk after the first must start with the 40-char tail of its
	// predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-40:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with predecessor tail", i)
		}
	}
}

func TestChunkNoOverlap(t *testing.T) {
	text := "First sentence here today. Second sentence here today. Third sentence here today."
	chunks := Chunk(text, 30, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, want := range []string{
		"First sentence here today",
		"Second sentence here today",
		"Third sentence here today",
	} {
		if chunks[i] != want {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want)
		}
	}
}

// Chunks reconstruct the normalized text: with no overlap their
// concatenation is the sentence stream, and with overlap stripping the
// carried tail from each later chunk yields the same stream.
func TestChunkRoundTrip(t *testing.T) {
	text := strings.Repeat("Orders ship within two days. Refunds settle in a week. ", 12)
	normalized := strings.Join(splitSentences(text), " ")

	chunks := Chunk(text, 90, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks, " "); got != normalized {
		t.Errorf("no-overlap chunks do not reconstruct the text:\n got %q\nwant %q", got, normalized)
	}

	const overlap = 25
	chunks = Chunk(text, 90, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	rebuilt := chunks[0]
	for i, c := range chunks[1:] {
		runes := []rune(c)
		if len(runes) <= overlap+1 {
			t.Fatalf("chunk %d too short to carry the overlap tail", i+1)
		}
		// Drop the carried tail and its joining space.
		rebuilt += " " + string(runes[overlap+1:])
	}
	if rebuilt != normalized {
		t.Errorf("overlap-stripped chunks do not reconstruct the text:\n got %q\nwant %q", rebuilt, normalized)
	}
}

func TestChunkDegenerateInput(t *testing.T) {
	// No sentence punctuation at all: a single chunk of the whole text.
	text := strings.Repeat("word ", 20)
	chunks := Chunk(text, 512, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if chunks[0] != strings.TrimSpace(text) {
		t.Errorf("degenerate chunk must equal the whole text")
	}
}

func TestChunkDegenerateInputTruncated(t *testing.T) {
	text := strings.Repeat("x", 600)
	chunks := Chunk(text, 512, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 512 {
		t.Errorf("degenerate oversized input must be truncated to chunk size, got %d", len(chunks[0]))
	}
}

func TestChunkEmptyInput(t *testing.T) {
	if chunks := Chunk("", 512, 50); chunks != nil {
		t.Errorf("empty input must yield no chunks, got %v", chunks)
	}
	if chunks := Chunk("   ", 512, 50); chunks != nil {
		t.Errorf("blank input must yield no chunks, got %v", chunks)
	}
}
