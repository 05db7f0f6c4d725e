package utils

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"testing"
)

func TestSplitJpeg(t *testing.T) {
	// Construct a stream containing: [Garbage] [JPEG] [Garbage]
	// SOI (Start of Image): FF D8
	// EOI (End of Image):   FF D9

	jpegData := []byte{0xFF, 0xD8, 0x01, 0x02, 0x03, 0xFF, 0xD9}

	streamData := []byte{0x00, 0x00} // Garbage at start
	streamData = append(streamData, jpegData...)
	streamData = append(streamData, []byte{0x00, 0x00}...) // Garbage at end

	// Use bufio.Scanner with our custom Split function
	scanner := bufio.NewScanner(bytes.NewReader(streamData))
	scanner.Split(SplitJpeg)

	// Scan() should skip the first garbage bytes and find the JPEG
	if !scanner.Scan() {
		t.Fatal("Expected to find a token, got EOF")
	}

	// Verify the extracted token is exactly the JPEG
	if !bytes.Equal(scanner.Bytes(), jpegData) {
		t.Errorf("Expected %X, got %X", jpegData, scanner.Bytes())
	}

	// Scan() again should return false (EOF) because the trailing garbage is not a JPEG
	if scanner.Scan() {
		t.Error("Expected only one token, found more")
	}
}

func TestSplitJpeg_Consecutive(t *testing.T) {
	a := []byte{0xFF, 0xD8, 0xAA, 0xFF, 0xD9}
	b := []byte{0xFF, 0xD8, 0xBB, 0xBB, 0xFF, 0xD9}
	stream := append(append([]byte{}, a...), b...)

	scanner := bufio.NewScanner(bytes.NewReader(stream))
	scanner.Split(SplitJpeg)

	var got [][]byte
	for scanner.Scan() {
		got = append(got, append([]byte(nil), scanner.Bytes()...))
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(got))
	}
	if !bytes.Equal(got[0], a) || !bytes.Equal(got[1], b) {
		t.Errorf("Frames split incorrectly: %X", got)
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		rate    string
		want    float64
		wantErr bool
	}{
		{"30/1", 30, false},
		{"30000/1001", 29.97002997, false},
		{"25", 25, false},
		{"0/0", 0, true},
		{"abc", 0, true},
		{"30/x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFrameRate(tt.rate)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFrameRate(%q) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			continue
		}
		if math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestVideoStem(t *testing.T) {
	tests := map[string]string{
		"/data/videos/squat_01.mp4": "squat_01",
		"clip.v2.mov":               "clip.v2",
		"noext":                     "noext",
	}
	for in, want := range tests {
		if got := VideoStem(in); got != want {
			t.Errorf("VideoStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeCommandCapturesStderr(t *testing.T) {
	s := NewSafeCommand(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err := s.Run(); err == nil {
		t.Fatal("Expected non-zero exit")
	}
	if got := s.Stderr.String(); got != "boom\n" {
		t.Errorf("Expected captured stderr %q, got %q", "boom\n", got)
	}
}

func TestNewSequenceIDIncreases(t *testing.T) {
	a := NewSequenceID()
	b := NewSequenceID()
	if b < a {
		t.Errorf("Expected non-decreasing ids, got %d then %d", a, b)
	}
}
