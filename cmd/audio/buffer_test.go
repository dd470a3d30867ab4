package audio

import (
	"testing"
)

func TestBuffer_BlockConversion(t *testing.T) {
	tests := []struct {
		name string
		buf  *Buffer
		want []float32
	}{
		{"int16", NewInt16Buffer([]int16{-32768, 0, 16384}, 1), []float32{-1, 0, 0.5}},
		{"int32", NewInt32Buffer([]int32{-2147483648, 1 << 29}, 1), []float32{-1, 0.25}},
		{"float32 passthrough", NewFloat32Buffer([]float32{0.1, -0.7}, 1), []float32{0.1, -0.7}},
		{"float64 passthrough", NewFloat64Buffer([]float64{0.5, -0.5}, 1), []float32{0.5, -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.buf.Block(0, 10, 1)
			if len(got) != len(tt.want) {
				t.Fatalf("Block len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Block[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuffer_MonoReplication(t *testing.T) {
	buf := NewInt16Buffer([]int16{16384, -16384}, 1)
	got := buf.Block(0, 2, 3)
	want := []float32{0.5, 0.5, 0.5, -0.5, -0.5, -0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Block = %v, want %v", got, want)
		}
	}
}

func TestBuffer_MultiChannel(t *testing.T) {
	buf := NewFloat32Buffer([]float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}, 3)
	if buf.Frames() != 2 {
		t.Fatalf("Frames = %d, want 2 (partial frame dropped)", buf.Frames())
	}
	got := buf.Block(1, 5, 2)
	want := []float32{0.4, 0.5}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Block(1, 5, 2) = %v, want %v", got, want)
	}
}

func TestBuffer_ClipsOutOfRangeBlock(t *testing.T) {
	// floats that were really integers
	buf := NewFloat32Buffer([]float32{12000, -0.5, 0.25, -30000}, 1)
	got := buf.Block(0, 4, 1)
	want := []float32{1, -0.5, 0.25, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Block[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// a magnitude of 9 stays untouched
	buf = NewFloat32Buffer([]float32{9, -9}, 1)
	if got := buf.Block(0, 2, 1); got[0] != 9 || got[1] != -9 {
		t.Errorf("Block = %v, want unclipped [9 -9]", got)
	}
}

func TestBuffer_BlockBounds(t *testing.T) {
	buf := NewInt16Buffer([]int16{1, 2, 3}, 1)
	if got := buf.Block(3, 10, 1); got != nil {
		t.Errorf("Block past end = %v, want nil", got)
	}
	if got := buf.Block(2, 10, 1); len(got) != 1 {
		t.Errorf("short tail block len = %d, want 1", len(got))
	}
	var empty *Buffer
	if empty.Frames() != 0 || empty.Len() != 0 {
		t.Error("nil buffer should be empty")
	}
}

func TestParseSampleFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SampleFormat
		wantErr bool
	}{
		{"int16", Int16, false},
		{"INT32", Int32, false},
		{" float32 ", Float32, false},
		{"float64", "", true},
		{"int8", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSampleFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseSampleFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPCMFormat_Validate(t *testing.T) {
	if err := DefaultPCMFormat().Validate(); err != nil {
		t.Errorf("default format invalid: %v", err)
	}
	bad := []PCMFormat{
		{SampleRate: 0, Channels: 1, Format: Int16},
		{SampleRate: 44100, Channels: 0, Format: Int16},
		{SampleRate: 44100, Channels: 1, Format: "int8"},
	}
	for _, f := range bad {
		if f.Validate() == nil {
			t.Errorf("%+v validated", f)
		}
	}
}
