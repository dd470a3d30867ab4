package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// DecodePCM interprets little-endian headerless sample data. A trailing
// partial sample or partial frame is dropped.
func DecodePCM(data []byte, format PCMFormat) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	width := format.Format.Bytes()
	n := len(data) / width

	switch format.Format {
	case Int16:
		samples := make([]int16, n)
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return NewInt16Buffer(samples, format.Channels), nil
	case Int32:
		samples := make([]int32, n)
		for i := range samples {
			samples[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return NewInt32Buffer(samples, format.Channels), nil
	case Float32:
		samples := make([]float32, n)
		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return NewFloat32Buffer(samples, format.Channels), nil
	case Float64:
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return NewFloat64Buffer(samples, format.Channels), nil
	}
	return nil, fmt.Errorf("unknown sample format %q", format.Format)
}

// ReadPCMFile reads a whole headerless PCM file.
func ReadPCMFile(path string, format PCMFormat) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodePCM(data, format)
}

// EncodeInt16 is the inverse of DecodePCM for int16 samples.
func EncodeInt16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
