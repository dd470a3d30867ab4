// Package fingerprint loads fingerprint dumps and derives what the plots
// show from them: session groups, cross-signal connections, time ranges and
// hover text.
package fingerprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Data is one fingerprint dump.
type Data struct {
	Title             string  `json:"title"`
	AudioFilePath     string  `json:"audioFilePath,omitempty"`
	AllPeaks          []Peak  `json:"allPeaks"`
	FingerprintPoints []Point `json:"fingerprintPoints"`
	MatchedPoints     []Match `json:"matchedPoints,omitempty"`
}

// Peak is [frequency, time, amplitude].
type Peak struct {
	Freq      float64
	Time      float64
	Amplitude float64
}

// Point is [frequency, time, hash]. Hash is kept as text: strings unquoted,
// numbers in their JSON spelling.
type Point struct {
	Freq float64
	Time float64
	Hash string
}

// Match is [frequency, time, hash, session?].
type Match struct {
	Freq       float64
	Time       float64
	Hash       string
	Session    int
	HasSession bool
}

func (p *Peak) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("peak: %w", err)
	}
	if len(raw) < 3 {
		return fmt.Errorf("peak: want 3 elements, got %d", len(raw))
	}
	var err error
	if p.Freq, err = number(raw[0]); err != nil {
		return fmt.Errorf("peak frequency: %w", err)
	}
	if p.Time, err = number(raw[1]); err != nil {
		return fmt.Errorf("peak time: %w", err)
	}
	if p.Amplitude, err = number(raw[2]); err != nil {
		return fmt.Errorf("peak amplitude: %w", err)
	}
	return nil
}

func (p Peak) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{p.Freq, p.Time, p.Amplitude})
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("fingerprint point: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("fingerprint point: want at least 2 elements, got %d", len(raw))
	}
	var err error
	if p.Freq, err = number(raw[0]); err != nil {
		return fmt.Errorf("fingerprint frequency: %w", err)
	}
	if p.Time, err = number(raw[1]); err != nil {
		return fmt.Errorf("fingerprint time: %w", err)
	}
	if len(raw) > 2 {
		p.Hash = hashText(raw[2])
	}
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Freq, p.Time, json.RawMessage(hashJSON(p.Hash))})
}

func (m *Match) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("matched point: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("matched point: want at least 2 elements, got %d", len(raw))
	}
	var err error
	if m.Freq, err = number(raw[0]); err != nil {
		return fmt.Errorf("match frequency: %w", err)
	}
	if m.Time, err = number(raw[1]); err != nil {
		return fmt.Errorf("match time: %w", err)
	}
	if len(raw) > 2 {
		m.Hash = hashText(raw[2])
	}
	if len(raw) > 3 && !isNull(raw[3]) {
		s, err := number(raw[3])
		if err != nil {
			return fmt.Errorf("match session: %w", err)
		}
		m.Session, m.HasSession = int(s), true
	}
	return nil
}

func (m Match) MarshalJSON() ([]byte, error) {
	fields := []any{m.Freq, m.Time, json.RawMessage(hashJSON(m.Hash))}
	if m.HasSession {
		fields = append(fields, m.Session)
	}
	return json.Marshal(fields)
}

func number(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	// numbers written as strings
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	return strconv.ParseFloat(s, 64)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// hashText returns a string hash unquoted and anything else as written.
func hashText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func hashJSON(h string) []byte {
	if h == "" {
		return []byte("null")
	}
	if json.Valid([]byte(h)) {
		if _, err := strconv.ParseFloat(h, 64); err == nil {
			return []byte(h)
		}
	}
	b, _ := json.Marshal(h)
	return b
}

// Amplitudes returns the amplitude of every peak, in order.
func (d *Data) Amplitudes() []float64 {
	out := make([]float64, len(d.AllPeaks))
	for i, p := range d.AllPeaks {
		out[i] = p.Amplitude
	}
	return out
}

// Load reads a fingerprint dump from path.
func Load(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a fingerprint dump.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("invalid fingerprint json: %w", err)
	}
	return &d, nil
}
