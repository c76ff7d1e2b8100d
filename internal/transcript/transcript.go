package transcript

// Segment is one timestamped span of a verbose transcription.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the result of one transcription run.
type Transcript struct {
	SourcePath string    `json:"source_path"`
	Language   string    `json:"language"`
	Duration   float64   `json:"duration"`
	Text       string    `json:"text"`
	Segments   []Segment `json:"segments,omitempty"`
}

// HasTimings reports whether the transcript can be rendered as subtitles.
func (t *Transcript) HasTimings() bool {
	return t != nil && len(t.Segments) > 0
}
