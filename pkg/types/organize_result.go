package types

// DispositionResult holds the outcome of a single disposition
type DispositionResult struct {
	Entry           Entry  `json:"entry"`
	Action          Action `json:"action"`
	Index           int    `json:"index"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path,omitempty"`
	Moved           bool   `json:"moved"`
	// Warning carries a non-fatal problem, such as a failed viewed-log
	// write, that did not stop the disposition.
	Warning error `json:"-"`
}
