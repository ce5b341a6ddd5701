package scans

type CreateScanPayload struct {
	// WorkingDirectory overrides the configured library root for this scan.
	WorkingDirectory string `json:"working_directory,omitempty"`
}
