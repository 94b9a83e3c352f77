// ABOUTME: Read-only projections over the metadata store for the dashboard
// ABOUTME: Stats and SourceSummary mirror the JSON shapes served by the API
package models

// Stats is the dashboard summary
type Stats struct {
	Docs         int      `json:"docs"`
	Chunks       int      `json:"chunks"`
	QueriesToday int      `json:"queries_today"`
	Recent       []string `json:"recent"`
}

// SourceSummary describes one ingested document
type SourceSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Chunks  int    `json:"chunks"`
}
