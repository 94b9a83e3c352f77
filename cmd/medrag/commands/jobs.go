// ABOUTME: CLI command to inspect ingestion jobs recorded by the server
// ABOUTME: Reads the job database directly without starting a worker
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage/sqlite"
)

var jobsLimit int

// NewJobsCmd creates the jobs command
func NewJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs [id]",
		Short: "List ingestion jobs or show one job",
		Long: `List recent ingestion jobs queued through the server, or show
a single job by ID including the failing stage and message.

Examples:
  medrag jobs
  medrag jobs --limit 5
  medrag jobs 3f0c2a9e-... --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runJobs,
	}

	cmd.Flags().IntVar(&jobsLimit, "limit", 20, "Maximum jobs to list")

	return cmd
}

func runJobs(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(jobsLimit, "limit"); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.JobsDBPath()); errors.Is(err, os.ErrNotExist) {
		if len(args) == 1 {
			return fmt.Errorf("job not found: %s", args[0])
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No ingestion jobs recorded\n")
		}
		return nil
	}

	db, err := sqlite.Open(cfg.JobsDBPath())
	if err != nil {
		return fmt.Errorf("opening job database: %w", err)
	}
	defer db.Close()
	store := sqlite.NewJobStore(db)

	if len(args) == 1 {
		job, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("reading job: %w", err)
		}
		if job == nil {
			return fmt.Errorf("job not found: %s", args[0])
		}
		return printJob(cmd, *job)
	}

	jobs, err := store.List(jobsLimit)
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	if jsonOutput() {
		if jobs == nil {
			jobs = []models.IngestJob{}
		}
		jsonData, err := json.MarshalIndent(jobs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(jobs) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No ingestion jobs recorded\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSTATUS\tCHUNKS\tCREATED\tFILE\n")
	fmt.Fprintf(w, "--\t------\t------\t-------\t----\n")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			truncate(job.ID, 13),
			job.Status,
			job.Chunks,
			formatTime(job.CreatedAt),
			truncate(job.Request.Path, 40))
	}
	w.Flush()

	return nil
}

func printJob(cmd *cobra.Command, job models.IngestJob) error {
	if jsonOutput() {
		jsonData, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:       %s\n", job.ID)
	fmt.Fprintf(out, "File:     %s\n", job.Request.Path)
	fmt.Fprintf(out, "Status:   %s\n", job.Status)
	if job.Stage != "" {
		fmt.Fprintf(out, "Stage:    %s\n", job.Stage)
	}
	if job.Message != "" {
		fmt.Fprintf(out, "Message:  %s\n", job.Message)
	}
	fmt.Fprintf(out, "Chunks:   %d\n", job.Chunks)
	fmt.Fprintf(out, "Chunking: %d chars, %d overlap", job.Request.ChunkSize, job.Request.Overlap)
	if job.Request.Rebuild {
		fmt.Fprintf(out, ", rebuild")
	}
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Created:  %s\n", formatTime(job.CreatedAt))
	fmt.Fprintf(out, "Updated:  %s\n", formatTime(job.UpdatedAt))
	return nil
}
