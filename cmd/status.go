package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/casewatch/internal/config"
	"github.com/pders01/casewatch/internal/store"
	"github.com/spf13/cobra"
)

var (
	statusJSON bool
	statusToon bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracked cases from the snapshot store",
	Long: `List every case in the persisted snapshot store with its last
observed state and fingerprint.

Examples:
  casewatch status
  casewatch status --json
  casewatch status --toon`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVar(&statusToon, "toon", false, "Output in LLM-friendly toon format")
}

type caseStatus struct {
	ReceiptNumber string    `json:"receipt_number"`
	Description   string    `json:"description"`
	UpdatedAt     string    `json:"updated_at,omitempty"`
	Events        int       `json:"events"`
	LastChecked   time.Time `json:"last_checked"`
	Fingerprint   string    `json:"fingerprint"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	states, err := store.NewFileStore(cfg.StateFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot store: %w", err)
	}

	if len(states) == 0 {
		fmt.Println("No cases tracked yet (run 'casewatch check' first)")
		return nil
	}

	statuses := make([]caseStatus, 0, len(states))
	for receipt, snap := range states {
		statuses = append(statuses, caseStatus{
			ReceiptNumber: receipt,
			Description:   snap.Description,
			UpdatedAt:     snap.Record.UpdatedAt(),
			Events:        len(snap.Record.Events()),
			LastChecked:   snap.LastChecked,
			Fingerprint:   snap.Fingerprint,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ReceiptNumber < statuses[j].ReceiptNumber
	})

	if statusJSON {
		output, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if statusToon {
		output, err := gotoon.Encode(statuses)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("Tracking %d case(s):\n\n", len(statuses))
	for _, s := range statuses {
		fmt.Printf("  %s\n", s.ReceiptNumber)
		fmt.Printf("    Description:  %s\n", s.Description)
		if s.UpdatedAt != "" {
			fmt.Printf("    Updated:      %s\n", s.UpdatedAt)
		}
		fmt.Printf("    Events:       %d\n", s.Events)
		fmt.Printf("    Last checked: %s\n", s.LastChecked.Format("2006-01-02 15:04"))
		fmt.Printf("    Fingerprint:  %s\n", s.Fingerprint)
		fmt.Println()
	}

	return nil
}
