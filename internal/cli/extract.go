package cli

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/memoria/internal/metadata"
	"github.com/mmynk/memoria/internal/models"
)

// extraction is the JSON printed by the extract command.
type extraction struct {
	File       string           `json:"file"`
	CapturedAt *time.Time       `json:"captured_at,omitempty"`
	Location   *models.Location `json:"location,omitempty"`
	Metadata   map[string]any   `json:"metadata"`
	Issues     []string         `json:"issues,omitempty"`
}

func newExtractCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the metadata extracted from an image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.load(); err != nil {
				return err
			}

			res := metadata.NewExtractor(slog.Default()).ExtractFile(args[0])
			out := extraction{
				File:       args[0],
				CapturedAt: res.CapturedAt,
				Location:   res.Location,
				Metadata:   res.Map(),
			}
			for _, issue := range res.Issues {
				out.Issues = append(out.Issues, issue.Error())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
