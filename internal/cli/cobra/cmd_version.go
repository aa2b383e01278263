package cobra

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/version"
)

// buildInfo is what `tixmail version` reports: the build plus the ledger
// formats and ticket kinds this binary can handle, so a tixmail.yaml can be
// checked against the installed version.
type buildInfo struct {
	Version       string   `json:"version"`
	Commit        string   `json:"commit,omitempty"`
	Go            string   `json:"go"`
	LedgerFormats []string `json:"ledger_formats"`
	TicketKinds   []string `json:"ticket_kinds"`
}

func currentBuildInfo() buildInfo {
	return buildInfo{
		Version:       version.FullVersion(),
		Commit:        version.Commit,
		Go:            runtime.Version(),
		LedgerFormats: []string{config.FormatCSV, config.FormatXLSX, config.FormatJSON, config.FormatSQLite},
		TicketKinds:   []string{config.ArtifactImage, config.ArtifactPDF},
	}
}

func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print tixmail version",
		Long: `Print the tixmail version along with the ledger formats and ticket
kinds this build supports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, _ = fmt.Fprintf(w, "tixmail %s\n", info.Version)
			_, _ = fmt.Fprintf(w, "go: %s\n", info.Go)
			_, _ = fmt.Fprintf(w, "ledger_formats: %s\n", strings.Join(info.LedgerFormats, ", "))
			_, _ = fmt.Fprintf(w, "ticket_kinds: %s\n", strings.Join(info.TicketKinds, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
