package cobra

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func newCompletionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts.
By default, prints the script to stdout.
Use --output to write directly to a file.

Arguments:
  shell    target shell: bash, zsh or fish

Installation:

  bash (with bash-completion package):
    tixmail completion bash > ~/.local/share/bash-completion/completions/tixmail

  zsh (with fpath):
    tixmail completion zsh > ~/.zsh/completions/_tixmail
    # ensure ~/.zsh/completions is in fpath before compinit

  fish:
    tixmail completion fish > ~/.config/fish/completions/tixmail.fish

After installation, restart your shell.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rootCmd := cmd.Root()

			var buf bytes.Buffer
			var err error
			switch args[0] {
			case "bash":
				err = rootCmd.GenBashCompletionV2(&buf, true)
			case "zsh":
				err = rootCmd.GenZshCompletion(&buf)
			case "fish":
				err = rootCmd.GenFishCompletion(&buf, true)
			default:
				return errors.New(errors.EUsage, fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish)", args[0]))
			}
			if err != nil {
				return errors.Wrap(errors.EInternal, "failed to generate completion script", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := fs.WriteFileAtomic(fs.NewRealFS(), output, buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to write %s", output), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "write completion script to file instead of stdout")

	return cmd
}
