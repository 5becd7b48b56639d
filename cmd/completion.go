package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generates shell completion scripts",
	Long: `
To load completions for the current shell:

	bash:        source <(findy-custodian completion bash)
	zsh:         source <(findy-custodian completion zsh)
	fish:        findy-custodian completion fish | source
	powershell:  findy-custodian completion powershell | Out-String | Invoke-Expression

Add the same line to your shell's startup script (.bashrc, .zshrc,
config.fish, $PROFILE) to load them for each session.
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(_ *cobra.Command, args []string) error {
		switch args[0] {
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
