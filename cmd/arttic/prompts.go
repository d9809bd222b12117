package main

import (
	"github.com/aretw0/arttic/internal/cli"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage the backend prompt library",
}

func promptRunner(build func(cmd *cobra.Command, args []string) cli.PromptCommand) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return cli.RunPrompts(runOptions(cmd), build(cmd, args), cmd.OutOrStdout())
	}
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved prompts",
	Args:  cobra.NoArgs,
	RunE: promptRunner(func(cmd *cobra.Command, args []string) cli.PromptCommand {
		return cli.PromptCommand{Op: "list"}
	}),
}

var promptsAddCmd = &cobra.Command{
	Use:   "add <title> <prompt>",
	Short: "Save a prompt",
	Args:  cobra.ExactArgs(2),
	RunE: promptRunner(func(cmd *cobra.Command, args []string) cli.PromptCommand {
		negative, _ := cmd.Flags().GetString("negative")
		return cli.PromptCommand{Op: "add", Prompt: domain.Prompt{
			Title:          args[0],
			Prompt:         args[1],
			NegativePrompt: negative,
		}}
	}),
}

var promptsUpdateCmd = &cobra.Command{
	Use:   "update <title> <new-title>",
	Short: "Rename a prompt",
	Args:  cobra.ExactArgs(2),
	RunE: promptRunner(func(cmd *cobra.Command, args []string) cli.PromptCommand {
		return cli.PromptCommand{Op: "update", Title: args[0], NewTitle: args[1]}
	}),
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: promptRunner(func(cmd *cobra.Command, args []string) cli.PromptCommand {
		return cli.PromptCommand{Op: "delete", Title: args[0]}
	}),
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsListCmd, promptsAddCmd, promptsUpdateCmd, promptsDeleteCmd)
	promptsAddCmd.Flags().String("negative", "", "Negative prompt")
}
