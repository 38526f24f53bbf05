package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "rabbit-bot",
		Short:         "Recurring channel reminders and server status for Discord",
		Long:          "rabbit-bot posts recurring reminders to Discord channels and answers Minecraft server status questions over RCON.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file merged into the environment before reading configuration")

	cmd.AddCommand(newRunCmd(&envFile))
	cmd.AddCommand(newTokenCmd(&envFile))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
