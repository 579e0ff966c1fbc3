package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"dis86/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the newest debug log",
	Long: `Print the newest dis86-*-debug.log written with DIS86_LOG_TO_FILE=1.
With --follow, keep printing lines as they are appended.`,
	Example: `
# Follow the log of a long batch run from another terminal
DIS86_LOG_TO_FILE=1 DIS86_LOG_LEVEL=debug dis86 run *.bin &
dis86 logs -f
  `,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		path, err := logging.LatestDebugLog()
		if err != nil {
			return err
		}
		if !follow {
			return printFile(cmd.OutOrStdout(), path)
		}
		return followFile(cmd, path)
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "Keep printing new lines")
}

func printFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// followFile streams path until the command context is cancelled.
func followFile(cmd *cobra.Command, path string) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("follow %s: %w", path, err)
	}
	defer t.Cleanup()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return line.Err
			}
			fmt.Fprintln(w, line.Text)
		}
	}
}
