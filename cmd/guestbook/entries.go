package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"guestbook/internal/guestbook"
)

func init() {
	postCmd.Flags().String("name", "", "author name")
	postCmd.Flags().String("content", "", "message text")
	deleteCmd.Flags().BoolP("yes", "y", false, "delete without asking")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(deleteCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List guestbook messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, log, client, err := setup()
		if err != nil {
			return err
		}

		ctl := guestbook.NewController(client, log.Named("controller"))
		ctl.Mount(cmd.Context())

		return printState(cmd.OutOrStdout(), ctl.Snapshot(), guestbook.NewDateFormatter(c.Locale))
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a guestbook message",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, log, client, err := setup()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		content, _ := cmd.Flags().GetString("content")

		ctl := guestbook.NewController(client, log.Named("controller"))
		ctl.Mount(cmd.Context())
		if err := ctl.SubmitDraft(cmd.Context(), name, content); err != nil {
			return err
		}

		return printState(cmd.OutOrStdout(), ctl.Snapshot(), guestbook.NewDateFormatter(c.Locale))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a guestbook message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, log, client, err := setup()
		if err != nil {
			return err
		}

		var confirmer guestbook.Confirmer = &promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			confirmer = guestbook.Answer(true)
		}

		ctl := guestbook.NewController(client, log.Named("controller"))
		ctl.Mount(cmd.Context())
		ctl.Delete(cmd.Context(), guestbook.EntryID(args[0]), confirmer)

		return printState(cmd.OutOrStdout(), ctl.Snapshot(), guestbook.NewDateFormatter(c.Locale))
	},
}

// promptConfirmer asks on the terminal. Only "y" or "yes" confirms.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)

	answer, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// printState writes the entries and returns the state's error, if any, so
// the command exits non-zero.
func printState(out io.Writer, s guestbook.State, dates *guestbook.DateFormatter) error {
	if s.Error != "" {
		return errors.New(s.Error)
	}

	fmt.Fprintf(out, "%d messages\n", len(s.Entries))
	for _, e := range s.Entries {
		fmt.Fprintf(out, "\n#%s %s (%s)\n%s\n", e.ID, e.Name, dates.Format(e.CreatedAt, ""), e.Content)
	}
	return nil
}
