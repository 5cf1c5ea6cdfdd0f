package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/listsync/internal/diff"
	"github.com/dshills/listsync/internal/source"
)

func newDiffCmd(c *cli) *cobra.Command {
	var (
		idPath  string
		format  string
		noMoves bool
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print the edit script turning OLD into NEW",
		Long: `Print the edit script turning the JSON list in OLD into the one in NEW.

Both files hold a JSON array or JSON lines. Items are matched by the value
at the identity path; matched items whose JSON differs are reported as
changes carrying the item identity.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			path := c.idPath(idPath)
			oldItems, err := source.Load(args[0], path)
			if err != nil {
				return err
			}
			newItems, err := source.Load(args[1], path)
			if err != nil {
				return err
			}

			opts := append(c.diffOptions(noMoves), diff.WithChangePayload(func(_, newIndex int) any {
				return newItems[newIndex].ID
			}))
			result := diff.Compare(oldItems, newItems, source.Matcher(), opts...)
			if result.FellBack() {
				c.logger.Warn().
					Int("old", result.OldLen()).
					Int("new", result.NewLen()).
					Msg("edit distance limit exceeded, reporting full replace")
			}

			return writeScript(cmd.OutOrStdout(), format, result.Script())
		},
	}

	cmd.Flags().StringVar(&idPath, "id", "", "gjson path of the item identity (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json)")
	cmd.Flags().BoolVar(&noMoves, "no-moves", false, "Report moves as remove and insert")
	return cmd
}
