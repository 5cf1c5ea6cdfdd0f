package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/listsync/internal/source"
	"github.com/dshills/listsync/internal/store"
	"github.com/dshills/listsync/internal/tracking"
)

func newSortCmd(c *cli) *cobra.Command {
	var (
		idPath  string
		by      string
		lang    string
		format  string
		output  string
		noMoves bool
		verify  bool
	)

	cmd := &cobra.Command{
		Use:   "sort FILE",
		Short: "Print the edit script produced by sorting FILE",
		Long: `Sort the JSON list in FILE by the value at --by and print the operations
an observer of the list receives. Equal values keep their order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			cmpFn := source.Compare(by)
			if lang != "" {
				var err error
				if cmpFn, err = source.CompareCollated(by, lang); err != nil {
					return err
				}
			}

			items, err := source.Load(args[0], c.idPath(idPath))
			if err != nil {
				return err
			}

			opts := c.cfg.StoreOptions(store.WithLogger(c.logger))
			if noMoves {
				opts = append(opts, store.WithDetectMoves(false))
			}
			s, err := store.NewFromItems(source.Matcher(), items, opts...)
			if err != nil {
				return err
			}
			defer s.Close()

			tracker := tracking.NewTracker()
			s.Subscribe(tracker)
			mirror := tracking.NewMirror(items)
			s.Subscribe(mirror)

			s.Sort(cmpFn)
			sorted := s.Items()

			if verify {
				if err := mirror.Fill(sorted); err != nil {
					return err
				}
				if err := mirror.Verify(sorted, source.Matcher()); err != nil {
					return fmt.Errorf("replay check failed: %w", err)
				}
				c.logger.Debug().Int("items", len(sorted)).Msg("replay verified")
			}

			if output != "" {
				if err := os.WriteFile(output, source.Marshal(sorted), 0o644); err != nil {
					return err
				}
			}

			return writeScript(cmd.OutOrStdout(), format, tracker.EventsSince(0))
		},
	}

	cmd.Flags().StringVar(&idPath, "id", "", "gjson path of the item identity (default from config)")
	cmd.Flags().StringVar(&by, "by", "", "gjson path of the sort key")
	cmd.Flags().StringVar(&lang, "collate", "", "Order strings by the collation of this language tag (e.g. en, de)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the sorted list to this file")
	cmd.Flags().BoolVar(&noMoves, "no-moves", false, "Report moves as remove and insert")
	cmd.Flags().BoolVar(&verify, "verify", false, "Replay the script on a copy and check it yields the sorted list")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}
