package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/Dicklesworthstone/picam/pkg/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent captures and timing statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.OpenDB(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer db.Close()

		captures, err := db.Recent(historyLimit)
		if err != nil {
			return err
		}
		summary, err := db.Summary()
		if err != nil {
			return err
		}

		if len(captures) == 0 {
			fmt.Println("No captures recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tPROFILE\tFILE\tTOOK\tRESULT")
		for _, c := range captures {
			result := "ok"
			if !c.Succeeded() {
				result = c.Error
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\t%s\n",
				c.ID, c.StartedAt.Local().Format("2006-01-02 15:04:05"), c.Profile,
				filepath.Base(c.Path), c.Duration().Round(10e6), result)
		}
		w.Flush()
		fmt.Println()
		fmt.Println(summary)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit, "number of captures to show")
	rootCmd.AddCommand(historyCmd)
}
