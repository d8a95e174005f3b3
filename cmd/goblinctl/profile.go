package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/EvanBalster/perf-goblin/internal/goblin/profile"
	"github.com/EvanBalster/perf-goblin/internal/goblin/profile/store"
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileExportCmd)
	profileCmd.AddCommand(profileImportCmd)

	profileShowCmd.Flags().StringP("db", "d", "", "SQLite profile store to read instead of a text file")
	profileExportCmd.Flags().StringP("db", "d", "", "SQLite profile store to read (required)")
	profileImportCmd.Flags().StringP("db", "d", "", "SQLite profile store to write (required)")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or round-trip a persisted burden profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [TEXT_FILE]",
	Short: "Print every task's learned burden, one line per option",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		p, err := loadProfile(db, args)
		if err != nil {
			return err
		}
		for _, id := range p.Ids() {
			t := p.Find(id)
			fmt.Printf("%s (%d options)\n", id, t.Count())
			for i, o := range t.Options {
				fmt.Printf("  [%d] n=%s mean=%s\n", i,
					humanize.Comma(int64(o.Full.Count())),
					humanize.Commaf(o.Full.Mean))
			}
		}
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export OUT_FILE",
	Short: "Write the profile's full-run stats to a text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		p, err := loadProfile(db, nil)
		if err != nil {
			return err
		}
		text, err := store.EncodeText(p)
		if err != nil {
			return err
		}
		return os.WriteFile(args[0], []byte(text), 0o644)
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import IN_FILE",
	Short: "Load a text profile and assimilate it into a SQLite store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		if db == "" {
			return fmt.Errorf("goblinctl: profile import requires --db")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		p, err := store.DecodeText(string(data))
		if err != nil {
			return err
		}
		sq, err := store.OpenSQLite(db)
		if err != nil {
			return err
		}
		defer sq.Close()
		runID, err := sq.Save(p)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d tasks as run %s\n", len(p.Ids()), runID)
		return nil
	},
}

func loadProfile(dbPath string, args []string) (*profile.Profile, error) {
	if dbPath != "" {
		sq, err := store.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		defer sq.Close()
		return sq.Load()
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("goblinctl: provide a text file path or --db")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	return store.DecodeText(string(data))
}
