package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/store"
)

// recordsCommand creates the records command for browsing stored records.
func (c *CLI) recordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List and inspect stored annotation records",
	}

	cmd.AddCommand(c.recordsListCommand())
	cmd.AddCommand(c.recordsShowCommand())
	cmd.AddCommand(c.recordsPathCommand())

	return cmd
}

func (c *CLI) recordsListCommand() *cobra.Command {
	var (
		source string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newRecordStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.List(cmd.Context(), store.ListOptions{Source: source, Limit: limit})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("No records")
				return nil
			}

			t := newTable("id", "created", "source", "recipe", "box")
			for _, r := range records {
				t.Row(
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Source,
					recipeLabel(r),
					formatBox(r.Box),
				)
			}
			fmt.Println(t.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "only records of this source image")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records to list (0 for all)")

	return cmd
}

func (c *CLI) recordsShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateRecordID(args[0]); err != nil {
				return err
			}
			st, err := newRecordStore()
			if err != nil {
				return err
			}
			defer st.Close()

			r, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			fmt.Println(StyleTitle.Render("Record " + r.ID))
			printKeyValue("created", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("source", r.Source)
			if r.Output != "" {
				printKeyValue("output", r.Output)
			}
			printKeyValue("recipe", recipeLabel(r))
			printKeyValue("source size", r.SourceExtent.String())
			printKeyValue("source box", formatBox(r.SourceBox))
			printKeyValue("size", r.Extent.String())
			printKeyValue("box", formatBox(r.Box))
			printWarnings(r.Warnings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")

	return cmd
}

func (c *CLI) recordsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the record directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := recordsDir()
			if err != nil {
				return fmt.Errorf("get records dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// recipeLabel names a record's recipe, falling back to its operations.
func recipeLabel(r *store.Record) string {
	if r.Recipe.Name != "" {
		return r.Recipe.Name
	}
	ops := make([]string, len(r.Recipe.Steps))
	for i, s := range r.Recipe.Steps {
		ops[i] = s.Op
	}
	return strings.Join(ops, " → ")
}
