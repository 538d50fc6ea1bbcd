package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/case-gallery/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Import Markdown case files from a directory",
		Long: "Imports every *.md file under dir. Each file starts with a YAML (---) or\n" +
			"TOML (+++) front matter block. Cases and terms are upserted by slug in\n" +
			"a single transaction.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := os.DirFS(args[0])
			if dryRun {
				docs, err := seed.Load(fsys)
				if err != nil {
					return err
				}
				for _, d := range docs {
					fmt.Fprintf(a.out, "%s\t%s\n", d.Meta.Slug, d.Name)
				}
				return nil
			}

			pool, err := a.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			res, err := seed.ImportDir(cmd.Context(), pool, fsys, a.logger)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse files and list slugs without writing")
	return cmd
}
