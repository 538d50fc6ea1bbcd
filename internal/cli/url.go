package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/repo"
	"github.com/pkordes/case-gallery/internal/router"
)

func newURLCmd(a *app) *cobra.Command {
	var modeFlag string
	cmd := &cobra.Command{
		Use:   "url <id> <case|category|procedure>",
		Short: "Print the address of a case or term",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}
			kind, err := domain.ParseKind(args[1])
			if err != nil {
				return err
			}
			var mode domain.Mode
			if modeFlag != "" {
				if mode, err = domain.ParseMode(modeFlag); err != nil {
					return err
				}
			}

			pool, err := a.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			rt := router.New(a.cfg.Mode, a.cfg.Base,
				repo.NewCaseRepo(pool), repo.NewTermRepo(pool),
				router.Options{Logger: a.logger})
			u, err := rt.GenerateURL(cmd.Context(), id, kind, mode)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, u)
			return nil
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", "", "native or virtual (default: GALLERY_MODE)")
	return cmd
}
