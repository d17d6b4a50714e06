package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/validators"
)

func init() {
	postCmd.AddCommand(postDeleteCmd)
	RootCmd.AddCommand(postCmd)
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage posts",
}

var postDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a post with its comments and image",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid post id %q", args[0])
		}
		return withDB(func(db *config.DB) error {
			storage, err := router.NewStorage(cfg, db)
			if err != nil {
				return err
			}
			posts := services.NewPostService(
				repositories.NewGormPostRepository(db.SQL),
				repositories.NewGormGroupRepository(db.SQL),
				repositories.NewGormCommentRepository(db.SQL),
				storage,
				validators.NewValidator(),
			)
			if err := posts.Delete(cmd.Context(), uint(id)); err != nil {
				return err
			}
			success("Deleted post %d", id)
			return nil
		})
	},
}
