package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/validators"
)

var groupFlags models.CreateGroupRequest

func init() {
	groupCreateCmd.Flags().StringVar(&groupFlags.Title, "title", "", "group title")
	groupCreateCmd.Flags().StringVar(&groupFlags.Slug, "slug", "", "unique slug used in /group/<slug>/")
	groupCreateCmd.Flags().StringVar(&groupFlags.Description, "description", "", "group description")
	_ = groupCreateCmd.MarkFlagRequired("title")
	_ = groupCreateCmd.MarkFlagRequired("slug")
	_ = groupCreateCmd.MarkFlagRequired("description")

	groupCmd.AddCommand(groupCreateCmd, groupListCmd)
	RootCmd.AddCommand(groupCmd)
}

var groupCmd = &cobra.Command{
	Use:     "group",
	Aliases: []string{"groups"},
	Short:   "Manage post groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *config.DB) error {
			repo := repositories.NewGormGroupRepository(db.SQL)
			group, err := createGroup(cmd.Context(), repo, groupFlags)
			if err != nil {
				return err
			}
			success("Created group %q (id %d)", group.Slug, group.ID)
			return nil
		})
	},
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List groups",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *config.DB) error {
			groups, err := repositories.NewGormGroupRepository(db.SQL).ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			renderGroups(cmd.OutOrStdout(), groups)
			return nil
		})
	},
}

func createGroup(ctx context.Context, repo repositories.GroupRepository, req models.CreateGroupRequest) (*models.Group, error) {
	if err := validators.NewValidator().Validate(req); err != nil {
		return nil, fmt.Errorf("invalid group: %v", validators.FieldErrors(err))
	}
	group := &models.Group{Title: req.Title, Slug: req.Slug, Description: req.Description}
	if err := repo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func renderGroups(w io.Writer, groups []models.Group) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Slug", "Title", "Description"})
	for _, g := range groups {
		table.Append([]string{strconv.FormatUint(uint64(g.ID), 10), g.Slug, g.Title, g.Description})
	}
	table.Render()
}
