package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"yatube/internal/service"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGroupsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage post groups",
	}

	var in service.GroupInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.groups()
			if err != nil {
				return err
			}
			g, err := svc.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Group %q created with slug %s", g.Title, g.Slug)
			return nil
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "group title")
	add.Flags().StringVar(&in.Slug, "slug", "", "URL slug")
	add.Flags().StringVar(&in.Description, "description", "", "group description")
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("slug")

	imp := &cobra.Command{
		Use:   "import <file.yml>",
		Short: "Create or update groups from a YAML list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, err := loadGroupsFile(args[0])
			if err != nil {
				return err
			}
			svc, err := e.groups()
			if err != nil {
				return err
			}
			n, err := svc.Import(cmd.Context(), ins)
			if err != nil {
				return fmt.Errorf("import stopped after %d groups: %w", n, err)
			}
			success(cmd.OutOrStdout(), "%d groups imported", n)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.groups()
			if err != nil {
				return err
			}
			groups, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				warnColor.Fprintln(cmd.OutOrStdout(), "No groups yet")
				return nil
			}
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []string{strconv.FormatUint(uint64(g.ID), 10), g.Slug, g.Title})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Slug", "Title"}, rows)
			return nil
		},
	}

	cmd.AddCommand(add, imp, list)
	return cmd
}

// loadGroupsFile reads a YAML sequence of {title, slug, description}.
func loadGroupsFile(path string) ([]service.GroupInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ins []service.GroupInput
	if err := yaml.Unmarshal(data, &ins); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(ins) == 0 {
		return nil, fmt.Errorf("%s contains no groups", path)
	}
	return ins, nil
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
