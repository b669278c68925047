package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	projectID    string
	projectForce bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project management commands",
	Long: `Commands for inspecting and removing generated projects.

Examples:
  sitectl project list
  sitectl project show --id <project-id>
  sitectl project delete --id <project-id>
  sitectl project clear --force`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, closeStore, err := openProjects(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		projects, err := svc.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		out := cmd.OutOrStdout()
		if output == "json" {
			return printJSON(out, projects)
		}
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}

		fmt.Fprintf(out, "\n%-36s  %-40s  %-16s  %-8s  %s\n", "ID", "PROMPT", "ACTIVE", "VERSIONS", "CREATED")
		fmt.Fprintln(out, strings.Repeat("-", 120))
		for _, p := range projects {
			fmt.Fprintf(out, "%-36s  %-40s  %-16s  %-8d  %s\n",
				p.ID,
				truncate(strings.ReplaceAll(p.OriginalPrompt, "\n", " "), 40),
				activeLabel(p.ActiveVersion),
				len(p.Versions),
				p.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		fmt.Fprintf(out, "\nTotal: %d project(s)\n", len(projects))
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project and its version history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if projectID == "" {
			return fmt.Errorf("--id is required")
		}
		ctx := context.Background()
		svc, closeStore, err := openProjects(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		p, err := svc.GetProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("get project: %w", err)
		}
		out := cmd.OutOrStdout()
		if output == "json" {
			return printJSON(out, p)
		}

		fmt.Fprintf(out, "Project:  %s\nPrompt:   %s\nActive:   %s\nCreated:  %s\n\n",
			p.ID, p.OriginalPrompt, activeLabel(p.ActiveVersion), p.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "%-4s  %-36s  %-10s  %-6s  %-10s  %s\n", "NUM", "VERSION ID", "STATUS", "ACTIVE", "HTML", "REVISION")
		for _, v := range p.Versions {
			rev := "-"
			if v.RevisionPrompt != nil {
				rev = truncate(*v.RevisionPrompt, 40)
			}
			fmt.Fprintf(out, "%-4d  %-36s  %-10s  %-6t  %-10d  %s\n",
				v.VersionNumber, v.ID, v.Status, v.IsActive, len(v.GeneratedHTML), rev)
		}
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a project and all of its versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if projectID == "" {
			return fmt.Errorf("--id is required")
		}
		ctx := context.Background()
		svc, closeStore, err := openProjects(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		ok, err := svc.DeleteProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if !ok {
			return fmt.Errorf("project %s not found", projectID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", projectID)
		return nil
	},
}

var projectCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, closeStore, err := openProjects(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := svc.Count(ctx)
		if err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var projectClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every project (development databases only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !projectForce {
			return fmt.Errorf("refusing to delete every project without --force")
		}
		ctx := context.Background()
		svc, closeStore, err := openProjects(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := svc.Clear(ctx); err != nil {
			return fmt.Errorf("clear projects: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All projects deleted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectShowCmd, projectDeleteCmd, projectCountCmd, projectClearCmd)

	for _, c := range []*cobra.Command{projectShowCmd, projectDeleteCmd} {
		c.Flags().StringVar(&projectID, "id", "", "project ID")
	}
	projectClearCmd.Flags().BoolVar(&projectForce, "force", false, "confirm deleting every project")
}
