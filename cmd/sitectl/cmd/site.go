package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sitePrompt      string
	siteProject     string
	siteVersion     string
	siteBaseVersion string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new site from a prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sitePrompt == "" {
			return fmt.Errorf("--prompt is required")
		}
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Generator.Generate(ctx, sitePrompt)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated project %s, version %d (%s)\n",
			res.ProjectID, res.Version.VersionNumber, res.Outcome)
		return nil
	},
}

var reviseCmd = &cobra.Command{
	Use:   "revise",
	Short: "Revise a version of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if siteProject == "" || siteBaseVersion == "" || sitePrompt == "" {
			return fmt.Errorf("--project, --base and --prompt are required")
		}
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Generator.Revise(ctx, siteProject, sitePrompt, siteBaseVersion)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created version %d (%s)\n", res.Version.VersionNumber, res.Version.ID)
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Make a version the active one",
	RunE: func(cmd *cobra.Command, args []string) error {
		if siteProject == "" || siteVersion == "" {
			return fmt.Errorf("--project and --version are required")
		}
		ctx := context.Background()
		svc, closeStore, err := openProjects(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		v, err := svc.SwitchVersion(ctx, siteProject, siteVersion)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to version %d\n", v.VersionNumber)
		return nil
	},
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Publish a version (the active one by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if siteProject == "" {
			return fmt.Errorf("--project is required")
		}
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		d, err := app.Deployer.Deploy(ctx, siteProject, siteVersion)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), d)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Website v%d deployed to %s\n", d.VersionNumber, d.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd, reviseCmd, switchCmd, deployCmd)

	generateCmd.Flags().StringVar(&sitePrompt, "prompt", "", "description of the site")

	reviseCmd.Flags().StringVar(&siteProject, "project", "", "project ID")
	reviseCmd.Flags().StringVar(&siteBaseVersion, "base", "", "version to revise")
	reviseCmd.Flags().StringVar(&sitePrompt, "prompt", "", "requested changes")

	switchCmd.Flags().StringVar(&siteProject, "project", "", "project ID")
	switchCmd.Flags().StringVar(&siteVersion, "version", "", "version ID")

	deployCmd.Flags().StringVar(&siteProject, "project", "", "project ID")
	deployCmd.Flags().StringVar(&siteVersion, "version", "", "version ID, defaults to the active version")
}
