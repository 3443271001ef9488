package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
)

func newCurateCmd(app *App) *cobra.Command {
	var langs languageFlags
	var module, description string
	var goals []string

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Curate resources for one pathway module",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.Curator.Curate(cmd.Context(), learning.CurationRequest{
				CurrentLanguage:   langs.from,
				TargetLanguage:    langs.to,
				SkillLevel:        langs.level,
				ModuleTitle:       module,
				ModuleDescription: description,
				UserGoals:         goals,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"success": true, "resources": out})
		},
	}

	langs.register(cmd)
	cmd.Flags().StringVar(&module, "module", "", "Module title, e.g. \"Pointers\"")
	cmd.Flags().StringVar(&description, "description", "", "Module description")
	cmd.Flags().StringArrayVar(&goals, "goal", nil, "Learner goal (repeatable)")

	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	var langs languageFlags
	var queries []string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search resources for one or more queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.Curator.Search(cmd.Context(), learning.SearchRequest{
				SearchQueries:   append(queries, args...),
				CurrentLanguage: langs.from,
				TargetLanguage:  langs.to,
				SkillLevel:      langs.level,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"success": true, "resources": out})
		},
	}

	langs.register(cmd)
	cmd.Flags().StringArrayVar(&queries, "query", nil, "Search query (repeatable; positional args are queries too)")

	return cmd
}

func newDiscoverCmd(app *App) *cobra.Command {
	var langs languageFlags

	cmd := &cobra.Command{
		Use:   "discover <url>",
		Short: "Describe a page and suggest companion resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.Curator.Discover(cmd.Context(), learning.DiscoveryRequest{
				URL:             args[0],
				CurrentLanguage: langs.from,
				TargetLanguage:  langs.to,
				SkillLevel:      langs.level,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"success":   true,
				"content":   out.Content,
				"resources": out.Resources,
				"metadata":  out.Metadata,
			})
		},
	}

	langs.register(cmd)
	return cmd
}

func newPathwayCmd(app *App) *cobra.Command {
	var langs languageFlags

	cmd := &cobra.Command{
		Use:   "pathway",
		Short: "Print the module map for a language pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := app.Pathway(learning.CurationRequest{
				CurrentLanguage: langs.from,
				TargetLanguage:  langs.to,
				SkillLevel:      langs.level,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"success": true, "modules": mods})
		},
	}

	langs.register(cmd)
	return cmd
}
