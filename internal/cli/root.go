package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
	"github.com/yungbote/langbridge-backend/internal/http/handlers"
)

// App holds what the commands need. Serve blocks until ctx is cancelled.
type App struct {
	Curator handlers.Curator
	Pathway handlers.PathwayFunc
	Serve   func(ctx context.Context) error
}

// NewRootCmd creates the top-level "langbridge" command. With no subcommand it serves HTTP.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "langbridge",
		Short:         "Learning-resource curation service for developers switching languages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(app),
		newCurateCmd(app),
		newSearchCmd(app),
		newDiscoverCmd(app),
		newPathwayCmd(app),
	)

	return root
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(cmd.Context())
		},
	}
}

// languageFlags are shared by every command that takes a language pair.
type languageFlags struct {
	from  string
	to    string
	level string
}

func (f *languageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "Language the learner already knows")
	cmd.Flags().StringVar(&f.to, "to", "", "Language being learned")
	cmd.Flags().StringVar(&f.level, "level", string(learning.Beginner), "Skill level: beginner, intermediate or advanced")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
