package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark3labs/gemforward/internal/forwarder"
)

type templateEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Variables   []string `json:"variables"`
}

type templatesResult struct {
	Success   bool            `json:"success"`
	Templates []templateEntry `json:"templates"`
}

func newTemplatesCommand(v *viper.Viper, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available prompt templates",
		Long: `List the prompt templates that --template can select.

Built-in templates are always available; templates defined under the
'templates' key of the config file, or loaded with --template-file, are
listed alongside them and replace built-ins with the same name.

Examples:
  gemforward templates
  gemforward templates --template-file review.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, res := setup(cmd, v, opts)
			if res != nil {
				return rt.out.Write(res)
			}

			catalog, _, err := rt.cfg.Catalog()
			if err != nil {
				return rt.out.Write(forwarder.Failure(fmt.Errorf("%w: %w", forwarder.ErrConfiguration, err)))
			}

			list := templatesResult{Success: true}
			for _, t := range catalog.Templates() {
				vars := t.Variables
				if vars == nil {
					vars = []string{}
				}
				list.Templates = append(list.Templates, templateEntry{
					Name:        t.Name,
					Description: t.Description,
					Variables:   vars,
				})
			}
			return rt.out.Write(list)
		},
	}
}
