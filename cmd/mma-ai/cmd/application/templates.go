package application

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Lists the available application templates",
	Long:  `Lists the embedded application templates along with the parameters each one supports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})

		names, err := tp.ListAppTemplates()
		if err != nil {
			return fmt.Errorf("failed to list application templates: %w", err)
		}

		for _, name := range names {
			meta, err := tp.LoadMetadata(name, false)
			if err != nil {
				return fmt.Errorf("failed to read metadata for template '%s': %w", name, err)
			}

			cmd.Printf("Template: %s\n", name)
			cmd.Printf("  Version: %s\n", meta.Version)
			if meta.Description != "" {
				cmd.Printf("  Description: %s\n", meta.Description)
			}

			values, err := tp.LoadValues(name, nil, nil)
			if err != nil {
				return fmt.Errorf("failed to read values for template '%s': %w", name, err)
			}

			params := flattenValues("", values)
			if len(params) > 0 {
				cmd.Println("  Parameters (override with --params or --values):")
				keys := make([]string, 0, len(params))
				for k := range params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					cmd.Printf("    %s=%v\n", k, params[k])
				}
			}
			cmd.Println()
		}

		return nil
	},
}

// flattenValues collapses the nested values map into dotted-path keys,
// the same addressing the --params flag uses.
func flattenValues(prefix string, values map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range values {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flattenValues(key, nested) {
				out[nk] = nv
			}

			continue
		}
		out[key] = v
	}

	return out
}
