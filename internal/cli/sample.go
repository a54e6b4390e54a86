package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/pkg/timeline"
)

// sampleCommand prints or writes the built-in example timeline.
func (c *CLI) sampleCommand() *cobra.Command {
	var (
		format   string
		output   string
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write an example timeline document",
		Example: `  stacklane sample > trials.json
  stacklane sample -f toml -o trials.toml
  stacklane sample --extended | stacklane render - -f svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := timeline.Sample()
			if extended {
				doc = timeline.SampleExtended()
			}
			if output != "" && !cmd.Flags().Changed("format") {
				if f, err := timeline.FormatFromPath(output); err == nil {
					format = f
				}
			}
			data, err := timeline.Marshal(doc, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			ui := c.ui()
			ui.success("Wrote sample timeline")
			ui.file(output)
			ui.newline()
			ui.nextStep("Render", appName+" render "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", timeline.FormatJSON, "document format: json, yaml, toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&extended, "extended", false, "use the larger eight-interval sample")

	return cmd
}
