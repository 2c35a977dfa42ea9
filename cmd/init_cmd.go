package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/wizard"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long: `Pick and test a source connection, then answer a few prompts to write a
modelts configuration file at ~/.modelts/modelts.yaml (or --config).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := wizard.RunSource(nil)
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)

		fmt.Println("modelts Configuration Setup")
		fmt.Println("===========================")
		fmt.Println()
		fmt.Printf("  Source:  %s connection OK\n\n", source.Type)

		if source.Type == "postgresql" || source.Type == "oracle" {
			source.Schema = prompt(reader, "Schema (leave empty for default)", defaultSchema(source.Type))
		}
		manifest := prompt(reader, "Model manifest", "models.yaml")
		typeMapping := prompt(reader, "Type mapping file (leave empty for defaults)", "")
		output := prompt(reader, "Declaration file", config.DefaultOutputPath)
		fmt.Println()

		cfg := &config.Config{
			Version:     config.CurrentVersion,
			Source:      *source,
			Manifest:    manifest,
			TypeMapping: typeMapping,
			Output: config.OutputConfig{
				Path:    output,
				Workers: config.DefaultWorkers,
			},
			Logging: config.LogConfig{Level: "info"},
		}

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}

		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Config written to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  modelts typemap    Review storage type mappings")
		fmt.Println("  modelts generate   Write the declaration file")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func defaultSchema(dbType string) string {
	if dbType == "postgresql" {
		return "public"
	}
	return ""
}
