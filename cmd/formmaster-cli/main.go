package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/client"
	"github.com/formmaster/go-formmaster/pkg/config"
	"github.com/formmaster/go-formmaster/pkg/openapi"
	"github.com/formmaster/go-formmaster/pkg/render"
	"github.com/formmaster/go-formmaster/pkg/schema"
	"github.com/formmaster/go-formmaster/pkg/store"
	"github.com/formmaster/go-formmaster/pkg/validate"
)

var (
	configPath string
	backendURL string

	recordPath string
	templateID string
	storePath  string
	outputPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "formmaster",
	Short: "Schema-driven form engine tooling",
	Long:  `Inspect backend table schemas, classify columns, validate records, and preview form templates.`,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List compatible tables",
	Long:  `Fetch the compatible tables from the backend and list them with their column counts.`,
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [table]",
	Short: "Show presentation kinds for a table's columns",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

var validateCmd = &cobra.Command{
	Use:   "validate [table]",
	Short: "Validate a record against a table's constraints",
	Long:  `Validate a JSON record ({"column": "value", ...}) against the table's declared constraints.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render an HTML preview of a stored form template",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

var importCmd = &cobra.Command{
	Use:   "import-openapi <document>",
	Short: "Import table schemas from an OpenAPI document",
	Long:  `Convert the component schemas of an OpenAPI 3 document into table schemas and print them as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImportOpenAPI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")

	validateCmd.Flags().StringVar(&recordPath, "record", "", "Path to a JSON record file (required)")
	_ = validateCmd.MarkFlagRequired("record")

	previewCmd.Flags().StringVar(&templateID, "template", "", "Template id to preview (required)")
	previewCmd.Flags().StringVar(&storePath, "store", "formmaster.db", "Template store database path")
	previewCmd.Flags().StringVar(&outputPath, "out", "", "Write HTML to this file instead of stdout")
	_ = previewCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(importCmd)
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		if backendURL != "" {
			cfg.Backend = backendURL
		}
		return cfg, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if backendURL != "" {
		cfg.Backend = backendURL
	}
	return cfg, nil
}

func newClient(cfg config.Config) (*client.Client, error) {
	return client.New(cfg.Backend, client.WithTimeout(cfg.RequestTimeout.Std()))
}

func fetchSchemas(ctx context.Context, cfg config.Config) (*schema.Set, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return c.FetchAll(ctx)
}

// pickTable resolves the table argument, falling back to an interactive
// selection when it was omitted.
func pickTable(args []string, set *schema.Set) (string, error) {
	if len(args) > 0 {
		name := args[0]
		if _, ok := set.Table(name); !ok {
			return "", fmt.Errorf("unknown table %q (have: %s)", name, strings.Join(set.TableNames(), ", "))
		}
		return name, nil
	}

	names := set.TableNames()
	if len(names) == 0 {
		return "", fmt.Errorf("backend reported no compatible tables")
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select a table:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", fmt.Errorf("table selection: %w", err)
	}
	return selected, nil
}

func runTables(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	set, err := fetchSchemas(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	for _, name := range set.TableNames() {
		table, _ := set.Table(name)
		label := table.DisplayName
		if label == "" {
			label = schema.Label(name)
		}
		fmt.Printf("%-30s %-30s %d columns\n", name, label, len(table.Columns))
	}
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	set, err := fetchSchemas(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	name, err := pickTable(args, set)
	if err != nil {
		return err
	}

	table, _ := set.Table(name)
	classifier := classify.New(classify.WithDocumentsTable(cfg.DocumentsTable))
	for _, col := range table.Columns {
		kind := classifier.ClassifyColumn(name, col)
		extra := ""
		if col.HasDropdown {
			extra = fmt.Sprintf(" (dropdown: %s)", strings.Join(col.DropdownOptions, ", "))
		}
		if kind == classify.KindFile {
			extra = fmt.Sprintf(" (accept: %s)", classify.AcceptTypes(col.Name))
		}
		fmt.Printf("%-30s %-10s%s\n", col.Name, kind, extra)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	set, err := fetchSchemas(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	name, err := pickTable(args, set)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(recordPath)
	if err != nil {
		return fmt.Errorf("read record %s: %w", recordPath, err)
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse record %s: %w", recordPath, err)
	}

	classifier := classify.New(classify.WithDocumentsTable(cfg.DocumentsTable))
	errs := validate.Record(set, name, values, classifier)
	if len(errs) == 0 {
		fmt.Println("Record is valid.")
		return nil
	}

	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, msg := range errs[key] {
			fmt.Printf("%-40s %s\n", key, msg)
		}
	}
	return fmt.Errorf("%d field(s) failed validation", len(errs))
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	tpl, err := s.Get(cmd.Context(), templateID)
	if err != nil {
		return err
	}

	set, err := fetchSchemas(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	renderer, err := render.New(render.WithClassifier(classify.New(classify.WithDocumentsTable(cfg.DocumentsTable))))
	if err != nil {
		return err
	}
	html, err := renderer.Preview(tpl, set)
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Println(html)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	fmt.Printf("Preview written to %s\n", outputPath)
	return nil
}

func runImportOpenAPI(cmd *cobra.Command, args []string) error {
	tables, err := openapi.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
