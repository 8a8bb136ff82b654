package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/beaufortfrancois/templates/internal/config"
	"github.com/beaufortfrancois/templates/internal/errors"
	"github.com/beaufortfrancois/templates/internal/store"
	"github.com/beaufortfrancois/templates/pkg/handlebar"
)

var renderCmd = &cobra.Command{
	Use:   "render <template> [data-file...]",
	Short: "Render a template against JSON or YAML data files",
	Long: `Render evaluates a template against zero or more data files and writes
the output to stdout.

The template argument is either a name in the template store or a path to a
template file. Each data file becomes one render context; on name collisions
the earlier file wins. Resolution problems go to stderr and, with --strict,
make the command fail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Bool("strict", false, "fail when the render reports resolution problems")
	renderCmd.Flags().StringP("output", "o", "", "write output to a file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	contexts, err := loadDataFiles(args[1:])
	if err != nil {
		return err
	}

	st := store.NewStore(cfg, logger)
	if loadErr := st.Load(ctx); loadErr != nil {
		// A missing store is fine when rendering a standalone file.
		logger.Debug(ctx, "template store unavailable", "error", loadErr.Error())
	}

	result, err := renderTarget(st, cfg, args[0], contexts)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, result.Text)

	for _, problem := range result.Errors {
		fmt.Fprintln(os.Stderr, "warning:", problem)
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(result.Errors) > 0 {
		return &errors.RenderProblems{Template: args[0], Problems: result.Errors}
	}
	return nil
}

// renderTarget renders either a template file or a stored template name.
// Stored templates stay reachable as partials in both cases.
func renderTarget(st *store.Store, cfg *config.Config, target string, contexts []any) (*handlebar.RenderResult, error) {
	if isTemplateFile(target, cfg) {
		source, err := os.ReadFile(target)
		if err != nil {
			return nil, errors.Wrap(errors.OpLoad, target, target, err)
		}
		tmpl, err := handlebar.CompileNamed(filepath.Base(target), string(source))
		if err != nil {
			return nil, errors.Wrap(errors.OpCompile, target, target, err)
		}
		contexts = append(contexts, st.Registry().Context())
		return tmpl.Render(contexts...), nil
	}
	return st.Render(target, contexts...)
}

func isTemplateFile(target string, cfg *config.Config) bool {
	ext := strings.ToLower(filepath.Ext(target))
	for _, want := range cfg.Templates.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// loadDataFiles parses each file into one render context, by extension.
func loadDataFiles(paths []string) ([]any, error) {
	contexts := make([]any, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var value any
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &value)
		case ".json":
			err = json.Unmarshal(data, &value)
		default:
			return nil, fmt.Errorf("unsupported data file %q (want .json, .yaml or .yml)", path)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		contexts = append(contexts, value)
	}
	return contexts, nil
}
