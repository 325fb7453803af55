// Command noumenon is the CLI front end for the bitemporal belief store:
// loading schema files, running the worked demo scenarios as smoke
// demonstrations, and saving/loading a Mind's graph to/from disk.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aigan/noumenon/core/noumenon"
	"github.com/aigan/noumenon/core/scenario"
	"github.com/aigan/noumenon/internal/schemafile"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "noumenon",
		Short: "Bitemporal multi-mind belief store",
	}
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newScenarioCmd())
	root.AddCommand(newSaveCmd())
	root.AddCommand(newLoadCmd())
	root.AddCommand(newRecallCmd())
	return root
}

func newSchemaCmd() *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Schema registration commands",
	}
	var file string
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Register traittypes/archetypes/prototypes from a YAML or JSON schema file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read schema file: %w", err)
			}
			raw, err := schemafile.Parse(data)
			if err != nil {
				return err
			}
			tts, archs, protos, err := schemafile.BuildSpecs(raw)
			if err != nil {
				return err
			}
			w := noumenon.NewWorld()
			if err := w.Register(tts, archs, protos); err != nil {
				return err
			}
			runID := uuid.New().String()
			stats := w.Stats()
			enc, _ := json.MarshalIndent(map[string]interface{}{"run_id": runID, "stats": stats}, "", "  ")
			fmt.Println(string(enc))
			return nil
		},
	}
	loadCmd.Flags().StringVarP(&file, "file", "f", "", "path to schema file (required)")
	_ = loadCmd.MarkFlagRequired("file")
	schemaCmd.AddCommand(loadCmd)
	return schemaCmd
}

func newScenarioCmd() *cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run a named worked scenario and print its outcome",
	}
	runCmd := &cobra.Command{
		Use:       "run [name]",
		Short:     "Run one of the worked scenarios (inheritance, null-composition, recall, certainty, reverse-index)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: scenario.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := scenario.Run(args[0])
			if err != nil {
				return err
			}
			enc, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(enc))
			return nil
		},
	}
	scenarioCmd.AddCommand(runCmd)
	return scenarioCmd
}

func newSaveCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Build the save/load demo world and write its serialized Mind to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, mind, err := scenario.BuildSaveLoadDemo()
			if err != nil {
				return err
			}
			doc, err := noumenon.SaveMind(mind)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println(doc)
				return nil
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}
			fmt.Printf("saved mind #%d (%d subjects) to %s\n", mind.ID(), w.Stats().Subjects, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func newLoadCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a previously saved Mind graph and print its stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read saved file: %w", err)
			}
			w := noumenon.NewWorld()
			mind, err := w.Load(string(data))
			if err != nil {
				return err
			}
			enc, _ := json.MarshalIndent(map[string]interface{}{"mind_id": mind.ID(), "stats": w.Stats()}, "", "  ")
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a saved mind JSON document (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecallCmd() *cobra.Command {
	var file, subjectLabel, traits string
	var vt int64
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Load a saved mind and recall a Subject's traits at a valid time",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read saved file: %w", err)
			}
			w := noumenon.NewWorld()
			mind, err := w.Load(string(data))
			if err != nil {
				return err
			}
			subject, ok := w.SubjectByLabel(subjectLabel)
			if !ok {
				return fmt.Errorf("recall: unknown subject label %q", subjectLabel)
			}
			origin, ok := mind.Origin().(*noumenon.State)
			if !ok {
				return fmt.Errorf("recall: mind #%d has no State origin to ground the recall in", mind.ID())
			}
			var requestTraits []string
			if traits != "" {
				requestTraits = strings.Split(traits, ",")
			}
			notion, err := mind.RecallBySubject(origin, subject, vt, requestTraits)
			if err != nil {
				return err
			}
			out := map[string]json.RawMessage{}
			for path, v := range notion.Traits {
				enc, err := noumenon.EncodeValueJSON(v)
				if err != nil {
					return fmt.Errorf("encode recalled trait %q: %w", path, err)
				}
				out[path] = enc
			}
			enc, _ := json.MarshalIndent(map[string]interface{}{
				"subject": subject.Sysdesig(),
				"vt":      vt,
				"traits":  out,
			}, "", "  ")
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a saved mind JSON document (required)")
	cmd.Flags().StringVarP(&subjectLabel, "subject", "s", "", "label of the Subject to recall (required)")
	cmd.Flags().Int64Var(&vt, "vt", 0, "valid time to recall at")
	cmd.Flags().StringVarP(&traits, "traits", "t", "", "comma-separated trait paths (default: all registered traittypes)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
