// cmd/tools/jurisdiction-lint/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/reporting"
	"evidly-workers/pkg/registry"
)

// monotonicStep is the sampling interval for grade-scale checks.
const monotonicStep = 0.5

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	bandsCmd := flag.NewFlagSet("bands", flag.ExitOnError)
	lookaheadCmd := flag.NewFlagSet("set-lookahead", flag.ExitOnError)

	validatePath := validateCmd.String("path", "configs/jurisdictions.json", "Path to jurisdiction registry file")

	bandsPath := bandsCmd.String("path", "", "Path to jurisdiction registry file (empty: built-ins only)")
	bandsKey := bandsCmd.String("key", "", "Only print this jurisdiction")

	lookaheadPath := lookaheadCmd.String("path", "configs/jurisdictions.json", "Path to jurisdiction registry file")
	lookaheadKey := lookaheadCmd.String("key", "", "Jurisdiction key")
	lookaheadDoc := lookaheadCmd.String("doc", "", "Document type (empty: jurisdiction-wide lookahead)")
	lookaheadDays := lookaheadCmd.Int("days", -1, "Lookahead in days")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := lintFile(os.Stdout, *validatePath); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "bands":
		bandsCmd.Parse(os.Args[2:])
		reg, err := reporting.LoadRegistry(*bandsPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		if err := printBands(os.Stdout, reg, *bandsKey); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

	case "set-lookahead":
		lookaheadCmd.Parse(os.Args[2:])
		if *lookaheadKey == "" || *lookaheadDays < 0 {
			fmt.Println("Error: key and a non-negative days value are required for set-lookahead.")
			lookaheadCmd.Usage()
			os.Exit(1)
		}
		if err := setLookahead(*lookaheadPath, *lookaheadKey, *lookaheadDoc, *lookaheadDays); err != nil {
			fmt.Printf("Error updating registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated %s lookahead to %d days\n", *lookaheadKey, *lookaheadDays)

	case "help":
		fallthrough
	default:
		help()
	}
}

// lintFile checks the file against the registry schema, its structural rules,
// and then compiles it over the built-ins so every grade scale is checked.
func lintFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}

	validator, err := validation.NewValidator()
	if err != nil {
		return err
	}
	result, err := validator.ValidateJSON(validation.SchemaJurisdictionRegistry, string(data))
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("schema: %s", result.Summary())
	}

	defs, err := registry.Parse(data)
	if err != nil {
		return err
	}
	reg, err := reporting.DefaultRegistry().Merge(defs)
	if err != nil {
		return err
	}
	if err := checkGraders(reg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Registry validation passed. %d definitions, %d jurisdictions after merge.\n",
		len(defs.Jurisdictions), len(reg.Keys()))
	return nil
}

func checkGraders(reg *reporting.Registry) error {
	for _, key := range reg.Keys() {
		t, err := reg.Lookup(key)
		if err != nil {
			return err
		}
		if err := reporting.CheckMonotonic(t.Grader, monotonicStep); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func printBands(w io.Writer, reg *reporting.Registry, only string) error {
	keys := reg.Keys()
	if only != "" {
		keys = []string{only}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JURISDICTION\tMIN SCORE\tLABEL\tCOLOR")
	for _, key := range keys {
		t, err := reg.Lookup(key)
		if err != nil {
			return err
		}
		bg, ok := t.Grader.(*reporting.BandGrader)
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t(custom grader)\t-\n", key)
			continue
		}
		for _, b := range bg.Bands() {
			fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\n", key, b.MinScore, b.Label, b.Color)
		}
	}
	return tw.Flush()
}

func setLookahead(path, key, docType string, days int) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	def, ok := reg.Find(key)
	if !ok {
		return fmt.Errorf("jurisdiction %s not found in %s", key, path)
	}

	if docType == "" {
		def.LookaheadDays = &days
	} else {
		found := false
		for i := range def.RequiredDocuments {
			if def.RequiredDocuments[i].Type == docType {
				def.RequiredDocuments[i].LookaheadDays = &days
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("jurisdiction %s has no required document %s", key, docType)
		}
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, path)
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.JurisdictionRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: jurisdiction-lint <command> [flags]

Commands:
  validate       Check a registry file and every merged grade scale
  bands          Print the grade bands per jurisdiction
  set-lookahead  Set a jurisdiction or document expiry lookahead
  help           Show this help message

Examples:
  jurisdiction-lint validate -path configs/jurisdictions.json
  jurisdiction-lint bands -path configs/jurisdictions.json -key los-angeles
  jurisdiction-lint set-lookahead -key orange-county -doc hood-cleaning -days 45`)
}
