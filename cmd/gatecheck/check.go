package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/symptomgate/internal/config"
	"github.com/Skufu/symptomgate/internal/gate"
	"github.com/Skufu/symptomgate/internal/pii"
	"github.com/Skufu/symptomgate/internal/triage"
	"github.com/Skufu/symptomgate/internal/vocabulary"
)

type checkOptions struct {
	output     string
	sanitize   bool
	configPath string
	locale     string
}

// checkReport is the printable result of one check.
type checkReport struct {
	gate.Report `yaml:",inline"`
	Passed      bool               `json:"passed" yaml:"passed"`
	Message     string             `json:"message,omitempty" yaml:"message,omitempty"`
	Sanitized   string             `json:"sanitized,omitempty" yaml:"sanitized,omitempty"`
	Redactions  map[pii.Family]int `json:"redactions,omitempty" yaml:"redactions,omitempty"`
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [TEXT]",
		Short: "Gate a symptom description",
		Long: `Run the gates on TEXT, or on standard input when TEXT is omitted.

Examples:
  # Check a description
  gatecheck check "I have had a mild headache for three days"

  # Show the PII-tokenized text as JSON
  echo "fever since monday, call 555-123-4567" | gatecheck check --sanitize -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&opts.sanitize, "sanitize", false, "Also print the text with personal data replaced by vault tokens")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file with gate thresholds")
	cmd.Flags().StringVar(&opts.locale, "locale", "en", "Locale for guidance messages")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	switch opts.output {
	case "human", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	vocab, err := vocabulary.Default()
	if err != nil {
		return err
	}

	r := checkReport{Report: gate.New(vocab, cfg.Thresholds()).Evaluate(text)}
	r.Passed = r.Verdict.OK()
	r.Message = triage.Message(r.Verdict, opts.locale)
	if opts.sanitize {
		res := pii.NewVault().Sanitize(strings.TrimSpace(text))
		r.Sanitized = res.Clean
		if res.HasPII {
			r.Redactions = res.Redactions
		}
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		err = enc.Encode(r)
		if err == nil {
			err = enc.Close()
		}
	default:
		printHuman(out, r, opts.sanitize)
	}
	if err != nil {
		return err
	}

	if !r.Passed {
		return errRejected
	}
	return nil
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no text given")
	}
	return string(data), nil
}

func printHuman(w io.Writer, r checkReport, sanitize bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	if r.Passed {
		green.Fprintf(w, "✓ %s\n", r.Verdict)
	} else {
		red.Fprintf(w, "✗ %s\n", r.Verdict)
		fmt.Fprintf(w, "  %s\n", r.Message)
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Measurements")
	fmt.Fprintf(w, "  characters:     %d\n", r.Chars)
	fmt.Fprintf(w, "  tokens:         %d\n", r.Tokens)
	fmt.Fprintf(w, "  medical tokens: %d\n", r.MedicalCount)
	fmt.Fprintf(w, "  density:        %.3f\n", r.Density)
	fmt.Fprintf(w, "  invalid ratio:  %.3f\n", r.InvalidRatio)
	fmt.Fprintf(w, "  meta input:     %t\n", r.Meta)

	fmt.Fprintln(w)
	bold.Fprintln(w, "Coverage")
	for _, c := range []struct {
		name string
		set  bool
	}{
		{"symptom", r.Coverage.Symptom},
		{"body part", r.Coverage.BodyPart},
		{"duration", r.Coverage.Duration},
		{"severity", r.Coverage.Severity},
	} {
		mark := red.Sprint("✗")
		if c.set {
			mark = green.Sprint("✓")
		}
		fmt.Fprintf(w, "  %s %s\n", mark, c.name)
	}

	if !sanitize {
		return
	}
	fmt.Fprintln(w)
	bold.Fprintln(w, "Sanitized")
	fmt.Fprintf(w, "  %s\n", r.Sanitized)
	families := make([]string, 0, len(r.Redactions))
	for f := range r.Redactions {
		families = append(families, string(f))
	}
	sort.Strings(families)
	for _, f := range families {
		fmt.Fprintf(w, "  %s: %d\n", f, r.Redactions[pii.Family(f)])
	}
}
