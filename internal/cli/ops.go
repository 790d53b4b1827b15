package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// OperationInfo describes one method of the binding layer.
type OperationInfo struct {
	Method   string   `json:"method"`
	Kind     string   `json:"kind"`
	Receiver string   `json:"receiver"`
	Dialects []string `json:"dialects"`
	Declared bool     `json:"declared,omitempty"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List available operations",
		Long: `List every method of the binding layer with the operation kind it
builds, the receiver it accepts and the dialects that can compile it.

Operations declared with --ops are included and marked as declared.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(rootOpts, cmd)
		},
	}

	return cmd
}

func runOps(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	env, err := loadEnvironment(opts.OpsDir, f)
	if err != nil {
		return err
	}
	declared := make(map[string]bool, len(env.Declared))
	for _, spec := range env.Declared {
		declared[spec.Kind] = true
	}

	var infos []OperationInfo
	for _, name := range env.Methods.Names() {
		for _, m := range env.Methods.Lookup(name) {
			dialects := env.Registry.DialectsFor(m.Kind)
			names := make([]string, len(dialects))
			for i, d := range dialects {
				names[i] = string(d)
			}
			infos = append(infos, OperationInfo{
				Method:   m.Name,
				Kind:     string(m.Kind),
				Receiver: m.Receiver.String(),
				Dialects: names,
				Declared: declared[string(m.Kind)],
			})
		}
	}

	if f.Format == "json" {
		return f.Success(infos)
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		kind := info.Kind
		if info.Declared {
			kind += " *"
		}
		dialects := strings.Join(info.Dialects, ", ")
		if dialects == "" {
			dialects = "-"
		}
		rows[i] = []string{info.Method, kind, info.Receiver, dialects}
	}
	f.Table([]string{"METHOD", "KIND", "RECEIVER", "DIALECTS"}, rows)
	if len(env.Declared) > 0 {
		fmt.Fprintf(f.Writer, "* declared in %s\n", opts.OpsDir)
	}
	return nil
}
