package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/ux"
	"github.com/felixgeelhaar/taskboard/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runVersion,
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "show detailed version information")

	rootCmd.AddCommand(versionCmd)
}

// versionView is the short form unless verbose is set
type versionView struct {
	version.Info `yaml:",inline"`
	verbose      bool
}

func (v versionView) RenderText(w io.Writer, s ux.Styles) error {
	if v.verbose {
		_, err := fmt.Fprintln(w, v.Info.String())
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", s.Title.Render("taskboard"), v.Short())
	return err
}

func runVersion(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	return renderStandalone(cmd, cc, versionView{Info: version.GetInfo(), verbose: verbose})
}
