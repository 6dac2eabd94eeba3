package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rohits-web03/modvault/internal/logger"
	"github.com/rohits-web03/modvault/internal/wabbajack"
)

// metaSuffix marks the sidecar files Wabbajack writes next to downloads.
const metaSuffix = ".meta"

var (
	missingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))
	satisfiedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#98c379"))
	extraneousStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b"))
	headingStyle    = lipgloss.NewStyle().Bold(true)
)

// validateCmd checks download directories against a modlist
var validateCmd = &cobra.Command{
	Use:   "validate MODLIST DOWNLOAD_DIR...",
	Short: "Check download directories against a modlist",
	Long: `Reads the manifest of MODLIST and compares the archives it requires
with the files found in the given download directories. Missing files are
always listed; --all also lists satisfied and extraneous files.

Exits non-zero when any required file is missing.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return runValidate(cmd.OutOrStdout(), args[0], args[1:], all)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("all", "a", false, "Also list satisfied and extraneous files")
}

// Comparison sorts filenames by whether a modlist needs them and whether
// they are present.
type Comparison struct {
	Missing    []string
	Satisfied  []string
	Extraneous []string
}

func runValidate(w io.Writer, modlistPath string, dirs []string, all bool) error {
	manifest, err := wabbajack.Load(modlistPath)
	if err != nil {
		return err
	}

	if unknown := manifest.FilesFromUnknownDownloaders(); len(unknown) > 0 {
		logger.Log.Warnw("Found files with unknown downloaders, results may be incorrect",
			"count", len(unknown), "files", unknown)
	}

	present, err := downloadedFiles(dirs)
	if err != nil {
		return err
	}

	result := compareFiles(manifest.RequiredFiles(), present)
	printComparison(w, manifest.Name, result, all)

	if len(result.Missing) > 0 {
		return fmt.Errorf("%d required files missing", len(result.Missing))
	}
	return nil
}

// downloadedFiles lists regular files across dirs, ignoring .meta sidecars.
func downloadedFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read download directory: %w", err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || strings.HasSuffix(strings.ToLower(e.Name()), metaSuffix) {
				continue
			}
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func compareFiles(required, present []string) Comparison {
	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}
	need := make(map[string]bool, len(required))

	var c Comparison
	for _, name := range required {
		if need[name] {
			continue
		}
		need[name] = true
		if have[name] {
			c.Satisfied = append(c.Satisfied, name)
		} else {
			c.Missing = append(c.Missing, name)
		}
	}
	for name := range have {
		if !need[name] {
			c.Extraneous = append(c.Extraneous, name)
		}
	}

	slices.Sort(c.Missing)
	slices.Sort(c.Satisfied)
	slices.Sort(c.Extraneous)
	return c
}

func printComparison(w io.Writer, modlist string, c Comparison, all bool) {
	fmt.Fprintf(w, "%s: %d required, %s, %s, %s\n",
		headingStyle.Render(modlist),
		len(c.Missing)+len(c.Satisfied),
		missingStyle.Render(fmt.Sprintf("%d missing", len(c.Missing))),
		satisfiedStyle.Render(fmt.Sprintf("%d satisfied", len(c.Satisfied))),
		extraneousStyle.Render(fmt.Sprintf("%d extraneous", len(c.Extraneous))),
	)

	printSection(w, "Missing", missingStyle, c.Missing)
	if all {
		printSection(w, "Satisfied", satisfiedStyle, c.Satisfied)
		printSection(w, "Extraneous", extraneousStyle, c.Extraneous)
	}
}

func printSection(w io.Writer, title string, style lipgloss.Style, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(w, headingStyle.Render(title+":"))
	for _, name := range names {
		fmt.Fprintln(w, "  "+style.Render(name))
	}
}
