// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ollama/opexec/envconfig"
	"github.com/ollama/opexec/logutil"
)

// Version wird beim Build per -ldflags gesetzt
var Version = "0.0.0"

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-28s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "opexec",
		Short:         "Replay tensor operation scopes through a type dispatcher",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				fmt.Fprintf(cmd.OutOrStdout(), "opexec version is %s\n", Version)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	tableCmd := newTableCmd()
	envCmd := newEnvCmd()
	sortCmd := newSortCmd()
	compressCmd := newCompressCmd()
	runCmd := newRunCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["OPEXEC_DEBUG"]}

	for _, cmd := range []*cobra.Command{
		tableCmd,
		sortCmd,
		compressCmd,
		runCmd,
	} {
		switch cmd {
		case sortCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["OPEXEC_DEBUG"], envVars["OPEXEC_NUM_THREADS"]})
		case compressCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["OPEXEC_DEBUG"],
				envVars["OPEXEC_BITMAP_SCHEME"],
				envVars["OPEXEC_BITMAP_THRESHOLD"],
			})
		case runCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["OPEXEC_DEBUG"],
				envVars["OPEXEC_PLANS"],
				envVars["OPEXEC_NUM_THREADS"],
				envVars["OPEXEC_MAX_LOOP_ITERATIONS"],
				envVars["OPEXEC_BITMAP_SCHEME"],
				envVars["OPEXEC_BITMAP_THRESHOLD"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		runCmd,
		sortCmd,
		compressCmd,
		tableCmd,
		envCmd,
	)

	return rootCmd
}
