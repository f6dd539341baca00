// Command precommit removes local credential files, scans sources for
// likely secrets and lists the files expected in the commit. It exits with
// status 1 when risky files remain.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/asafiz/azurebot/internal/hygiene"
)

func main() {
	dir := flag.String("dir", ".", "project root to clean and scan")
	configPath := flag.String("config", "", "config file (default <dir>/"+hygiene.ConfigFile+")")
	dryRun := flag.Bool("dry-run", false, "report files that would be removed without deleting them")
	flag.Parse()

	cfg, err := hygiene.LoadConfig(*dir, *configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	report, err := hygiene.Run(context.Background(), cfg, hygiene.Options{
		Root:       *dir,
		ConfigPath: *configPath,
		DryRun:     *dryRun,
	})
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	report.Print(os.Stdout)
	if len(report.Risky()) > 0 {
		os.Exit(1)
	}
}
