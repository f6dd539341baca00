package hygiene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// RemoveStatus is the outcome of removing one file.
type RemoveStatus string

const (
	Removed     RemoveStatus = "removed"
	WouldRemove RemoveStatus = "would_remove"
	NotFound    RemoveStatus = "not_found"
	RemoveFail  RemoveStatus = "failed"
)

type RemoveResult struct {
	Path   string
	Status RemoveStatus
	Err    error
}

// ScanResult describes one scanned file. Unreadable files are reported with
// Err set and are not risky.
type ScanResult struct {
	Path    string
	Matches []string
	Err     error
}

// Risky reports whether any indicator was found.
func (r ScanResult) Risky() bool { return len(r.Matches) > 0 }

type ExpectedResult struct {
	Path    string
	Present bool
}

// Report is the combined outcome of Run.
type Report struct {
	Removed  []RemoveResult
	Scanned  []ScanResult
	Expected []ExpectedResult
}

// Risky returns the scanned files that contain an indicator.
func (r *Report) Risky() []ScanResult {
	var out []ScanResult
	for _, s := range r.Scanned {
		if s.Risky() {
			out = append(out, s)
		}
	}
	return out
}

// Options controls Run.
type Options struct {
	Root       string
	ConfigPath string // excluded from scanning; defaults to ConfigFile under Root
	DryRun     bool
}

// Run removes, scans and checks in that order.
func Run(ctx context.Context, cfg Config, opts Options) (*Report, error) {
	removed := Remove(opts.Root, cfg.Remove, opts.DryRun)

	skip := opts.ConfigPath
	if skip == "" {
		skip = filepath.Join(opts.Root, ConfigFile)
	}
	scanned, err := Scan(ctx, opts.Root, cfg.Patterns, cfg.Indicators, skip)
	if err != nil {
		return nil, err
	}

	return &Report{
		Removed:  removed,
		Scanned:  scanned,
		Expected: Expected(opts.Root, cfg.Expected),
	}, nil
}

// Remove deletes each named file under root. With dryRun set nothing is
// deleted and existing files are reported as WouldRemove.
func Remove(root string, names []string, dryRun bool) []RemoveResult {
	results := make([]RemoveResult, 0, len(names))
	for _, name := range names {
		path := filepath.Join(root, name)
		res := RemoveResult{Path: name}

		if _, err := os.Lstat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				res.Status = NotFound
			} else {
				res.Status, res.Err = RemoveFail, err
			}
			results = append(results, res)
			continue
		}

		if dryRun {
			res.Status = WouldRemove
		} else if err := os.Remove(path); err != nil {
			res.Status, res.Err = RemoveFail, err
		} else {
			res.Status = Removed
		}
		results = append(results, res)
	}
	return results
}

// Scan reads every regular file under root matching one of patterns and looks
// for indicators, ignoring case. skip names a file that is never scanned.
// Results are sorted by path.
func Scan(ctx context.Context, root string, patterns, indicators []string, skip string) ([]ScanResult, error) {
	paths, err := matchFiles(root, patterns, skip)
	if err != nil {
		return nil, err
	}

	lowered := make([]string, 0, len(indicators))
	for _, ind := range indicators {
		if ind = strings.TrimSpace(ind); ind != "" {
			lowered = append(lowered, strings.ToLower(ind))
		}
	}

	results := make([]ScanResult, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = scanFile(root, path, lowered)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func matchFiles(root string, patterns []string, skip string) ([]string, error) {
	skipAbs, _ := filepath.Abs(skip)

	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if abs, _ := filepath.Abs(m); skip != "" && abs == skipAbs {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func scanFile(root, path string, indicators []string) ScanResult {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	res := ScanResult{Path: filepath.ToSlash(rel)}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	content := strings.ToLower(string(data))
	for _, ind := range indicators {
		if strings.Contains(content, ind) {
			res.Matches = append(res.Matches, ind)
		}
	}
	return res
}

// Expected reports which of names exist under root.
func Expected(root string, names []string) []ExpectedResult {
	results := make([]ExpectedResult, 0, len(names))
	for _, name := range names {
		_, err := os.Stat(filepath.Join(root, name))
		results = append(results, ExpectedResult{Path: name, Present: err == nil})
	}
	return results
}

// Print writes a human readable summary of r to w.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "Removing sensitive files:")
	for _, res := range r.Removed {
		switch res.Status {
		case Removed:
			fmt.Fprintf(w, "  removed      %s\n", res.Path)
		case WouldRemove:
			fmt.Fprintf(w, "  would remove %s\n", res.Path)
		case NotFound:
			fmt.Fprintf(w, "  not found    %s\n", res.Path)
		default:
			fmt.Fprintf(w, "  FAILED       %s: %v\n", res.Path, res.Err)
		}
	}

	fmt.Fprintln(w, "\nScanning for secrets:")
	for _, res := range r.Scanned {
		switch {
		case res.Risky():
			fmt.Fprintf(w, "  RISKY        %s (%s)\n", res.Path, strings.Join(res.Matches, ", "))
		case res.Err != nil:
			fmt.Fprintf(w, "  unreadable   %s\n", res.Path)
		default:
			fmt.Fprintf(w, "  clean        %s\n", res.Path)
		}
	}

	fmt.Fprintln(w, "\nFiles to commit:")
	for _, res := range r.Expected {
		if res.Present {
			fmt.Fprintf(w, "  present      %s\n", res.Path)
		} else {
			fmt.Fprintf(w, "  missing      %s\n", res.Path)
		}
	}

	risky := len(r.Risky())
	fmt.Fprintf(w, "\nSummary: %d clean, %d risky\n", len(r.Scanned)-risky, risky)
	if risky > 0 {
		fmt.Fprintln(w, "Review the risky files before committing.")
	} else {
		fmt.Fprintln(w, "Ready to commit.")
	}
}
