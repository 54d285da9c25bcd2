package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/favicond/internal/batch"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/store"
)

// DefaultOutDir is where fetch saves favicons when neither --out nor --zip
// is given.
const DefaultOutDir = "favicons"

// ErrNoSites is returned by fetch when neither arguments nor --list name a
// site.
var ErrNoSites = errors.New("no sites given")

// NewFetchCmd creates the fetch command.
func NewFetchCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [site...]",
		Short: "Resolve favicons for a list of sites",
		Long: `Fetch resolves the favicon of every site and saves the results.

Examples:
  # Save into ./favicons/
  favicond fetch example.com golang.org

  # Read sites from a file, one per line, and write a zip
  favicond fetch --list sites.txt --zip favicons.zip

  # Print per-site outcomes as JSON without saving
  favicond fetch --json example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, o)
		},
	}

	cmd.Flags().StringP("list", "l", "", "File with one site per line (- for stdin)")
	cmd.Flags().StringP("out", "o", "", "Directory to save favicons into (default ./"+DefaultOutDir+")")
	cmd.Flags().StringP("zip", "z", "", "Write found favicons to this zip file")
	cmd.Flags().BoolP("json", "j", false, "Print outcomes as JSON")
	cmd.Flags().IntP("concurrency", "n", -1, "Maximum concurrent sites (0 = unbounded, default from config)")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string, o *options) error {
	sites, err := collectSites(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("concurrency"); n >= 0 {
		cfg.Batch.MaxConcurrency = n
	}

	outDir, _ := cmd.Flags().GetString("out")
	zipPath, _ := cmd.Flags().GetString("zip")
	asJSON, _ := cmd.Flags().GetBool("json")
	if outDir == "" && zipPath == "" && !asJSON {
		outDir = DefaultOutDir
	}
	if outDir != "" {
		cfg.Store = store.Config{Backend: store.BackendDir, Dir: outDir}
	} else {
		cfg.Store.Backend = store.BackendNone
	}
	// One-shot runs gain nothing from the cache.
	cfg.Cache.Enabled = false

	logger := newLogger(cfg, "fetch")
	a, err := newApplication(cfg, logger, o)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing application", logging.Field{Key: "error", Value: err.Error()})
		}
	}()

	res := a.Batch.ResolveAll(cmd.Context(), sites)

	if zipPath != "" {
		if err := writeZipFile(zipPath, res); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Outcomes)
	}
	printSummary(out, res)
	return nil
}

func collectSites(cmd *cobra.Command, args []string) ([]string, error) {
	sites := append([]string(nil), args...)

	if list, _ := cmd.Flags().GetString("list"); list != "" {
		var r io.Reader
		if list == "-" {
			r = cmd.InOrStdin()
		} else {
			f, err := os.Open(list)
			if err != nil {
				return nil, fmt.Errorf("open site list: %w", err)
			}
			defer f.Close()
			r = f
		}
		listed, err := ParseSiteList(r)
		if err != nil {
			return nil, fmt.Errorf("read site list %s: %w", list, err)
		}
		sites = append(sites, listed...)
	}

	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	return sites, nil
}

// ParseSiteList reads one site per line. Blank lines and lines starting with
// # are skipped; surrounding whitespace is trimmed.
func ParseSiteList(r io.Reader) ([]string, error) {
	var sites []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sites = append(sites, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sites, nil
}

func writeZipFile(path string, res batch.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create zip directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	if err := store.WriteZip(f, res.Favicons()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write zip: %w", err)
	}
	return f.Close()
}

func printSummary(w io.Writer, res batch.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range res.Outcomes {
		detail := o.Err
		if o.Found() {
			detail = o.Favicon.Mime.String() + " " + o.Favicon.SourceURL
			if o.StoredAt != "" {
				detail += " -> " + o.StoredAt
			}
			if o.PersistErr != "" {
				detail += " (not saved: " + o.PersistErr + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Site, o.Status, detail)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d/%d found in %s\n", res.Found(), len(res.Outcomes), res.Elapsed.Round(time.Millisecond))
}
