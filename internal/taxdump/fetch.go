package taxdump

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/fetcher"
	"github.com/entolab/isympred/internal/hoststore"
)

// DefaultURL is the NCBI taxonomy dump archive, served over both HTTPS and
// FTP from the same host.
const DefaultURL = "https://ftp.ncbi.nlm.nih.gov/pub/taxonomy/taxdmp.zip"

// FetchOptions configures a taxonomy fetch.
type FetchOptions struct {
	URL  string // default DefaultURL
	Root string // default DefaultRoot
}

// Fetch downloads the taxonomy dump, extracts nodes.dmp and names.dmp, and
// loads the configured subtree into the host store. Returns the number of
// nodes loaded.
func Fetch(ctx context.Context, store *hoststore.SQLiteResolver, opts FetchOptions) (int, error) {
	rawURL := opts.URL
	if rawURL == "" {
		rawURL = DefaultURL
	}
	root := opts.Root
	if root == "" {
		root = DefaultRoot
	}

	f, err := fetcherFor(rawURL)
	if err != nil {
		return 0, err
	}

	workDir, err := os.MkdirTemp("", "taxdump-*")
	if err != nil {
		return 0, eris.Wrap(err, "taxdump: create temp dir")
	}
	defer os.RemoveAll(workDir)

	archive := filepath.Join(workDir, "taxdmp.zip")
	zap.L().Info("taxdump: downloading", zap.String("url", rawURL))
	n, err := f.DownloadToFile(ctx, rawURL, archive)
	if err != nil {
		return 0, eris.Wrap(err, "taxdump: download")
	}
	zap.L().Info("taxdump: downloaded", zap.Int64("bytes", n))

	nodesPath, err := fetcher.ExtractZIPFile(archive, "nodes.dmp", workDir)
	if err != nil {
		return 0, err
	}
	namesPath, err := fetcher.ExtractZIPFile(archive, "names.dmp", workDir)
	if err != nil {
		return 0, err
	}

	nodesFile, err := os.Open(nodesPath)
	if err != nil {
		return 0, eris.Wrap(err, "taxdump: open nodes.dmp")
	}
	defer nodesFile.Close()
	nodes, err := ParseNodes(nodesFile)
	if err != nil {
		return 0, err
	}

	namesFile, err := os.Open(namesPath)
	if err != nil {
		return 0, eris.Wrap(err, "taxdump: open names.dmp")
	}
	defer namesFile.Close()
	names, err := ParseNames(namesFile)
	if err != nil {
		return 0, err
	}

	if err := store.Migrate(ctx); err != nil {
		return 0, err
	}
	return Load(ctx, store, nodes, names, root)
}

func fetcherFor(rawURL string) (fetcher.Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "taxdump: parse url %q", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		}), nil
	case "ftp":
		return fetcher.NewFTPFetcher(fetcher.FTPOptions{}), nil
	default:
		return nil, eris.Errorf("taxdump: unsupported scheme %q", u.Scheme)
	}
}
