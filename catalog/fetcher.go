package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DefaultArchiveURL queries confirmed planets from the NASA Exoplanet Archive TAP service.
const DefaultArchiveURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync?query=select+pl_name,pl_rade,pl_eqt,pl_insol,st_teff,st_rad,sy_dist+from+ps+where+default_flag=1+and+pl_rade+is+not+null+and+pl_eqt+is+not+null&format=csv"

// DefaultFetchTimeout bounds the archive request.
const DefaultFetchTimeout = 30 * time.Second

// Source 数据来源
type Source string

const (
	SourceCache   Source = "cache"
	SourceArchive Source = "archive"
	SourceMock    Source = "mock"
)

// Fetcher loads the dataset from the local cache file, the archive, or mock rows, in that order.
type Fetcher struct {
	URL       string
	CachePath string
	Client    *http.Client
	Logger    *zap.Logger
}

// NewFetcher 创建数据获取器
func NewFetcher(url, cachePath string, logger *zap.Logger) *Fetcher {
	if url == "" {
		url = DefaultArchiveURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		URL:       url,
		CachePath: cachePath,
		Client:    &http.Client{Timeout: DefaultFetchTimeout},
		Logger:    logger,
	}
}

// Fetch returns the dataset and where it came from. It only fails when the
// local cache exists but cannot be read; archive failures fall back to mock rows.
func (f *Fetcher) Fetch(ctx context.Context) ([]Record, Source, error) {
	if _, err := os.Stat(f.CachePath); err == nil {
		f.Logger.Info("loading data from local file", zap.String("path", f.CachePath))
		records, err := LoadFile(f.CachePath, f.Logger)
		if err != nil {
			return nil, SourceCache, err
		}
		return records, SourceCache, nil
	}

	f.Logger.Info("fetching data from archive", zap.String("url", f.URL))
	records, err := f.fetchArchive(ctx)
	if err == nil {
		f.Logger.Info("data fetched and cached",
			zap.String("path", f.CachePath),
			zap.Int("records", len(records)))
		return records, SourceArchive, nil
	}

	f.Logger.Warn("archive fetch failed, falling back to mock data", zap.Error(err))
	records = MockRecords()
	if err := f.writeCache(records); err != nil {
		f.Logger.Warn("failed to cache mock data", zap.Error(err))
	}
	return records, SourceMock, nil
}

func (f *Fetcher) fetchArchive(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	records, issues, err := ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("archive returned no rows")
	}
	logIssues(f.Logger, issues)

	if err := writeFileAtomic(f.CachePath, body); err != nil {
		return nil, fmt.Errorf("cache archive data: %w", err)
	}
	return records, nil
}

func (f *Fetcher) writeCache(records []Record) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return err
	}
	return writeFileAtomic(f.CachePath, buf.Bytes())
}

// LoadFile reads a dataset CSV from disk.
func LoadFile(path string, logger *zap.Logger) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, issues, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if logger != nil {
		logIssues(logger, issues)
	}
	return records, nil
}

func logIssues(logger *zap.Logger, issues []ParseIssue) {
	for _, issue := range issues {
		logger.Warn("unparsable cell treated as missing",
			zap.Int("line", issue.Line),
			zap.String("column", issue.Column),
			zap.String("value", issue.Value))
	}
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
