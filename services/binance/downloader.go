// Package binance downloads Binance bulk-data monthly kline archives and
// verifies them against their published checksums before extraction.
package binance

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://data.binance.vision"

type Downloader struct {
	baseURL    string
	dataDir    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewDownloader(baseURL, dataDir string, log *zap.Logger) *Downloader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Downloader{
		baseURL: baseURL,
		dataDir: dataDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute,
		},
		log: log,
	}
}

func (d *Downloader) archiveName(symbol, interval string, year, month int) string {
	return fmt.Sprintf("%s-%s-%d-%02d.zip", symbol, interval, year, month)
}

func (d *Downloader) archiveURL(symbol, interval string, year, month int) string {
	return fmt.Sprintf("%s/data/spot/monthly/klines/%s/%s/%s",
		d.baseURL, symbol, interval, d.archiveName(symbol, interval, year, month))
}

// DownloadMonth fetches one monthly archive plus its .CHECKSUM companion,
// verifies the SHA-256, and extracts the contained CSV into the data
// directory. It returns the path of the extracted CSV.
func (d *Downloader) DownloadMonth(symbol, interval string, year, month int) (string, error) {
	name := d.archiveName(symbol, interval, year, month)
	zipPath := filepath.Join(d.dataDir, name)
	url := d.archiveURL(symbol, interval, year, month)

	if err := d.downloadFile(url, zipPath); err != nil {
		return "", err
	}

	expected, err := d.fetchChecksum(url + ".CHECKSUM")
	if err != nil {
		return "", err
	}
	if err := verifyChecksum(zipPath, expected); err != nil {
		return "", err
	}
	d.log.Info("checksum verified", zap.String("file", name))

	csvPath, err := extractFirstCSV(zipPath, d.dataDir)
	if err != nil {
		return "", err
	}
	d.log.Info("archive extracted", zap.String("csv", csvPath))
	return csvPath, nil
}

func (d *Downloader) downloadFile(url, path string) error {
	d.log.Info("downloading", zap.String("url", url))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	defer f.Close()

	resp, err := d.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// fetchChecksum downloads a .CHECKSUM file and returns the hex digest. The
// file format is "<hash>  <filename>".
func (d *Downloader) fetchChecksum(url string) (string, error) {
	resp, err := d.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return ParseChecksum(body)
}

// ParseChecksum extracts the hex digest from checksum-file content.
func ParseChecksum(content []byte) (string, error) {
	fields := strings.Fields(string(bytes.TrimSpace(content)))
	if len(fields) == 0 {
		return "", errors.New("empty checksum file")
	}
	digest := strings.ToLower(fields[0])
	if len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("unexpected digest length %d", len(digest))
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("malformed digest: %w", err)
	}
	return digest, nil
}

func verifyChecksum(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open for checksum: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	actual := hex.EncodeToString(hash.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", filepath.Base(path), expected, actual)
	}
	return nil
}

// extractFirstCSV unpacks the first .csv entry of the archive into dir.
func extractFirstCSV(zipPath, dir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("zip open: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("zip entry open: %w", err)
		}
		defer rc.Close()

		outPath := filepath.Join(dir, filepath.Base(f.Name))
		out, err := os.Create(outPath)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", outPath, err)
		}
		defer out.Close()

		if _, err := io.Copy(out, rc); err != nil {
			return "", fmt.Errorf("extract %s: %w", f.Name, err)
		}
		return outPath, nil
	}
	return "", errors.New("no csv in zip")
}
