package binance

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildArchive(t *testing.T, csvName, csvBody string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(csvName)
	require.NoError(t, err)
	_, err = w.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDownloadMonthVerifiesAndExtracts(t *testing.T) {
	csvBody := "1000,100,101,99,100.5,12.5,1999\n"
	archive := buildArchive(t, "BTCUSDT-1m-2024-01.csv", csvBody)
	digest := sha256.Sum256(archive)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ".zip"):
			_, _ = w.Write(archive)
		case strings.HasSuffix(r.URL.Path, ".CHECKSUM"):
			fmt.Fprintf(w, "%s  BTCUSDT-1m-2024-01.zip\n", hex.EncodeToString(digest[:]))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDownloader(srv.URL, t.TempDir(), zap.NewNop())
	csvPath, err := d.DownloadMonth("BTCUSDT", "1m", 2024, 1)
	require.NoError(t, err)

	got, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(got))
}

func TestDownloadMonthRejectsBadChecksum(t *testing.T) {
	archive := buildArchive(t, "BTCUSDT-1m-2024-01.csv", "1000,100,101,99,100.5,12.5,1999\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ".zip"):
			_, _ = w.Write(archive)
		case strings.HasSuffix(r.URL.Path, ".CHECKSUM"):
			fmt.Fprint(w, strings.Repeat("ab", sha256.Size)+"  BTCUSDT-1m-2024-01.zip\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDownloader(srv.URL, t.TempDir(), zap.NewNop())
	_, err := d.DownloadMonth("BTCUSDT", "1m", 2024, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestParseChecksum(t *testing.T) {
	digest := strings.Repeat("0f", sha256.Size)
	got, err := ParseChecksum([]byte(digest + "  file.zip\n"))
	require.NoError(t, err)
	assert.Equal(t, digest, got)

	_, err = ParseChecksum([]byte("   \n"))
	assert.Error(t, err)

	_, err = ParseChecksum([]byte("zz  file.zip"))
	assert.Error(t, err)
}
