// HTTP server over the reports directory: lists available run reports and
// serves individual reports as JSON.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legend-backtest/config"
	"legend-backtest/services/report"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "Listen address")
		reportsDir = flag.String("reports-dir", "", "Reports directory (default from env/REPORTS_DIR)")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	infra := config.Load()
	dir := infra.ReportsDir
	if *reportsDir != "" {
		dir = *reportsDir
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/reports", func(c *gin.Context) {
		names, err := listReports(dir)
		if err != nil {
			log.Error("list reports failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot list reports"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": names})
	})

	r.GET("/api/reports/:name", func(c *gin.Context) {
		name := c.Param("name")
		// No path traversal out of the reports dir.
		if name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
			return
		}
		rep, err := report.Read(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
				return
			}
			log.Error("read report failed", zap.String("name", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read report"})
			return
		}
		c.JSON(http.StatusOK, rep)
	})

	log.Info("report server listening", zap.String("addr", *addr), zap.String("reports_dir", dir))
	if err := r.Run(*addr); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func listReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
