// Package tradelog appends JSON-lines audit records to daily files:
// submitted orders, and each cycle's reasoning text together with the
// extracted order book.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"llm-portfolio-trader/internal/types"
)

var mu sync.Mutex

type Entry struct {
	Time, Symbol, Side, Reason string
	Quantity                   float64
	Price                      float64
	OrderID                    int64
	OrderListID                int64 `json:",omitempty"`
}

// DecisionEntry records one cycle's decision artifacts: the free-text
// reasoning and the order book extracted from it, kept together so
// divergence between the two stages can be audited after the fact.
type DecisionEntry struct {
	Time      string
	Strategy  string
	Reasoning string
	OrderBook types.OrderBook
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}
func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}
func decisionsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.UTC().Format("2006-01-02")+".txt")
}

func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

func AppendDecision(e DecisionEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(decisionsFilepath(now), e)
}

func appendLine(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily files older than retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
