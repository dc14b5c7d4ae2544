// Command mmctl inspects the hand archive of a running market maker server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/server"
	"github.com/pterm/pterm"
)

const defaultAddr = "http://localhost:8000"

var errNotFound = errors.New("table not found")

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func usage() error {
	return errors.New("usage: mmctl <history|stats> -table <id> [-limit n] [-addr url]")
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage()
	}

	fs := flag.NewFlagSet("mmctl "+args[0], flag.ContinueOnError)
	addr := fs.String("addr", defaultAddr, "server base URL")
	tableID := fs.String("table", "", "table id")
	limit := fs.Int("limit", 10, "number of hands to show")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *tableID == "" {
		return errors.New("-table is required")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	base := *addr + "/table/" + url.PathEscape(*tableID)

	switch args[0] {
	case "history":
		var resp server.HistoryResponse
		if err := fetch(ctx, client, base+"/history?limit="+strconv.Itoa(*limit), &resp); err != nil {
			return err
		}
		pterm.DefaultSection.Printfln("Table %s, hand %d", *tableID, resp.CurrentHand)
		if err := pterm.DefaultTable.WithHasHeader().WithData(historyRows(resp.RecentHands)).Render(); err != nil {
			return err
		}
		return pterm.DefaultTable.WithHasHeader().WithData(statsRows(resp.SessionStats)).Render()
	case "stats":
		var stats domain.SessionStats
		if err := fetch(ctx, client, base+"/stats", &stats); err != nil {
			return err
		}
		return pterm.DefaultTable.WithHasHeader().WithData(statsRows(stats)).Render()
	}
	return usage()
}

// fetch GETs url and decodes the JSON body into out
func fetch(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errNotFound
	default:
		return fmt.Errorf("request %s: unexpected status %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func historyRows(hands []domain.HandRecord) [][]string {
	rows := [][]string{{"Hand", "Maker", "Quotes", "Trades", "Final total", "Finished"}}
	for _, h := range hands {
		total := "-"
		if h.FinalTotal != nil {
			total = strconv.Itoa(*h.FinalTotal)
		}
		rows = append(rows, []string{
			strconv.Itoa(h.HandNumber),
			h.Maker,
			strconv.Itoa(len(h.Quotes)),
			strconv.Itoa(len(h.Trades)),
			total,
			h.Timestamp.Format(time.DateTime),
		})
	}
	return rows
}

func statsRows(stats domain.SessionStats) [][]string {
	return [][]string{
		{"Hands played", "Total trades", "Total quotes", "Avg spread"},
		{
			strconv.Itoa(stats.HandsPlayed),
			strconv.Itoa(stats.TotalTrades),
			strconv.Itoa(stats.TotalQuotes),
			strconv.FormatFloat(stats.AvgSpread, 'f', 2, 64),
		},
	}
}
