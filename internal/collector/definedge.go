package collector

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"TDSentinel/internal/model"
)

// History timestamps arrive as DDMMYYYYHHMM.
const historyTimeLayout = "020120061504"

// DefinedgeFetcher implements Fetcher against the Definedge Securities data
// API: a zip-wrapped headerless CSV master file and headerless OHLCV CSV
// history endpoints.
type DefinedgeFetcher struct {
	BaseURL    string
	DataURL    string
	SessionKey string
	Client     *http.Client
}

// NewDefinedgeFetcher creates a fetcher with optional proxy support.
func NewDefinedgeFetcher(baseURL, dataURL, sessionKey, proxyURL string) *DefinedgeFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &DefinedgeFetcher{
		BaseURL:    baseURL,
		DataURL:    dataURL,
		SessionKey: sessionKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *DefinedgeFetcher) Name() string { return "definedge" }

// FetchInstruments downloads and parses the NSE cash master file.
func (f *DefinedgeFetcher) FetchInstruments(ctx context.Context) ([]model.Instrument, error) {
	endpoint := f.BaseURL + "/public/nsecash.zip"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", f.SessionKey)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch master file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch master file: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read master file: %w", err)
	}
	return parseMasterZip(body)
}

func parseMasterZip(data []byte) ([]model.Instrument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open master zip: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("master zip is empty")
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open master entry: %w", err)
	}
	defer rc.Close()
	return parseMasterCSV(rc)
}

// parseMasterCSV reads the headerless master file. Columns: segment, token,
// symbol, trading symbol, instrument type, expiry, tick size, lot size,
// option type, strike, price precision, multiplier, ISIN, price multiplier,
// company name.
func parseMasterCSV(r io.Reader) ([]model.Instrument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []model.Instrument
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse master csv: %w", err)
		}
		if len(rec) < 5 {
			continue
		}
		inst := model.Instrument{
			Segment:    strings.TrimSpace(rec[0]),
			Token:      strings.TrimSpace(rec[1]),
			Symbol:     strings.TrimSpace(rec[2]),
			TradingSym: strings.TrimSpace(rec[3]),
			Type:       strings.TrimSpace(rec[4]),
		}
		if len(rec) >= 15 {
			inst.Company = strings.TrimSpace(rec[14])
		}
		out = append(out, inst)
	}
	return out, nil
}

// FetchDailyBars retrieves daily OHLCV history going back the given number
// of calendar days.
func (f *DefinedgeFetcher) FetchDailyBars(ctx context.Context, segment, token string, days int) ([]model.PriceBar, error) {
	from, to := historyRange(days)
	endpoint := fmt.Sprintf("%s/sds/history/%s/%s/%s/%s", f.DataURL, segment, token, from, to)
	return f.fetchBars(ctx, endpoint)
}

// FetchMinuteBars retrieves minute OHLCV history going back the given number
// of calendar days.
func (f *DefinedgeFetcher) FetchMinuteBars(ctx context.Context, segment, token string, days int) ([]model.PriceBar, error) {
	from, to := historyRange(days)
	endpoint := fmt.Sprintf("%s/sds/history/%s/%s/minute/%s/%s", f.DataURL, segment, token, from, to)
	return f.fetchBars(ctx, endpoint)
}

func historyRange(days int) (from, to string) {
	now := time.Now()
	return now.AddDate(0, 0, -days).Format(historyTimeLayout), now.Format(historyTimeLayout)
}

func (f *DefinedgeFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.PriceBar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.SessionKey)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseHistoryCSV(resp.Body)
}

// parseHistoryCSV reads headerless rows of datetime, open, high, low, close,
// volume. Rows that fail to parse are dropped, matching the provider's habit
// of interleaving blank or partial lines.
func parseHistoryCSV(r io.Reader) ([]model.PriceBar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []model.PriceBar
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse history csv: %w", err)
		}
		if len(rec) < 6 {
			continue
		}
		ts, err := time.Parse(historyTimeLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for j := 0; j < 5; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		bars = append(bars, model.PriceBar{
			Time:   ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupeBars(bars), nil
}

// dedupeBars drops repeated timestamps after sorting; the engine requires
// strictly increasing series.
func dedupeBars(bars []model.PriceBar) []model.PriceBar {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && !out[len(out)-1].Time.Before(b.Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}
