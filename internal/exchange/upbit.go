package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CryptoSentry/internal/model"
)

const upbitBaseURL = "https://api.upbit.com/v1"

// intervalPaths maps our interval names onto Upbit candle endpoints.
var intervalPaths = map[string]string{
	"1m":  "candles/minutes/1",
	"3m":  "candles/minutes/3",
	"5m":  "candles/minutes/5",
	"15m": "candles/minutes/15",
	"30m": "candles/minutes/30",
	"1h":  "candles/minutes/60",
	"4h":  "candles/minutes/240",
	"1d":  "candles/days",
}

// UpbitFetcher implements Fetcher on Upbit's public quotation API.
type UpbitFetcher struct {
	Client  *http.Client
	BaseURL string
}

func NewUpbitFetcher() *UpbitFetcher {
	return &UpbitFetcher{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: upbitBaseURL,
	}
}

func (f *UpbitFetcher) Name() string { return "upbit" }

// upbitCandle is the quotation API's candle payload.
type upbitCandle struct {
	Market       string  `json:"market"`
	DateTimeUTC  string  `json:"candle_date_time_utc"`
	OpeningPrice float64 `json:"opening_price"`
	HighPrice    float64 `json:"high_price"`
	LowPrice     float64 `json:"low_price"`
	TradePrice   float64 `json:"trade_price"`
	AccVolume    float64 `json:"candle_acc_trade_volume"`
}

// FetchCandles returns candles newest-last. Upbit serves them newest-first;
// the series is re-sorted by timestamp before returning.
func (f *UpbitFetcher) FetchCandles(symbol, interval string, count int) (model.Series, error) {
	path, ok := intervalPaths[interval]
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if count <= 0 || count > 200 {
		count = 200
	}

	u := fmt.Sprintf("%s/%s?market=%s&count=%d", f.BaseURL, path, url.QueryEscape(symbol), count)
	body, err := f.get(u)
	if err != nil {
		return nil, err
	}

	var raw []upbitCandle
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("upbit decode candles: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("upbit: no candles for %s %s", symbol, interval)
	}

	series := make(model.Series, 0, len(raw))
	for _, c := range raw {
		ts, err := time.Parse("2006-01-02T15:04:05", c.DateTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("upbit parse candle time %q: %w", c.DateTimeUTC, err)
		}
		series = append(series, model.Candle{
			Time:   ts.UTC(),
			Open:   c.OpeningPrice,
			High:   c.HighPrice,
			Low:    c.LowPrice,
			Close:  c.TradePrice,
			Volume: c.AccVolume,
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series, nil
}

func (f *UpbitFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	u := fmt.Sprintf("%s/ticker?markets=%s", f.BaseURL, url.QueryEscape(symbol))
	body, err := f.get(u)
	if err != nil {
		return 0, err
	}

	var raw []struct {
		TradePrice float64 `json:"trade_price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("upbit decode ticker: %w", err)
	}
	if len(raw) == 0 || raw[0].TradePrice <= 0 {
		return 0, fmt.Errorf("upbit: no ticker for %s", symbol)
	}
	return raw[0].TradePrice, nil
}

func (f *UpbitFetcher) FetchOrderbook(symbol string) (Orderbook, error) {
	u := fmt.Sprintf("%s/orderbook?markets=%s", f.BaseURL, url.QueryEscape(symbol))
	body, err := f.get(u)
	if err != nil {
		return Orderbook{}, err
	}

	var raw []struct {
		Market    string `json:"market"`
		Timestamp int64  `json:"timestamp"`
		Units     []struct {
			AskPrice float64 `json:"ask_price"`
			BidPrice float64 `json:"bid_price"`
			AskSize  float64 `json:"ask_size"`
			BidSize  float64 `json:"bid_size"`
		} `json:"orderbook_units"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Orderbook{}, fmt.Errorf("upbit decode orderbook: %w", err)
	}
	if len(raw) == 0 {
		return Orderbook{}, fmt.Errorf("upbit: no orderbook for %s", symbol)
	}

	ob := Orderbook{
		Symbol:    raw[0].Market,
		Timestamp: time.UnixMilli(raw[0].Timestamp).UTC(),
		Levels:    make([]OrderbookLevel, 0, len(raw[0].Units)),
	}
	for _, u := range raw[0].Units {
		ob.Levels = append(ob.Levels, OrderbookLevel{
			AskPrice: u.AskPrice,
			BidPrice: u.BidPrice,
			AskSize:  u.AskSize,
			BidSize:  u.BidSize,
		})
	}
	return ob, nil
}

func (f *UpbitFetcher) get(u string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upbit fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upbit read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upbit: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
