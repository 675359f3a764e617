package exchange

import (
	"fmt"
	"sync"
	"time"

	"CryptoSentry/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Series  map[string]model.Series // keyed by interval; nil falls back to generated bars
	Err     error
	Fetches int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_, interval string, count int) (model.Series, error) {
	m.Fetches++
	if m.Err != nil {
		return nil, m.Err
	}
	if s, ok := m.Series[interval]; ok {
		return s, nil
	}
	return generateMockSeries(m.Price, count), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ string) (float64, error) {
	m.Fetches++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockFetcher) FetchOrderbook(symbol string) (Orderbook, error) {
	if m.Err != nil {
		return Orderbook{}, m.Err
	}
	return Orderbook{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Levels: []OrderbookLevel{
			{AskPrice: m.Price * 1.0005, BidPrice: m.Price * 0.9995, AskSize: 10, BidSize: 10},
		},
	}, nil
}

func generateMockSeries(basePrice float64, count int) model.Series {
	series := make(model.Series, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		series[i] = model.Candle{
			Time:   time.Now().UTC().Add(-time.Duration(count-i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000,
		}
	}
	return series
}

// MockBroker simulates fills at a fixed price and tracks balances in memory.
// Used by tests and by semi mode's dry-run execution path.
type MockBroker struct {
	mu       sync.Mutex
	Price    float64
	Quote    string
	balances map[string]Balance
	orders   []Order
}

func NewMockBroker(quote string, seed map[string]Balance, price float64) *MockBroker {
	balances := make(map[string]Balance, len(seed))
	for k, v := range seed {
		balances[k] = v
	}
	return &MockBroker{Price: price, Quote: quote, balances: balances}
}

func (m *MockBroker) Balances() (map[string]Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Balance, len(m.balances))
	for k, v := range m.balances {
		out[k] = v
	}
	return out, nil
}

func (m *MockBroker) BuyMarket(symbol string, amount float64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	quote := m.balances[m.Quote]
	if quote.Available < amount {
		return Order{}, fmt.Errorf("insufficient %s balance: %.0f < %.0f", m.Quote, quote.Available, amount)
	}
	quote.Available -= amount
	m.balances[m.Quote] = quote

	base := baseCurrency(symbol)
	holding := m.balances[base]
	volume := amount / m.Price
	holding.Currency = base
	holding.Available += volume
	holding.AvgBuyPrice = m.Price
	m.balances[base] = holding

	order := Order{
		ID:        fmt.Sprintf("mock-%d", len(m.orders)+1),
		Symbol:    symbol,
		Side:      "bid",
		Price:     m.Price,
		Volume:    volume,
		CreatedAt: time.Now().UTC(),
	}
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *MockBroker) SellMarket(symbol string, volume float64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	base := baseCurrency(symbol)
	holding := m.balances[base]
	if holding.Available < volume {
		return Order{}, fmt.Errorf("insufficient %s balance: %f < %f", base, holding.Available, volume)
	}
	holding.Available -= volume
	m.balances[base] = holding

	quote := m.balances[m.Quote]
	quote.Currency = m.Quote
	quote.Available += volume * m.Price
	m.balances[m.Quote] = quote

	order := Order{
		ID:        fmt.Sprintf("mock-%d", len(m.orders)+1),
		Symbol:    symbol,
		Side:      "ask",
		Price:     m.Price,
		Volume:    volume,
		CreatedAt: time.Now().UTC(),
	}
	m.orders = append(m.orders, order)
	return order, nil
}

// Orders returns every fill so far, oldest first.
func (m *MockBroker) Orders() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Order(nil), m.orders...)
}

// baseCurrency extracts "BTC" from "KRW-BTC".
func baseCurrency(symbol string) string {
	for i := 0; i < len(symbol); i++ {
		if symbol[i] == '-' {
			return symbol[i+1:]
		}
	}
	return symbol
}
