package exchange

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UpbitBroker implements Broker on Upbit's private exchange API. Requests
// are authenticated with an HS256 JWT carrying the access key, a fresh
// nonce and, when parameters are present, their SHA512 query hash.
type UpbitBroker struct {
	Client    *http.Client
	BaseURL   string
	accessKey string
	secretKey string
}

func NewUpbitBroker(accessKey, secretKey string) *UpbitBroker {
	return &UpbitBroker{
		Client:    &http.Client{Timeout: 10 * time.Second},
		BaseURL:   upbitBaseURL,
		accessKey: accessKey,
		secretKey: secretKey,
	}
}

func (b *UpbitBroker) Balances() (map[string]Balance, error) {
	body, err := b.request(http.MethodGet, "accounts", nil)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Currency    string `json:"currency"`
		Balance     string `json:"balance"`
		Locked      string `json:"locked"`
		AvgBuyPrice string `json:"avg_buy_price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("upbit decode accounts: %w", err)
	}

	balances := make(map[string]Balance, len(raw))
	for _, a := range raw {
		balances[a.Currency] = Balance{
			Currency:    a.Currency,
			Available:   parseNumeric(a.Balance),
			Locked:      parseNumeric(a.Locked),
			AvgBuyPrice: parseNumeric(a.AvgBuyPrice),
		}
	}
	return balances, nil
}

// BuyMarket places a market buy spending `amount` of the quote currency
// (Upbit ord_type "price").
func (b *UpbitBroker) BuyMarket(symbol string, amount float64) (Order, error) {
	params := url.Values{}
	params.Set("market", symbol)
	params.Set("side", "bid")
	params.Set("ord_type", "price")
	params.Set("price", strconv.FormatFloat(amount, 'f', -1, 64))
	return b.placeOrder(params)
}

// SellMarket places a market sell of `volume` base currency (ord_type
// "market").
func (b *UpbitBroker) SellMarket(symbol string, volume float64) (Order, error) {
	params := url.Values{}
	params.Set("market", symbol)
	params.Set("side", "ask")
	params.Set("ord_type", "market")
	params.Set("volume", strconv.FormatFloat(volume, 'f', -1, 64))
	return b.placeOrder(params)
}

func (b *UpbitBroker) placeOrder(params url.Values) (Order, error) {
	body, err := b.request(http.MethodPost, "orders", params)
	if err != nil {
		return Order{}, err
	}

	var raw struct {
		UUID      string `json:"uuid"`
		Market    string `json:"market"`
		Side      string `json:"side"`
		Price     string `json:"price"`
		Volume    string `json:"volume"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Order{}, fmt.Errorf("upbit decode order: %w", err)
	}

	created, _ := time.Parse(time.RFC3339, raw.CreatedAt)
	return Order{
		ID:        raw.UUID,
		Symbol:    raw.Market,
		Side:      raw.Side,
		Price:     parseNumeric(raw.Price),
		Volume:    parseNumeric(raw.Volume),
		CreatedAt: created,
	}, nil
}

func (b *UpbitBroker) request(method, path string, params url.Values) ([]byte, error) {
	token, err := b.sign(params)
	if err != nil {
		return nil, fmt.Errorf("upbit sign request: %w", err)
	}

	u := fmt.Sprintf("%s/%s", b.BaseURL, path)
	var reqBody io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
	} else if len(params) > 0 {
		reqBody = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequest(method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upbit request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upbit read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("upbit: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (b *UpbitBroker) sign(params url.Values) (string, error) {
	claims := jwt.MapClaims{
		"access_key": b.accessKey,
		"nonce":      newNonce(),
	}
	if len(params) > 0 {
		hash := sha512.Sum512([]byte(params.Encode()))
		claims["query_hash"] = hex.EncodeToString(hash[:])
		claims["query_hash_alg"] = "SHA512"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.secretKey))
}

func newNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}

func parseNumeric(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
