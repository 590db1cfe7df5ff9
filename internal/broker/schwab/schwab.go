package schwab

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

const defaultBaseURL = "https://api.schwabapi.com"

type Params struct {
	Mode        string
	BaseURL     string
	AccessToken string

	// AccountHash pins the trading account, bypassing discovery.
	AccountHash string
}

// Schwab is a thin HTTP client over the brokerage API: account hash
// discovery, quote fetch, and order submission. It performs no retries
// and resolves nothing; the execution engine owns the state machine.
type Schwab struct {
	p           Params
	client      *resty.Client
	accountHash string
}

var _ interfaces.Broker = (*Schwab)(nil)

func New(p Params) *Schwab {
	if p.BaseURL == "" {
		p.BaseURL = defaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(p.BaseURL)
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(0)
	if p.AccessToken != "" {
		client.SetAuthToken(p.AccessToken)
	}

	return &Schwab{p: p, client: client}
}

type linkedAccount struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

// Connect discovers the primary account hash. Called once at startup;
// failure here is fatal for LIVE mode.
func (s *Schwab) Connect(ctx context.Context) error {
	if s.p.Mode == "DRY_RUN" {
		s.accountHash = "DRY-RUN-ACCOUNT"
		return nil
	}
	if s.p.AccessToken == "" {
		return errors.New("missing broker access token")
	}
	if s.p.AccountHash != "" {
		s.accountHash = s.p.AccountHash
		logger.Info(ctx, "Broker account pinned from configuration")
		return nil
	}

	var accounts []linkedAccount
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&accounts).
		Get("/trader/v1/accounts/accountNumbers")
	if err != nil {
		return fmt.Errorf("fetch linked accounts: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch linked accounts: http %d", resp.StatusCode())
	}
	if len(accounts) == 0 || accounts[0].HashValue == "" {
		return errors.New("no linked accounts with a hash value")
	}

	s.accountHash = accounts[0].HashValue
	logger.Info(ctx, "Broker account resolved", "account", accounts[0].AccountNumber)
	return nil
}

type quotePayload struct {
	Quote struct {
		AskPrice  float64 `json:"askPrice"`
		LastPrice float64 `json:"lastPrice"`
	} `json:"quote"`
}

// Quote fetches a fresh price snapshot for one symbol.
func (s *Schwab) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	symbol = strings.ToUpper(symbol)

	if s.p.Mode == "DRY_RUN" {
		return types.Quote{Ask: 100.25, Last: 100.20}, nil
	}

	var payload map[string]quotePayload
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", symbol).
		SetResult(&payload).
		Get("/marketdata/v1/quotes")
	if err != nil {
		return types.Quote{}, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return types.Quote{}, fmt.Errorf("fetch quote for %s: http %d", symbol, resp.StatusCode())
	}

	q, ok := payload[symbol]
	if !ok {
		return types.Quote{}, fmt.Errorf("quote response missing symbol %s", symbol)
	}
	return types.Quote{Ask: q.Quote.AskPrice, Last: q.Quote.LastPrice}, nil
}

type orderLeg struct {
	Instruction string          `json:"instruction"`
	Quantity    int             `json:"quantity"`
	Instrument  orderInstrument `json:"instrument"`
}

type orderInstrument struct {
	Symbol    string `json:"symbol"`
	AssetType string `json:"assetType"`
}

type orderBody struct {
	OrderType          string     `json:"orderType"`
	Session            string     `json:"session"`
	Duration           string     `json:"duration"`
	OrderStrategyType  string     `json:"orderStrategyType"`
	OrderLegCollection []orderLeg `json:"orderLegCollection"`
}

// SubmitOrder posts one market order and returns the raw transport
// outcome. It is called at most once per logical order request; any
// retry decision belongs to a human constructing a new request.
func (s *Schwab) SubmitOrder(ctx context.Context, req types.OrderReq) (types.Submission, error) {
	if req.Qty <= 0 {
		return types.Submission{}, fmt.Errorf("order quantity must be positive, got %d", req.Qty)
	}

	if s.p.Mode == "DRY_RUN" {
		loc := fmt.Sprintf("%s/trader/v1/accounts/%s/orders/%d", s.p.BaseURL, s.accountHash, time.Now().UnixNano())
		logger.Info(ctx, "DRY_RUN order simulated", "symbol", req.Symbol, "side", string(req.Side), "qty", req.Qty)
		return types.Submission{StatusCode: 201, Location: loc}, nil
	}
	if s.accountHash == "" {
		return types.Submission{}, errors.New("broker not connected: no account hash")
	}

	body := orderBody{
		OrderType:         "MARKET",
		Session:           "NORMAL",
		Duration:          "DAY",
		OrderStrategyType: "SINGLE",
		OrderLegCollection: []orderLeg{{
			Instruction: string(req.Side),
			Quantity:    req.Qty,
			Instrument: orderInstrument{
				Symbol:    strings.ToUpper(req.Symbol),
				AssetType: "EQUITY",
			},
		}},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/trader/v1/accounts/%s/orders", s.accountHash))
	if err != nil {
		return types.Submission{}, fmt.Errorf("submit order: %w", err)
	}

	return types.Submission{
		StatusCode: resp.StatusCode(),
		Location:   resp.Header().Get("Location"),
	}, nil
}
