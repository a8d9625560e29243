package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	tdto "github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/treasury/dto"
)

// Client fala com o treasury-service para um único ativo, com as
// transferências de saída vinculadas à conta do motor. Implementa a
// superfície de ledger que o motor consome.
type Client struct {
	BaseURL string
	Asset   string
	Sender  string // conta de origem das chamadas Transfer
	HTTP    *http.Client
}

func New(base, asset, sender string) *Client {
	return &Client{
		BaseURL: base,
		Asset:   asset,
		Sender:  sender,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) TransferFrom(ctx context.Context, from, to string, amount int64) error {
	return c.transfer(ctx, from, to, amount)
}

func (c *Client) Transfer(ctx context.Context, to string, amount int64) error {
	return c.transfer(ctx, c.Sender, to, amount)
}

func (c *Client) transfer(ctx context.Context, from, to string, amount int64) error {
	body, _ := json.Marshal(tdto.TransferRequest{
		From:   from,
		To:     to,
		Asset:  c.Asset,
		Amount: amount,
		Ref:    uuid.New().String(),
	})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/treasury/transfer", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("treasury transfer http %d", res.StatusCode)
	}
	return nil
}

func (c *Client) BalanceOf(ctx context.Context, account string) (int64, error) {
	u := c.BaseURL + "/treasury/balance/" + url.PathEscape(account) + "?asset=" + url.QueryEscape(c.Asset)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return 0, fmt.Errorf("treasury balance http %d", res.StatusCode)
	}
	var out tdto.BalanceResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}
