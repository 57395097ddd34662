// Package quoting implements the quote negotiation exchange against a
// connector's quote service.
package quoting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitwit/ilp/types"
	"github.com/vitwit/ilp/utils"
)

// Negotiator issues single-shot quote requests against a connector and
// normalizes the responses. It performs no retries; retry policy belongs to
// the caller or the HTTP transport.
type Negotiator struct {
	connectorURL string
	timeout      time.Duration
	httpClient   *http.Client
}

// NewNegotiator creates a negotiator. connectorURL may be empty, in which
// case the quote endpoint is derived from each request's destination ledger.
// A nil httpClient falls back to a default client; the per-request timeout
// is enforced through the context either way.
func NewNegotiator(connectorURL string, timeout time.Duration, httpClient *http.Client) *Negotiator {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Negotiator{
		connectorURL: connectorURL,
		timeout:      timeout,
		httpClient:   httpClient,
	}
}

// Quote validates the request, performs exactly one negotiation exchange and
// returns the normalized quote. sourceLedger is the prefix of the ledger the
// client's plugin speaks for. Validation failures surface before any network
// access; network failures and non-2xx responses surface as QUOTE_FAILED
// wrapping the cause.
func (n *Negotiator) Quote(ctx context.Context, sourceLedger string, req *types.QuoteRequest) (*types.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := utils.ValidateLedger(req.DestinationLedger); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrInvalidQuoteRequest,
			Message: fmt.Sprintf("invalid destination ledger: %v", err),
			Err:     err,
		}
	}

	amount := req.SourceAmount
	if amount == "" {
		amount = req.DestinationAmount
	}
	if _, err := utils.ValidateAmount(amount); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrInvalidQuoteRequest,
			Message: fmt.Sprintf("invalid quote amount: %v", err),
			Err:     err,
		}
	}

	endpoint := n.quoteEndpoint(req.DestinationLedger)

	query := url.Values{}
	query.Set("source_ledger", sourceLedger)
	query.Set("destination_ledger", req.DestinationLedger)
	if req.SourceAmount != "" {
		query.Set("source_amount", req.SourceAmount)
	} else {
		query.Set("destination_amount", req.DestinationAmount)
	}

	resp, err := n.exchange(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	return normalize(req, resp), nil
}

// quoteEndpoint resolves the quote service URL: the configured connector
// endpoint when present, otherwise <destinationLedger>/quote. The
// destination ledger has already passed ValidateLedger.
func (n *Negotiator) quoteEndpoint(destinationLedger string) string {
	if n.connectorURL != "" {
		return n.connectorURL
	}
	return strings.TrimRight(destinationLedger, "/") + "/quote"
}

// exchange performs the single GET against the quote service.
func (n *Negotiator) exchange(ctx context.Context, endpoint string, query url.Values) (*types.QuoteResponse, error) {
	quoteCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(quoteCtx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrQuoteFailed,
			Message: fmt.Sprintf("failed to build quote request: %v", err),
			Err:     err,
		}
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := n.httpClient.Do(httpReq)
	if err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrQuoteFailed,
			Message: fmt.Sprintf("quote request failed: %v", err),
			Err:     err,
		}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrQuoteFailed,
			Message: fmt.Sprintf("failed to read quote response: %v", err),
			Err:     err,
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &types.ILPError{
			Code:    types.ErrQuoteFailed,
			Message: fmt.Sprintf("quote service returned status %d", httpResp.StatusCode),
			Data:    string(body),
		}
	}

	var resp types.QuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrQuoteFailed,
			Message: fmt.Sprintf("failed to decode quote response: %v", err),
			Err:     err,
		}
	}

	return &resp, nil
}

// normalize maps the connector's wire response onto the side of the request
// that was left open.
func normalize(req *types.QuoteRequest, resp *types.QuoteResponse) *types.Quote {
	if req.SourceAmount != "" {
		return &types.Quote{
			DestinationAmount: resp.DestinationAmount,
			ConnectorAccount:  resp.SourceConnectorAccount,
		}
	}

	return &types.Quote{
		SourceAmount:     resp.SourceAmount,
		ConnectorAccount: resp.SourceConnectorAccount,
	}
}
