package ethapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/kestrel-wallet/kestreld/pkg/explorer"
	"github.com/kestrel-wallet/kestreld/pkg/httputil"
)

type ethapi struct {
	apiURL      string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter ratelimit.Limiter
}

// NewService returns a new eth API client as an explorer.Service interface.
// Calls are paced by a requests-per-second limiter and guarded by a circuit
// breaker that trips when most recent requests failed.
func NewService(apiURL string, requestsPerSecond int) (explorer.Service, error) {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	service := &ethapi{
		apiURL:      strings.TrimSuffix(apiURL, "/"),
		breaker:     newCircuitBreaker(),
		rateLimiter: ratelimit.New(requestsPerSecond),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *ethapi) healthCheck() error {
	_, err := e.getJSON(fmt.Sprintf("%s/eth/latestblock", e.apiURL))
	return err
}

func (e *ethapi) GetAccountsData(
	addresses []string,
) (map[string]explorer.AccountData, error) {
	url := fmt.Sprintf(
		"%s/eth/account/%s/balance", e.apiURL, strings.Join(addresses, ","),
	)
	body, err := e.getJSON(url)
	if err != nil {
		return nil, err
	}

	data := map[string]explorer.AccountData{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("invalid balance response: %w", err)
	}
	return data, nil
}

func (e *ethapi) GetAccountsTransactions(
	addresses []string,
) (map[string][]explorer.Transaction, error) {
	url := fmt.Sprintf(
		"%s/eth/account/%s", e.apiURL, strings.Join(addresses, ","),
	)
	body, err := e.getJSON(url)
	if err != nil {
		return nil, err
	}

	data := map[string]struct {
		Txns []explorer.Transaction `json:"txns"`
	}{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("invalid transactions response: %w", err)
	}

	txs := make(map[string][]explorer.Transaction, len(data))
	for addr, entry := range data {
		txs[addr] = entry.Txns
	}
	return txs, nil
}

func (e *ethapi) GetLatestBlock() (uint64, error) {
	body, err := e.getJSON(fmt.Sprintf("%s/eth/latestblock", e.apiURL))
	if err != nil {
		return 0, err
	}

	block := struct {
		Number uint64 `json:"number"`
	}{}
	if err := json.Unmarshal(body, &block); err != nil {
		return 0, fmt.Errorf("invalid block response: %w", err)
	}
	return block.Number, nil
}

func (e *ethapi) IsContractAddress(address string) (bool, error) {
	url := fmt.Sprintf("%s/eth/account/%s/isContract", e.apiURL, address)
	body, err := e.getJSON(url)
	if err != nil {
		return false, err
	}

	res := struct {
		Contract bool `json:"contract"`
	}{}
	if err := json.Unmarshal(body, &res); err != nil {
		return false, fmt.Errorf("invalid contract response: %w", err)
	}
	return res.Contract, nil
}

func (e *ethapi) GetFees() (*explorer.Fees, error) {
	body, err := e.getJSON(fmt.Sprintf("%s/eth/fees", e.apiURL))
	if err != nil {
		return nil, err
	}

	fees := &explorer.Fees{}
	if err := json.Unmarshal(body, fees); err != nil {
		return nil, fmt.Errorf("invalid fees response: %w", err)
	}
	return fees, nil
}

func (e *ethapi) BroadcastTransaction(txHex string) (string, error) {
	url := fmt.Sprintf("%s/eth/pushtx", e.apiURL)
	payload := map[string]string{"rawTx": txHex}
	bodyString, _ := json.Marshal(payload)

	body, err := e.request("POST", url, string(bodyString))
	if err != nil {
		return "", err
	}

	res := struct {
		TxHash string `json:"txHash"`
	}{}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("invalid pushtx response: %w", err)
	}
	return res.TxHash, nil
}

func (e *ethapi) getJSON(url string) ([]byte, error) {
	return e.request("GET", url, "")
}

func (e *ethapi) request(method, url, bodyString string) ([]byte, error) {
	e.rateLimiter.Take()

	body, err := e.breaker.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest(
			method, url, bodyString, map[string]string{
				"Content-Type": "application/json",
			},
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, newAPIError(status, resp)
		}
		return []byte(resp), nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "ethapi",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > 10 && ratio >= 0.6
		},
	})
}
