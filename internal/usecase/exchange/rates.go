package exchange

import (
	"context"
	"encoding/json"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	"github.com/humanistic-tech/exchange-service/internal/infrastructure/gateway"
)

// Card-denominated fiat aliases collapse to their base code for rate lookup.
var currencyAliases = map[string]string{
	"CARDRUB": "RUB",
	"TCSBRUB": "RUB",
	"SBERRUB": "RUB",
	"CARDUAH": "UAH",
}

// NormalizeCurrency maps card and bank-specific fiat codes to the base fiat
// code used in the gateway's rate list.
func NormalizeCurrency(code string) string {
	if base, ok := currencyAliases[code]; ok {
		return base
	}
	return code
}

// CardCurrency maps plain fiat codes to the gateway's card channel code.
// Outbound only: applied when RUB/UAH is the transacted currency of a
// create-call, never to rate lookups.
func CardCurrency(code string) string {
	if code == "RUB" || code == "UAH" {
		return "CARD" + code
	}
	return code
}

// RateService computes exchange rates and viable routes from live gateway
// quotes and balances.
type RateService struct {
	gw *gateway.Client
}

func NewRateService(gw *gateway.Client) *RateService {
	return &RateService{gw: gw}
}

func (s *RateService) Rates(ctx context.Context) ([]gateway.RateRecord, error) {
	return s.gw.Rates(ctx)
}

func (s *RateService) Balances(ctx context.Context) (map[string]gateway.BalanceInfo, error) {
	return s.gw.Balances(ctx)
}

func (s *RateService) Calculate(ctx context.Context) (json.RawMessage, error) {
	return s.gw.Calculate(ctx)
}

// ResolvePairRate finds the rate between two currencies, matching the pair in
// either direction. A forward match quotes the buy rate as the multiplier;
// a reverse match quotes the reciprocal of the sell rate. rates may be passed
// in to avoid a redundant fetch inside one routing computation; pass nil to
// fetch fresh quotes.
func (s *RateService) ResolvePairRate(ctx context.Context, fromCode, toCode string, rates []gateway.RateRecord) (*domain.RateInfo, error) {
	fromCurrency := NormalizeCurrency(fromCode)
	toCurrency := NormalizeCurrency(toCode)

	if rates == nil {
		fetched, err := s.Rates(ctx)
		if err != nil {
			return nil, err
		}
		rates = fetched
	}

	for _, record := range rates {
		forward := record.CurrencyFrom == fromCurrency && record.CurrencyTo == toCurrency
		reverse := record.CurrencyFrom == toCurrency && record.CurrencyTo == fromCurrency
		if !forward && !reverse {
			continue
		}

		if forward {
			return &domain.RateInfo{
				Rate:          record.RateBuy,
				Multiplier:    record.RateBuy,
				QuoteCurrency: record.CurrencyRate,
			}, nil
		}
		return &domain.RateInfo{
			Rate:          record.RateSell,
			Multiplier:    1 / record.RateSell,
			QuoteCurrency: record.CurrencyRate,
		}, nil
	}

	return nil, domain.ErrRateNotFound
}

// ComputeRoutes cross-products every known currency against every currency
// with a positive balance on the destination side. Pairs without a resolvable
// rate are skipped, not treated as failures of the whole computation.
func (s *RateService) ComputeRoutes(ctx context.Context) ([]domain.Route, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := s.Rates(ctx)
	if err != nil {
		return nil, err
	}

	routes := make([]domain.Route, 0)
	for _, fromInfo := range balances {
		for _, toInfo := range balances {
			if toInfo.Balance <= 0 {
				continue
			}
			if fromInfo.CurrencyType == toInfo.CurrencyType {
				continue
			}

			rateInfo, err := s.ResolvePairRate(ctx, fromInfo.CurrencyType, toInfo.CurrencyType, rates)
			if err != nil {
				continue
			}

			routes = append(routes, domain.Route{
				From:      fromInfo.CurrencyType,
				To:        toInfo.CurrencyType,
				MaxAmount: toInfo.Balance / rateInfo.Multiplier,
				Rate:      *rateInfo,
			})
		}
	}

	return routes, nil
}
