package fakeapi

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"allowance-client/internal/domain"
)

var (
	minAmount = decimal.NewFromInt(10)
	maxAmount = decimal.NewFromInt(10000)

	errNotANumber     = errors.New("not a plain decimal number")
	errTooManyDecimal = errors.New("more than 2 decimal places")
)

// feePercent devuelve la comision en porcentaje: GBP 10, ZAR 20, resto 15.
func feePercent(currency string) decimal.Decimal {
	switch currency {
	case "GBP":
		return decimal.NewFromInt(10)
	case "ZAR":
		return decimal.NewFromInt(20)
	default:
		return decimal.NewFromInt(15)
	}
}

// parseAmount acepta solo notacion decimal plana con hasta 2 decimales.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, errNotANumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errNotANumber
	}
	if d.Exponent() < -2 {
		return decimal.Decimal{}, errTooManyDecimal
	}
	return d, nil
}

// rateFromFloat fija la tasa a 4 decimales para que 0.74 no arrastre error binario.
func rateFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(4)
}

func fixed(d decimal.Decimal, places int32) domain.Amount {
	return domain.Amount(d.StringFixed(places))
}

// calculate aplica comision y conversion. La comision se descuenta antes de
// convertir; los montos se redondean alejandose de cero al centavo.
func calculate(amount decimal.Decimal, currency string, rate decimal.Decimal) domain.Calculation {
	pct := feePercent(currency)
	fee := amount.Mul(pct).Shift(-2)
	afterFee := amount.Sub(fee)
	final := afterFee.Mul(rate)

	return domain.Calculation{
		AmountUSD:      fixed(amount, 2),
		TargetCurrency: currency,
		ExchangeRate:   fixed(rate, 4),
		FeePercentage:  fixed(pct, 2),
		FeeAmount:      fixed(fee.RoundUp(2), 2),
		AmountAfterFee: fixed(afterFee.RoundUp(2), 2),
		FinalAmount:    fixed(final.RoundUp(2), 2),
	}
}
