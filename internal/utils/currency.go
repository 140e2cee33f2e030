package utils

import (
	"fmt"
	"math"
	"strings"
)

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var SupportedCurrencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound"},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan"},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real"},
	"MXN": {Code: "MXN", Symbol: "$", Name: "Mexican Peso"},
	"CHF": {Code: "CHF", Symbol: "CHF", Name: "Swiss Franc"},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar"},
	"AED": {Code: "AED", Symbol: "د.إ", Name: "UAE Dirham"},
	"NGN": {Code: "NGN", Symbol: "₦", Name: "Nigerian Naira"},
	"ZAR": {Code: "ZAR", Symbol: "R", Name: "South African Rand"},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "South Korean Won"},
}

// NormalizeCurrencyCode upper-cases and trims a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCurrencyCode reports whether code has the ISO 4217 shape (three letters).
// It does not require the code to be in SupportedCurrencies.
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func FormatCurrency(amount float64, currencyCode string) string {
	symbol := currencyCode + " "
	if currency, exists := SupportedCurrencies[currencyCode]; exists {
		symbol = currency.Symbol
	}

	switch currencyCode {
	case "JPY", "KRW": // no minor units
		return fmt.Sprintf("%s%.0f", symbol, math.Round(amount))
	default:
		return fmt.Sprintf("%s%.2f", symbol, math.Round(amount*100)/100)
	}
}

func RoundCurrency(amount float64, currencyCode string) float64 {
	switch currencyCode {
	case "JPY", "KRW":
		return math.Round(amount)
	default:
		return math.Round(amount*100) / 100
	}
}
