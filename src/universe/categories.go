package universe

import (
	"sort"
	"strings"
)

// categorySymbols maps a category of the broad index to its members.
var categorySymbols = map[string][]string{
	"it":       {"INFY", "TCS", "HCLTECH", "WIPRO", "TECHM"},
	"banks":    {"HDFCBANK", "ICICIBANK", "SBIN", "KOTAKBANK", "AXISBANK", "INDUSINDBK"},
	"finance":  {"BAJFINANCE", "BAJAJFINSV", "SHRIRAMFIN", "JIOFIN", "HDFCLIFE", "SBILIFE"},
	"energy":   {"RELIANCE", "ONGC", "NTPC", "POWERGRID", "COALINDIA"},
	"auto":     {"MARUTI", "TATAMOTORS", "M&M", "BAJAJ-AUTO", "EICHERMOT", "HEROMOTOCO"},
	"pharma":   {"SUNPHARMA", "CIPLA", "DRREDDY", "APOLLOHOSP"},
	"fmcg":     {"HINDUNILVR", "ITC", "NESTLEIND", "TATACONSUM"},
	"metals":   {"TATASTEEL", "JSWSTEEL", "HINDALCO"},
	"infra":    {"LT", "ADANIPORTS", "ADANIENT", "ULTRACEMCO", "GRASIM"},
	"consumer": {"ASIANPAINT", "TITAN", "TRENT", "ETERNAL"},
	"telecom":  {"BHARTIARTL"},
	"defence":  {"BEL"},
}

// Categories returns the category names in alphabetical order.
func Categories() []string {
	names := make([]string, 0, len(categorySymbols))
	for name := range categorySymbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategorySymbols returns the members of a category. Names are case-insensitive.
func CategorySymbols(name string) ([]string, bool) {
	symbols, ok := categorySymbols[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return append([]string(nil), symbols...), true
}

// CategoryOf returns the category a symbol belongs to, or "".
func CategoryOf(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for name, symbols := range categorySymbols {
		for _, s := range symbols {
			if s == symbol {
				return name
			}
		}
	}
	return ""
}
