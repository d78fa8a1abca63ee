package simulation

import "fmt"

// Tickers builds the symbol table prefix0 .. prefix{n-1}
func Tickers(prefix string, n int) []string {
	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return symbols
}
