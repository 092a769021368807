package format

import (
	"fmt"
	"strings"
	"time"
)

// currencySymbols maps supported ISO codes to display symbols. Unknown
// codes fall back to the code itself.
var currencySymbols = map[string]string{
	"ZAR": "R",
	"USD": "$",
	"EUR": "€",
}

// Amount formats minor units as a display string, e.g. 123456 ZAR
// becomes "R 1,234.56".
func Amount(minor int64, currency string) string {
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency)
	}

	neg := minor < 0
	if neg {
		minor = -minor
	}
	whole := minor / 100
	cents := minor % 100

	return fmt.Sprintf("%s%s %s.%02d", signPrefix(neg), symbol, groupThousands(whole), cents)
}

func signPrefix(neg bool) string {
	if neg {
		return "-"
	}
	return ""
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Date renders dates the way the web UI and emails show them.
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
