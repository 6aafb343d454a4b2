package shop

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ID identifies a product or cart item.
type ID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Price is a dollar amount.
type Price float64

// UnmarshalJSON never fails; values that are not numbers or numeric strings
// become 0.
func (p *Price) UnmarshalJSON(data []byte) error {
	*p = ParsePrice(data)
	return nil
}

// ParsePrice coerces a raw JSON value into a price.
func ParsePrice(data []byte) Price {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Price(f)
}

var (
	printerOnce sync.Once
	printer     *message.Printer
)

func usd() *message.Printer {
	printerOnce.Do(func() {
		printer = message.NewPrinter(language.AmericanEnglish)
	})
	return printer
}

// String formats p as US dollars with up to two fraction digits.
func (p Price) String() string {
	cents := math.Round(float64(p) * 100)
	if math.Mod(cents, 100) == 0 {
		return formatWhole(cents / 100)
	}
	s := usd().Sprintf("%.2f", math.Abs(cents/100))
	s = strings.TrimRight(s, "0")
	if cents < 0 {
		return "-$" + s
	}
	return "$" + s
}

// Rounded formats p as whole US dollars.
func (p Price) Rounded() string {
	return formatWhole(math.Round(float64(p)))
}

func formatWhole(v float64) string {
	s := usd().Sprintf("%d", int64(math.Abs(v)))
	if v < 0 {
		return "-$" + s
	}
	return "$" + s
}
