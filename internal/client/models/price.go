package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// unknownPriceSentinel is the wire representation of "price not known yet".
// The backend writes -1 (or null) into the price column until a call
// completes; locally we keep a tagged value instead of the magic number.
const unknownPriceSentinel = -1

// Price is either unknown or a concrete quoted amount in whole dollars.
// The zero value is "unknown".
type Price struct {
	amount int64
	known  bool
}

// PriceOf returns a known price.
func PriceOf(amount int64) Price {
	return Price{amount: amount, known: true}
}

// UnknownPrice returns the "not quoted yet" value.
func UnknownPrice() Price {
	return Price{}
}

// Known reports whether a quote has been written back by the backend.
func (p Price) Known() bool {
	return p.known
}

// Amount returns the quoted amount; ok is false while the price is unknown.
func (p Price) Amount() (amount int64, ok bool) {
	return p.amount, p.known
}

func (p Price) String() string {
	if !p.known {
		return "pending"
	}
	return fmt.Sprintf("$%d", p.amount)
}

// MarshalJSON writes the backend's sentinel form so rows round-trip
// byte-compatibly with what the server stores.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.known {
		return json.Marshal(unknownPriceSentinel)
	}
	return json.Marshal(p.amount)
}

// UnmarshalJSON accepts null, the -1 sentinel, or a concrete amount.
func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = UnknownPrice()
		return nil
	}

	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == unknownPriceSentinel {
		*p = UnknownPrice()
		return nil
	}
	*p = PriceOf(v)
	return nil
}
