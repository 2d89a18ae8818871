package rating

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"carrier-rate-engine/internal/domain/shipping"

	jsoniter "github.com/json-iterator/go"
)

// QuoteCache stores successful per-carrier quote lists.
type QuoteCache interface {
	Get(ctx context.Context, key string) ([]shipping.RateQuote, bool, error)
	Set(ctx context.Context, key string, quotes []shipping.RateQuote, ttl time.Duration) error
	Flush(ctx context.Context) error
}

var canonical = jsoniter.ConfigCompatibleWithStandardLibrary

// CacheKey hashes the canonical request for one carrier. Documents and the
// caller reference do not change a price and are left out.
func CacheKey(carrier shipping.CarrierCode, req *shipping.ShipmentRequest) (string, error) {
	keyed := *req
	keyed.Reference = ""
	keyed.Documents = nil

	body, err := canonical.Marshal(keyed)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return "rates:" + string(carrier) + ":" + hex.EncodeToString(sum[:]), nil
}
