package request

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
)

// FileInvoiceGenerator serves invoices rendered ahead of time into Dir as
// <reference>.pdf.
type FileInvoiceGenerator struct {
	Dir string
}

func (g FileInvoiceGenerator) Generate(_ context.Context, req *shipping.ShipmentRequest) (shipping.DocumentImage, error) {
	ref := strings.TrimSpace(req.Reference)
	if ref == "" || strings.ContainsAny(ref, `/\`) {
		return shipping.DocumentImage{}, fmt.Errorf("invalid invoice reference %q", req.Reference)
	}

	path := filepath.Join(g.Dir, ref+".pdf")
	if _, err := os.Stat(path); err != nil {
		return shipping.DocumentImage{}, fmt.Errorf("invoice for %s: %w", ref, err)
	}
	return shipping.DocumentImageFromFile(path, DocumentTypeInvoice)
}
