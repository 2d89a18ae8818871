package shipping

// Canonical addon codes. Carrier surcharge tables map their native codes onto
// these so configured AddonDefinitions can be priced from live quotes.
const (
	AddonSignatureRequired   = "signature_required"
	AddonAdultSignature      = "adult_signature"
	AddonInsurance           = "insurance"
	AddonSaturdayDelivery    = "saturday_delivery"
	AddonResidentialDelivery = "residential_delivery"
	AddonFuelSurcharge       = "fuel_surcharge"
	AddonRemoteArea          = "remote_area"
	AddonDeliveryArea        = "delivery_area"
	AddonDangerousGoods      = "dangerous_goods"
	AddonAdditionalHandling  = "additional_handling"
	AddonOversize            = "oversize"
	AddonOverweight          = "overweight"
	AddonDutiesPaid          = "duties_paid"
	AddonPaperlessTrade      = "paperless_trade"
	AddonDryIce              = "dry_ice"
	AddonPeakSurcharge       = "peak_surcharge"
	AddonCarbonNeutral       = "carbon_neutral"
)
