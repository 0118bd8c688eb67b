package enums

// DiscountType selects the coupon discount formula.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (d DiscountType) String() string {
	return string(d)
}

// Valid reports whether the value is a known discount type.
func (d DiscountType) Valid() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixed
}
