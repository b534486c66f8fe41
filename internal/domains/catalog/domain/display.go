package domain

// TruncateLengths fixes the display widths used across the catalog UI.
var TruncateLengths = struct {
	CategoryName    int
	ProductName     int
	MenuDescription int
}{
	CategoryName:    18,
	ProductName:     35,
	MenuDescription: 80,
}

// Truncate shortens s to max runes plus an ellipsis. Strings at or under
// the limit are returned untouched. Counting runes keeps accented names
// from being cut mid-character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// DisplayName returns the truncated category label.
func (c Category) DisplayName() string {
	return Truncate(c.Name, TruncateLengths.CategoryName)
}

// DisplayName returns the truncated product label.
func (p Product) DisplayName() string {
	return Truncate(p.Name, TruncateLengths.ProductName)
}

// DisplayDescription returns the truncated menu description.
func (m Menu) DisplayDescription() string {
	return Truncate(m.Description, TruncateLengths.MenuDescription)
}
