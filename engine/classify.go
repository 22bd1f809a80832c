package engine

// =============================================================================
// INTERVAL CLASSIFIER
// =============================================================================

// Type tags recognized from the tracking source. Matching is case-sensitive;
// any other value, including an empty tag, classifies as ordinary work.
const (
	TypeBreak   = "BREAK"
	TypeHoliday = "HOLIDAY"
	TypeTimeOff = "TIME_OFF"
)

// Category is an interval's processing class.
type Category int

const (
	CategoryWork Category = iota
	CategoryBreak
	CategoryHoliday
	CategoryTimeOff
)

func (c Category) String() string {
	switch c {
	case CategoryBreak:
		return "break"
	case CategoryHoliday:
		return "holiday"
	case CategoryTimeOff:
		return "timeOff"
	default:
		return "work"
	}
}

// IsPTO reports whether the category is paid time off (holiday or time-off).
func (c Category) IsPTO() bool {
	return c == CategoryHoliday || c == CategoryTimeOff
}

// CountsTowardCapacity reports whether the category's hours feed the daily
// capacity accumulator used by tail attribution. Only ordinary work does;
// breaks and PTO still contribute to total recorded hours and to
// billable/non-billable bookkeeping.
func (c Category) CountsTowardCapacity() bool {
	return c == CategoryWork
}

// Classify tags one interval by its type tag.
func Classify(iv *Interval) Category {
	switch iv.Type {
	case TypeBreak:
		return CategoryBreak
	case TypeHoliday:
		return CategoryHoliday
	case TypeTimeOff:
		return CategoryTimeOff
	default:
		return CategoryWork
	}
}
