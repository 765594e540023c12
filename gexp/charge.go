package gexp

// Charge tags a factor as unconjugated (Plus), conjugated (Minus), or
// index-only (Neutral).
type Charge int8

const (
	Neutral Charge = 0
	Plus    Charge = 1
	Minus   Charge = -1
)

// Flip swaps Plus and Minus and leaves Neutral alone.
func (c Charge) Flip() Charge {
	return -c
}

func (c Charge) Tex() string {
	switch c {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return `\pm`
}

func (c Charge) String() string {
	return c.Tex()
}

func (c Charge) GoString() string {
	switch c {
	case Plus:
		return "gexp.Plus"
	case Minus:
		return "gexp.Minus"
	}
	return "gexp.Neutral"
}
