package libgexp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// CoefficientKind enumerates the scalar coefficient variants.  Composite kinds
// are named by the product of their elements, read left to right.
type CoefficientKind uint8

const (
	CoefS CoefficientKind = iota + 1
	CoefI
	CoefTheta
	CoefCalM
	CoefSTheta
	CoefCalMS
	CoefThetaCalM
	CoefThetaCalMS
	CoefSThetaCalMS
	CoefSThetaTheta
	CoefThetaCalMSTheta
	CoefSThetaCalMSTheta
	CoefSThetaThetaCalMS
	CoefThetaCalMSThetaCalM
	CoefThetaCalMSThetaCalMS
	CoefSThetaCalMSThetaCalMS
	numCoefficientKinds
)

type coefElem uint8

const (
	elemS coefElem = iota
	elemTheta
	elemCalM
)

type coefKindInfo struct {
	name         string
	elems        []coefElem
	transposable bool
	symmetric    bool // equal under simultaneous swap of indices and charges
}

var coefKinds = [numCoefficientKinds]coefKindInfo{
	CoefS:                     {"S", nil, true, false},
	CoefI:                     {"I", nil, true, false},
	CoefTheta:                 {"Theta", []coefElem{elemTheta}, false, false},
	CoefCalM:                  {"CalM", []coefElem{elemCalM}, true, true},
	CoefSTheta:                {"STheta", []coefElem{elemS, elemTheta}, true, true},
	CoefCalMS:                 {"CalMS", []coefElem{elemCalM, elemS}, false, false},
	CoefThetaCalM:             {"ThetaCalM", []coefElem{elemTheta, elemCalM}, false, false},
	CoefThetaCalMS:            {"ThetaCalMS", []coefElem{elemTheta, elemCalM, elemS}, false, false},
	CoefSThetaCalMS:           {"SThetaCalMS", []coefElem{elemS, elemTheta, elemCalM, elemS}, true, true},
	CoefSThetaTheta:           {"SThetaTheta", []coefElem{elemS, elemTheta, elemTheta}, false, false},
	CoefThetaCalMSTheta:       {"ThetaCalMSTheta", []coefElem{elemTheta, elemCalM, elemS, elemTheta}, false, false},
	CoefSThetaCalMSTheta:      {"SThetaCalMSTheta", []coefElem{elemS, elemTheta, elemCalM, elemS, elemTheta}, false, false},
	CoefSThetaThetaCalMS:      {"SThetaThetaCalMS", []coefElem{elemS, elemTheta, elemTheta, elemCalM, elemS}, false, false},
	CoefThetaCalMSThetaCalM:   {"ThetaCalMSThetaCalM", []coefElem{elemTheta, elemCalM, elemS, elemTheta, elemCalM}, false, false},
	CoefThetaCalMSThetaCalMS:  {"ThetaCalMSThetaCalMS", []coefElem{elemTheta, elemCalM, elemS, elemTheta, elemCalM, elemS}, false, false},
	CoefSThetaCalMSThetaCalMS: {"SThetaCalMSThetaCalMS", []coefElem{elemS, elemTheta, elemCalM, elemS, elemTheta, elemCalM, elemS}, true, true},
}

func (kind CoefficientKind) info() *coefKindInfo {
	if kind == 0 || kind >= numCoefficientKinds {
		panic(fmt.Sprintf("unknown coefficient kind %d", uint8(kind)))
	}
	return &coefKinds[kind]
}

func (kind CoefficientKind) String() string {
	if kind == 0 || kind >= numCoefficientKinds {
		return fmt.Sprintf("CoefficientKind(%d)", uint8(kind))
	}
	return coefKinds[kind].name
}

// IsCharged is true for every kind except S and I.
func (kind CoefficientKind) IsCharged() bool {
	return kind != CoefS && kind != CoefI
}

func (kind CoefficientKind) IsTransposable() bool {
	return kind.info().transposable
}

// Coefficient is an immutable scalar factor indexed by (i, j).
type Coefficient struct {
	kind    CoefficientKind
	charges [2]gexp.Charge
	i, j    gexp.Symbol
}

func S(i, j gexp.Symbol) Coefficient {
	return Coefficient{kind: CoefS, i: i, j: j}
}

func I(i, j gexp.Symbol) Coefficient {
	return Coefficient{kind: CoefI, i: i, j: j}
}

func Theta(c1, c2 gexp.Charge, i, j gexp.Symbol) Coefficient {
	return NewCoefficient(CoefTheta, c1, c2, i, j)
}

func CalM(c1, c2 gexp.Charge, i, j gexp.Symbol) Coefficient {
	return NewCoefficient(CoefCalM, c1, c2, i, j)
}

func STheta(c1, c2 gexp.Charge, i, j gexp.Symbol) Coefficient {
	return NewCoefficient(CoefSTheta, c1, c2, i, j)
}

// NewCoefficient constructs a coefficient of any kind.  Charges are ignored
// for the uncharged kinds S and I.
func NewCoefficient(kind CoefficientKind, c1, c2 gexp.Charge, i, j gexp.Symbol) Coefficient {
	kind.info()
	c := Coefficient{kind: kind, i: i, j: j}
	if kind.IsCharged() {
		c.charges = [2]gexp.Charge{c1, c2}
	}
	return c
}

func (c Coefficient) Kind() CoefficientKind { return c.kind }
func (c Coefficient) I() gexp.Symbol { return c.i }
func (c Coefficient) J() gexp.Symbol { return c.j }
func (c Coefficient) Indices() [2]gexp.Symbol { return [2]gexp.Symbol{c.i, c.j} }
func (c Coefficient) Charges() [2]gexp.Charge { return c.charges }
func (c Coefficient) Is(kind CoefficientKind) bool { return c.kind == kind }

func (c Coefficient) HasIndex(s gexp.Symbol) bool {
	return c.i == s || c.j == s
}

func (c Coefficient) swapped() Coefficient {
	return Coefficient{
		kind:    c.kind,
		charges: [2]gexp.Charge{c.charges[1], c.charges[0]},
		i:       c.j,
		j:       c.i,
	}
}

// Equal compares kind, charges, and indices.  Symmetric kinds (calM and the
// S-symmetric composites) are also equal to their simultaneous index and
// charge swap.
func (c Coefficient) Equal(other Coefficient) bool {
	if c == other {
		return true
	}
	return c.kind == other.kind && c.kind.info().symmetric && c.swapped() == other
}

// oriented returns whichever of c and its swap orders first, so that equal
// symmetric coefficients share one orientation.
func (c Coefficient) oriented() Coefficient {
	if c.kind.info().symmetric {
		if s := c.swapped(); compareCoefficients(s, c) < 0 {
			return s
		}
	}
	return c
}

// Transpose swaps the indices (and charges) of a transposable coefficient.
func (c Coefficient) Transpose() (Coefficient, error) {
	if !c.kind.IsTransposable() {
		return c, errors.Wrapf(gexp.ErrNotTransposable, "%v", c.kind)
	}
	return c.swapped(), nil
}

func (c Coefficient) MustTranspose() Coefficient {
	t, err := c.Transpose()
	if err != nil {
		panic(err)
	}
	return t
}

func (c Coefficient) chargeTex() string {
	return `\p{` + c.charges[0].Tex() + ", " + c.charges[1].Tex() + "}"
}

func (c Coefficient) Tex() string {
	switch c.kind {
	case CoefS:
		return "S_{" + c.i.Tex() + " " + c.j.Tex() + "}"
	case CoefI:
		return "I_{" + c.i.Tex() + " " + c.j.Tex() + "}"
	}

	ij := "_{" + c.i.Tex() + c.j.Tex() + "}"
	cs := c.chargeTex()
	elems := c.kind.info().elems

	var b strings.Builder
	for _, e := range elems {
		switch e {
		case elemS:
			b.WriteString("S")
		case elemTheta:
			b.WriteString(`\Theta^{` + cs + "}")
		case elemCalM:
			b.WriteString(`\M^{` + cs + "}")
		}
	}
	if len(elems) == 1 {
		return b.String() + ij
	}
	return `\p{` + b.String() + "}" + ij
}

func (c Coefficient) String() string {
	return c.Tex()
}

func (c Coefficient) GoString() string {
	switch c.kind {
	case CoefS:
		return fmt.Sprintf("libgexp.S(%#v, %#v)", c.i, c.j)
	case CoefI:
		return fmt.Sprintf("libgexp.I(%#v, %#v)", c.i, c.j)
	case CoefTheta, CoefCalM, CoefSTheta:
		return fmt.Sprintf("libgexp.%v(%#v, %#v, %#v, %#v)", c.kind, c.charges[0], c.charges[1], c.i, c.j)
	}
	return fmt.Sprintf("libgexp.NewCoefficient(libgexp.Coef%v, %#v, %#v, %#v, %#v)", c.kind, c.charges[0], c.charges[1], c.i, c.j)
}
