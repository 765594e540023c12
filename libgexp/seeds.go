package libgexp

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// Seed describes a named starting graph for a leading-term search.
type Seed struct {
	Name        string
	Description string
	Order       int // order a search from this seed usually targets
	Build       func() *Graph
}

var (
	a1 = gexp.A(1)
	a2 = gexp.A(2)
	a3 = gexp.A(3)
	a4 = gexp.A(4)
)

var seedCatalog = []Seed{
	{
		Name:        "calM",
		Description: `<M E_{a_1} M E_{a_1}>, fused into a single calM coefficient`,
		Order:       1,
		Build: func() *Graph {
			return MustGraph(NewTrace(M(gexp.Plus), E(a1), M(gexp.Plus), E(a1)))
		},
	},
	{
		Name:        "light-weight",
		Description: `<\G E_{a_1}>`,
		Order:       2,
		Build: func() *Graph {
			return MustGraph(NewTrace(WtG(gexp.Plus), E(a1)))
		},
	},
	{
		Name:        "light-weight-pair",
		Description: `<\G E_{a_1}> <\G^* E_{a_2}>`,
		Order:       2,
		Build: func() *Graph {
			return MustGraph(
				NewTrace(WtG(gexp.Plus), E(a1)),
				NewTrace(WtG(gexp.Minus), E(a2)),
			)
		},
	},
	{
		Name:        "g-loop-2",
		Description: `<G E_{a_1} G^* E_{a_2}>`,
		Order:       1,
		Build: func() *Graph {
			return MustGraph(NewTrace(G(gexp.Plus), E(a1), G(gexp.Minus), E(a2)))
		},
	},
	{
		Name:        "g-loop-2-same",
		Description: `<G E_{a_1} G E_{a_2}>`,
		Order:       1,
		Build: func() *Graph {
			return MustGraph(NewTrace(G(gexp.Plus), E(a1), G(gexp.Plus), E(a2)))
		},
	},
	{
		Name:        "g-loop-3",
		Description: `<G E_{a_1} G E_{a_2} G^* E_{a_3}>`,
		Order:       2,
		Build: func() *Graph {
			return MustGraph(NewTrace(G(gexp.Plus), E(a1), G(gexp.Plus), E(a2), G(gexp.Minus), E(a3)))
		},
	},
	{
		Name:        "g-loop-4",
		Description: `<G E_{a_1} G^* E_{a_2} G E_{a_3} G^* E_{a_4}>`,
		Order:       3,
		Build: func() *Graph {
			return MustGraph(NewTrace(
				G(gexp.Plus), E(a1), G(gexp.Minus), E(a2),
				G(gexp.Plus), E(a3), G(gexp.Minus), E(a4),
			))
		},
	},
}

// Seeds returns the registered seeds sorted by name.
func Seeds() []Seed {
	out := append([]Seed(nil), seedCatalog...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// LookupSeed returns the seed with the given name.
func LookupSeed(name string) (Seed, error) {
	for _, s := range seedCatalog {
		if s.Name == name {
			return s, nil
		}
	}
	return Seed{}, errors.Wrapf(gexp.ErrUnknownSeed, "%q", name)
}

// SeedGraph builds the seed graph with the given name.
func SeedGraph(name string) (*Graph, error) {
	s, err := LookupSeed(name)
	if err != nil {
		return nil, err
	}
	return s.Build(), nil
}
