package gexp_test

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTerm is a TermState that encodes as its name.
type stubTerm struct {
	name          string
	order         int
	deterministic bool
}

func (X stubTerm) IsDeterministic() bool { return X.deterministic }
func (X stubTerm) Order() int            { return X.order }
func (X stubTerm) Tex() string           { return X.name }

func (X stubTerm) AppendEncoding(out []byte) ([]byte, error) {
	return append(out, X.name...), nil
}

func (X stubTerm) WriteAsString(out io.Writer, opts gexp.PrintOpts) {
	if opts.ShowOrder {
		io.WriteString(out, strconv.Itoa(X.order)+",")
	}
	io.WriteString(out, X.name)
}

// keySet is a TermAdder keyed on encodings.
type keySet struct {
	mu   sync.Mutex
	keys map[string]struct{}
	fail string
}

func (set *keySet) TryAddTerm(X gexp.TermState) (bool, error) {
	key, _ := X.AppendEncoding(nil)
	if string(key) == set.fail {
		return false, errors.New("refused")
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	if _, exists := set.keys[string(key)]; exists {
		return false, nil
	}
	set.keys[string(key)] = struct{}{}
	return true, nil
}

type nopCloser struct {
	bytes.Buffer
	closed bool
}

func (w *nopCloser) Close() error {
	w.closed = true
	return nil
}

func stubTerms() []gexp.TermState {
	return []gexp.TermState{
		stubTerm{"x", 0, true},
		stubTerm{"y", 1, true},
		stubTerm{"z", 1, false},
		stubTerm{"x", 0, true},
		stubTerm{"w", 3, true},
	}
}

func TestStreamCollect(t *testing.T) {
	terms := gexp.StreamTerms(stubTerms()...).Collect()
	require.Len(t, terms, 5)
	assert.Equal(t, "z", terms[2].Tex())

	assert.Equal(t, 5, gexp.StreamTerms(stubTerms()...).PullAll())
	assert.Equal(t, 0, gexp.StreamTerms().PullAll())
}

func TestStreamAddTo(t *testing.T) {
	set := &keySet{keys: map[string]struct{}{}, fail: "w"}
	terms := gexp.StreamTerms(stubTerms()...).AddTo(set).Collect()

	names := make([]string, len(terms))
	for i, X := range terms {
		names[i] = X.Tex()
	}
	assert.Equal(t, []string{"x", "y", "z"}, names)
	assert.Len(t, set.keys, 3)
}

func TestStreamSelect(t *testing.T) {
	sel := gexp.TermSelector{
		MinOrder:          1,
		DeterministicOnly: true,
	}
	terms := gexp.StreamTerms(stubTerms()...).SelectFromStream(sel).Collect()
	require.Len(t, terms, 2)
	assert.Equal(t, "y", terms[0].Tex())
	assert.Equal(t, "w", terms[1].Tex())

	sel.MaxOrder = 2
	assert.Equal(t, 1, gexp.StreamTerms(stubTerms()...).SelectFromStream(sel).PullAll())

	limited := gexp.TermSelector{Limit: 2}
	assert.Equal(t, 2, gexp.StreamTerms(stubTerms()...).SelectFromStream(limited).PullAll())

	all := gexp.DefaultTermSelector
	assert.Equal(t, 5, gexp.StreamTerms(stubTerms()...).SelectFromStream(all).PullAll())
}

func TestStreamPrint(t *testing.T) {
	out := &nopCloser{}
	n := gexp.StreamTerms(stubTerms()[:2]...).Print(out, gexp.PrintOpts{
		Label:     "run",
		ShowOrder: true,
	}).PullAll()

	assert.Equal(t, 2, n)
	assert.True(t, out.closed)
	assert.Equal(t, "run,000001,0,x\nrun,000002,1,y\n", out.String())

	out = &nopCloser{}
	gexp.StreamTerms(stubTerms()[:1]...).Print(out, gexp.PrintOpts{Tex: true, WithMacros: true}).PullAll()
	assert.True(t, strings.HasPrefix(out.String(), gexp.TexMacros))
}

func TestTexWithMacros(t *testing.T) {
	s := gexp.TexWithMacros(stubTerm{name: "S_{a_1 b_1}"})
	assert.True(t, strings.HasPrefix(s, `\gdef\avg`))
	assert.True(t, strings.HasSuffix(s, " S_{a_1 b_1}"))
}
