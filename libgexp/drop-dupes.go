package libgexp

import (
	"bytes"
	"hash/maphash"

	"github.com/stevenktruong/graph-expansion/gexp"
)

// dropDupes is a single-goroutine TermAdder that remembers the canonical
// encoding of every term it has seen.  Encodings are packed into pooled
// buffers so that large searches don't allocate per term.
type dropDupes struct {
	hashMap   map[uint64][]byte
	hasher    maphash.Hash
	bufPool   []byte
	bufPoolSz int
	opts      DropDupeOpts
}

const DefaultPoolSz = 32 * 1024

type DropDupeOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// DropDupes is a TermAdder that can be reset and reused.
type DropDupes interface {
	gexp.TermAdder
	Len() int
	Reset()
	Close()
}

func NewDropDupes(opts DropDupeOpts) DropDupes {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return &dropDupes{
		hashMap: make(map[uint64][]byte),
		opts:    opts,
	}
}

func (cat *dropDupes) Len() int {
	return len(cat.hashMap)
}

func (cat *dropDupes) Reset() {
	cat.bufPoolSz = 0
	for k := range cat.hashMap {
		delete(cat.hashMap, k)
	}
}

func (cat *dropDupes) Close() {
	cat.Reset()
	cat.hashMap = nil
}

func (cat *dropDupes) TryAddTerm(X gexp.TermState) (bool, error) {
	var keyBuf [512]byte
	Xkey, err := X.AppendEncoding(keyBuf[:0])
	if err != nil {
		return false, err
	}

	cat.hasher.Reset()
	cat.hasher.Write(Xkey)
	hash := cat.hasher.Sum64()

	existing, found := cat.hashMap[hash]
	for found {
		if bytes.Equal(existing, Xkey) {
			return false, nil
		}
		hash++
		existing, found = cat.hashMap[hash]
	}

	// New entry: keep a copy of the key in the current pool, starting a new
	// pool when this one is full.
	pos := cat.bufPoolSz
	itemLen := len(Xkey)
	if pos+itemLen > cap(cat.bufPool) {
		allocSz := max(cat.opts.PoolSz, itemLen)
		cat.bufPool = make([]byte, allocSz)
		cat.bufPoolSz = 0
		pos = 0
	}

	cat.hashMap[hash] = append(cat.bufPool[pos:pos], Xkey...)
	cat.bufPoolSz += itemLen
	return true, nil
}
