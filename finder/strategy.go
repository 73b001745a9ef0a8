package finder

import (
	"fmt"

	"modefind/internal/errors"
)

// Strategy picks the answer from a completed tally.  Implementations
// differ only in how they detect a tie; all of them agree on every
// input.
type Strategy interface {
	Name() string
	Resolve(base int32, c Counts) int32
}

// Forward scans buckets 1..6 in order, keeping the first bucket at the
// maximum.  A second bucket at the maximum settles it as a tie.
type Forward struct{}

func (Forward) Name() string { return "forward" }

func (Forward) Resolve(base int32, c Counts) int32 {
	m := c.Max()
	ans := int32(0)
	found := false
	for i := 1; i <= Buckets; i++ {
		if c[i] != m {
			continue
		}
		if found {
			return Tie
		}
		ans = base + int32(i)
		found = true
	}
	return ans
}

// Bidirectional locates the first maximum from the front and the first
// maximum from the back over all seven slots, slot 0 included.  The
// answer is unique only when both searches land on the same slot.  An
// empty tally puts the front maximum on slot 0 and the back one on slot
// 6, so it reports a tie.
type Bidirectional struct{}

func (Bidirectional) Name() string { return "bidirectional" }

func (Bidirectional) Resolve(base int32, c Counts) int32 {
	front := 0
	for i := 1; i < len(c); i++ {
		if c[i] > c[front] {
			front = i
		}
	}
	back := len(c) - 1
	for i := len(c) - 2; i >= 0; i-- {
		if c[i] > c[back] {
			back = i
		}
	}
	if front != back {
		return Tie
	}
	return base + int32(front)
}

// Strategies lists the names accepted by StrategyByName.
var Strategies = []string{"forward", "bidirectional"} //nolint:gochecknoglobals

// StrategyByName returns the strategy registered under name.  The empty
// name selects Forward.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "forward":
		return Forward{}, nil
	case "bidirectional":
		return Bidirectional{}, nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %v)", errors.ErrUnknownStrategy, name, Strategies)
	}
}

// Result is the full outcome of one evaluation.
type Result struct {
	Base   int32
	Mode   int32
	Tie    bool
	Counts Counts
}

// Finder evaluates queries with a fixed strategy.  The zero value uses
// Forward.
type Finder struct {
	Strategy Strategy
}

var defaultFinder = &Finder{Strategy: Forward{}} //nolint:gochecknoglobals

// New returns a Finder using s, or Forward when s is nil.
func New(s Strategy) *Finder {
	if s == nil {
		s = Forward{}
	}
	return &Finder{Strategy: s}
}

func (f *Finder) strategy() Strategy {
	if f == nil || f.Strategy == nil {
		return Forward{}
	}
	return f.Strategy
}

// Find is FindMode with the finder's strategy.
func (f *Finder) Find(flag int32, seq []int32, size int32) int32 {
	c := Tally(flag, prefix(seq, size))
	return f.strategy().Resolve(Base(flag), c)
}

// Evaluate is Find that also reports the tally.  Tie is set whenever
// the sentinel was produced by a tie rather than by a genuine base+i.
func (f *Finder) Evaluate(flag int32, seq []int32, size int32) Result {
	c := Tally(flag, prefix(seq, size))
	base := Base(flag)
	return Result{
		Base:   base,
		Mode:   f.strategy().Resolve(base, c),
		Tie:    c.Winners() != 1,
		Counts: c,
	}
}
