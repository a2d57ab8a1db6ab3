package order

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
)

// NumberPattern is the public order number format used by lookups.
var NumberPattern = regexp.MustCompile(`^PO-\d{8}-\d{4,5}$`)

func ValidNumber(s string) bool {
	return NumberPattern.MatchString(s)
}

type NumberGenerator interface {
	Next() string
}

type NumberPolicy string

const (
	PolicyCounter NumberPolicy = "counter"
	PolicyRandom  NumberPolicy = "random"
)

const (
	dateLayout  = "20060102"
	maxSequence = 99999
)

func NewNumberGenerator(policy NumberPolicy, now func() time.Time) (NumberGenerator, error) {
	switch NumberPolicy(strings.ToLower(string(policy))) {
	case PolicyCounter, "":
		return NewCounterGenerator(now), nil
	case PolicyRandom:
		return NewRandomGenerator(now, nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNumberPolicy, policy)
	}
}

// CounterGenerator hands out PO-YYYYMMDD-NNNN numbers from a process-wide
// sequence. The sequence starts at 1 when the process starts, restarts
// when the UTC date changes and wraps after 99999. It is not persisted, so
// uniqueness only holds within one process.
type CounterGenerator struct {
	mu  sync.Mutex
	now func() time.Time
	day string
	seq int
}

func NewCounterGenerator(now func() time.Time) *CounterGenerator {
	if now == nil {
		now = time.Now
	}
	return &CounterGenerator{now: now}
}

func (g *CounterGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	date := g.now().UTC().Format(dateLayout)
	if date != g.day {
		g.day = date
		g.seq = 0
	}
	g.seq++
	if g.seq > maxSequence {
		g.seq = 1
	}
	return fmt.Sprintf("PO-%s-%04d", date, g.seq)
}

// RandomGenerator draws the suffix from [0, 1000).
type RandomGenerator struct {
	now  func() time.Time
	draw func(n int) int
}

func NewRandomGenerator(now func() time.Time, draw func(n int) int) *RandomGenerator {
	if now == nil {
		now = time.Now
	}
	if draw == nil {
		draw = rand.IntN
	}
	return &RandomGenerator{now: now, draw: draw}
}

func (g *RandomGenerator) Next() string {
	return fmt.Sprintf("PO-%s-%05d", g.now().UTC().Format(dateLayout), g.draw(1000))
}
