package merge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	kindHero  Kind = "hero"
	kindCard  Kind = "card"
	kindOther Kind = "other"
)

// testEntity is a minimal numbered entity.
type testEntity struct {
	id     int
	kind   Kind
	no     int
	tags   []string
	Owner  string
	Amount int
}

func (t *testEntity) EntityID() int         { return t.id }
func (t *testEntity) EntityKind() Kind      { return t.kind }
func (t *testEntity) CollectionNumber() int { return t.no }

// fakeStore is an in-memory Store with failure injection.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[Kind]map[int]*testEntity
	calls   int
	failIDs map[int]error
	delay   time.Duration
	panicID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[Kind]map[int]*testEntity), failIDs: map[int]error{}}
}

func (f *fakeStore) Find(ctx context.Context, kind Kind, id int) (Entity, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	if id == f.panicID {
		panic("boom")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[kind][id]
	if !ok {
		return nil, false, nil
	}
	cp := *row
	return &cp, true, nil
}

func (f *fakeStore) write(e Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.failIDs[e.EntityID()]; ok {
		return err
	}
	te := e.(*testEntity)
	if f.rows[te.kind] == nil {
		f.rows[te.kind] = make(map[int]*testEntity)
	}
	cp := *te
	f.rows[te.kind][te.id] = &cp
	return nil
}

func (f *fakeStore) Create(ctx context.Context, e Entity) error { return f.write(e) }
func (f *fakeStore) Update(ctx context.Context, e Entity) error { return f.write(e) }

func (f *fakeStore) Merge(existing, incoming Entity) (Entity, error) {
	old := existing.(*testEntity)
	in := incoming.(*testEntity)
	merged := *old
	if merged.Amount == 0 {
		merged.Amount = in.Amount
	}
	merged.tags = append(append([]string{}, old.tags...), in.tags...)
	return &merged, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func heroes(ids ...int) []Entity {
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, &testEntity{id: id, kind: kindHero, no: id, Amount: id * 10})
	}
	return out
}

func enabled(policy Policy) Options {
	return Options{
		Kinds:   map[Kind]KindOptions{kindHero: {Import: true, Policy: policy}},
		Workers: 4,
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		policy Policy
		exists bool
		want   ActionType
	}{
		{PolicySkip, false, ActionCreate},
		{PolicySkip, true, ActionSkip},
		{PolicyOverride, false, ActionCreate},
		{PolicyOverride, true, ActionUpdate},
		{PolicyAppend, false, ActionCreate},
		{PolicyAppend, true, ActionMerge},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.policy, tt.exists), func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.policy, tt.exists))
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("append")
	assert.NoError(t, err)
	assert.Equal(t, PolicyAppend, p)

	_, err = ParsePolicy("replace")
	assert.Error(t, err)
}

func TestRun_OverrideIsIdempotent(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zap.NewNop())
	entities := heroes(1, 2, 3)

	first, err := engine.Run(context.Background(), entities, enabled(PolicyOverride))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Kinds[kindHero].Created)
	assert.Equal(t, 0, first.Kinds[kindHero].Updated)

	snapshot := fmt.Sprintf("%v", store.rows[kindHero][2])

	second, err := engine.Run(context.Background(), entities, enabled(PolicyOverride))
	require.NoError(t, err)
	hr := second.Kinds[kindHero]
	assert.Equal(t, 0, hr.Created)
	assert.Equal(t, 3, hr.Updated)
	assert.Equal(t, 0, hr.Errors)
	assert.Len(t, store.rows[kindHero], 3)
	assert.Equal(t, snapshot, fmt.Sprintf("%v", store.rows[kindHero][2]))
}

func TestRun_ImportDisabledTouchesNothing(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zap.NewNop())

	opts := Options{Kinds: map[Kind]KindOptions{kindHero: {Import: false, Policy: PolicyOverride}}}
	result, err := engine.Run(context.Background(), heroes(1, 2), opts)
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 0, hr.Created)
	assert.Equal(t, 0, hr.Updated)
	assert.Equal(t, 0, hr.Errors)
	assert.Equal(t, 2, hr.Skipped)
	assert.Equal(t, 0, store.callCount())
	assert.Empty(t, store.rows)
}

func TestRun_KindWithoutOptionsIsSkipped(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zap.NewNop())

	entities := []Entity{&testEntity{id: 5, kind: kindOther}}
	result, err := engine.Run(context.Background(), entities, enabled(PolicyOverride))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Kinds[kindOther].Skipped)
	assert.Equal(t, 0, store.callCount())
}

func TestRun_ErrorIsolation(t *testing.T) {
	store := newFakeStore()
	store.failIDs[2] = errors.New("constraint violation")
	engine := NewEngine(store, zap.NewNop())

	result, err := engine.Run(context.Background(), heroes(1, 2, 3), enabled(PolicyOverride))
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 2, hr.Created+hr.Updated)
	assert.Equal(t, 1, hr.Errors)
	require.Len(t, hr.Log, 1)
	assert.Equal(t, 2, hr.Log[0].ID)
	assert.Contains(t, hr.Log[0].Message, "constraint violation")
	assert.Contains(t, store.rows[kindHero], 1)
	assert.Contains(t, store.rows[kindHero], 3)
	assert.NotContains(t, store.rows[kindHero], 2)
}

func TestRun_SkipPolicyKeepsStoredCopy(t *testing.T) {
	store := newFakeStore()
	store.rows[kindHero] = map[int]*testEntity{1: {id: 1, kind: kindHero, Amount: 999}}
	engine := NewEngine(store, zap.NewNop())

	result, err := engine.Run(context.Background(), heroes(1, 2), enabled(PolicySkip))
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 1, hr.Created)
	assert.Equal(t, 0, hr.Updated)
	assert.Equal(t, 1, hr.Skipped)
	assert.Equal(t, 999, store.rows[kindHero][1].Amount)
}

func TestRun_AppendMergesIntoStoredCopy(t *testing.T) {
	store := newFakeStore()
	store.rows[kindHero] = map[int]*testEntity{1: {id: 1, kind: kindHero, Amount: 7, Owner: "acct-1", tags: []string{"a"}}}
	engine := NewEngine(store, zap.NewNop())

	incoming := []Entity{&testEntity{id: 1, kind: kindHero, Amount: 100, Owner: "other", tags: []string{"b"}}}
	result, err := engine.Run(context.Background(), incoming, enabled(PolicyAppend))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Kinds[kindHero].Updated)
	stored := store.rows[kindHero][1]
	assert.Equal(t, 7, stored.Amount)
	assert.Equal(t, "acct-1", stored.Owner)
	assert.Equal(t, []string{"a", "b"}, stored.tags)
}

func TestRun_CollectionRangeFilter(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zap.NewNop())

	lo, hi := 2, 3
	opts := Options{Kinds: map[Kind]KindOptions{
		kindHero: {Import: true, Policy: PolicyOverride, MinCollectionNo: &lo, MaxCollectionNo: &hi},
	}}

	result, err := engine.Run(context.Background(), heroes(1, 2, 3, 4), opts)
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 2, hr.Created)
	assert.Equal(t, 2, hr.Skipped)
	assert.Equal(t, 0, hr.Errors)
	assert.Len(t, store.rows[kindHero], 2)
}

func TestRun_MissingAndDuplicateIDsRejectedBeforePersistence(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zap.NewNop())

	entities := []Entity{
		&testEntity{id: 0, kind: kindHero},
		&testEntity{id: 4, kind: kindHero, no: 4},
		&testEntity{id: 4, kind: kindHero, no: 4},
		&testEntity{id: 4, kind: kindCard},
	}
	opts := Options{Kinds: map[Kind]KindOptions{
		kindHero: {Import: true, Policy: PolicyOverride},
		kindCard: {Import: true, Policy: PolicyOverride},
	}}

	result, err := engine.Run(context.Background(), entities, opts)
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 1, hr.Created)
	assert.Equal(t, 2, hr.Errors)
	require.Len(t, hr.Log, 2)
	assert.Equal(t, 0, hr.Log[0].ID)
	assert.Contains(t, hr.Log[0].Message, ErrMissingID.Error())
	assert.Equal(t, 4, hr.Log[1].ID)
	assert.Contains(t, hr.Log[1].Message, "duplicate")

	// Same id under a different kind is a different entity
	assert.Equal(t, 1, result.Kinds[kindCard].Created)
}

func TestRun_DryRunDoesNotWrite(t *testing.T) {
	store := newFakeStore()
	store.rows[kindHero] = map[int]*testEntity{1: {id: 1, kind: kindHero}}
	engine := NewEngine(store, zap.NewNop())

	opts := enabled(PolicyOverride)
	opts.DryRun = true

	result, err := engine.Run(context.Background(), heroes(1, 2), opts)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Kinds[kindHero].Created)
	assert.Equal(t, 1, result.Kinds[kindHero].Updated)
	assert.Len(t, store.rows[kindHero], 1)
}

func TestRun_TimeoutBecomesEntityError(t *testing.T) {
	store := newFakeStore()
	store.delay = 200 * time.Millisecond
	engine := NewEngine(store, zap.NewNop())

	opts := enabled(PolicyOverride)
	opts.Timeout = 10 * time.Millisecond

	result, err := engine.Run(context.Background(), heroes(1), opts)
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 1, hr.Errors)
	assert.Contains(t, hr.Log[0].Message, context.DeadlineExceeded.Error())
}

func TestRun_StorePanicIsIsolated(t *testing.T) {
	store := newFakeStore()
	store.panicID = 2
	engine := NewEngine(store, zap.NewNop())

	result, err := engine.Run(context.Background(), heroes(1, 2, 3), enabled(PolicyOverride))
	require.NoError(t, err)

	hr := result.Kinds[kindHero]
	assert.Equal(t, 2, hr.Created)
	assert.Equal(t, 1, hr.Errors)
	assert.Equal(t, 2, hr.Log[0].ID)
}

func TestRun_LogFollowsInputOrder(t *testing.T) {
	store := newFakeStore()
	for _, id := range []int{9, 3, 7} {
		store.failIDs[id] = errors.New("fail")
	}
	engine := NewEngine(store, zap.NewNop())

	opts := enabled(PolicyOverride)
	opts.Workers = 8

	result, err := engine.Run(context.Background(), heroes(9, 1, 3, 2, 7), opts)
	require.NoError(t, err)

	var ids []int
	for _, entry := range result.Kinds[kindHero].Log {
		ids = append(ids, entry.ID)
	}
	assert.Equal(t, []int{9, 3, 7}, ids)
}

func TestRun_InvalidOptions(t *testing.T) {
	engine := NewEngine(newFakeStore(), zap.NewNop())

	_, err := engine.Run(context.Background(), heroes(1), enabled("replace"))
	assert.Error(t, err)

	lo, hi := 5, 1
	opts := Options{Kinds: map[Kind]KindOptions{
		kindHero: {Import: true, Policy: PolicySkip, MinCollectionNo: &lo, MaxCollectionNo: &hi},
	}}
	_, err = engine.Run(context.Background(), heroes(1), opts)
	assert.Error(t, err)
}

func TestResult_Totals(t *testing.T) {
	r := &Result{}
	r.For(kindHero).Created = 2
	r.For(kindCard).Updated = 3
	r.For(kindCard).Errors = 1

	totals := r.Totals()
	assert.Equal(t, 2, totals.Created)
	assert.Equal(t, 3, totals.Updated)
	assert.Equal(t, 1, totals.Errors)
}
