package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/providers/llm"
	"github.com/yoockh/outreach/internal/utils"
)

var errStore = errors.New("store unavailable")

// fakeEntryRepo keeps documents in insertion order.
type fakeEntryRepo struct {
	mu   sync.Mutex
	docs []models.Entry

	deleteIDsCalls int
	failCount      bool
	failSample     bool
	failDelete     bool
	failAnyCheck   bool
	failList       bool
	failIDs        map[string]bool
}

func newFakeEntryRepo(n int) *fakeEntryRepo {
	r := &fakeEntryRepo{}
	for i := 0; i < n; i++ {
		r.docs = append(r.docs, models.Entry{ID: fmt.Sprintf("e%d", i), Name: fmt.Sprintf("name-%d", i)})
	}
	return r
}

func (r *fakeEntryRepo) CountUpTo(_ context.Context, limit int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCount {
		return 0, errStore
	}
	n := int64(len(r.docs))
	if n > limit {
		n = limit
	}
	return n, nil
}

func (r *fakeEntryRepo) SampleIDs(_ context.Context, n int64) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSample {
		return nil, errStore
	}
	var ids []any
	for i := 0; i < len(r.docs) && int64(i) < n; i++ {
		ids = append(ids, r.docs[i].ID)
	}
	return ids, nil
}

func (r *fakeEntryRepo) DeleteIDs(_ context.Context, ids []any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteIDsCalls++
	if r.failDelete {
		return 0, errStore
	}
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id.(string)] = true
	}
	kept := r.docs[:0]
	var deleted int64
	for _, d := range r.docs {
		if drop[d.ID] {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	r.docs = kept
	return deleted, nil
}

func (r *fakeEntryRepo) Any(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAnyCheck {
		return false, errStore
	}
	return len(r.docs) > 0, nil
}

func (r *fakeEntryRepo) ListRecent(_ context.Context, limit int64) ([]models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList {
		return nil, errStore
	}
	out := []models.Entry{}
	for i := 0; i < len(r.docs) && int64(i) < limit; i++ {
		out = append(out, r.docs[i])
	}
	return out, nil
}

func (r *fakeEntryRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[id] {
		return false, errStore
	}
	for i, d := range r.docs {
		if d.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEntryRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

type fakeProfileRepo struct {
	profiles  map[string]*models.UserProfile
	failGet   bool
	upserted  []*models.UserProfile
	failWrite bool
}

func newFakeProfileRepo(ps ...*models.UserProfile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[string]*models.UserProfile{}}
	for _, p := range ps {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*models.UserProfile, error) {
	if r.failGet {
		return nil, errStore
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *models.UserProfile) error {
	if r.failWrite {
		return errStore
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	r.upserted = append(r.upserted, &cp)
	return nil
}

type fakeOutreachRepo struct {
	records []*models.OutreachRecord
	fail    bool
}

func (r *fakeOutreachRepo) Insert(_ context.Context, rec *models.OutreachRecord) (string, error) {
	if r.fail {
		return "", errStore
	}
	rec.ID = fmt.Sprintf("rec-%d", len(r.records)+1)
	r.records = append(r.records, rec)
	return rec.ID, nil
}

func (r *fakeOutreachRepo) ListByOwner(_ context.Context, owner string, limit int64) ([]models.OutreachRecord, error) {
	if r.fail {
		return nil, errStore
	}
	out := []models.OutreachRecord{}
	for i := len(r.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.records[i].OwnerUserID == owner {
			out = append(out, *r.records[i])
		}
	}
	return out, nil
}

type fakeSubscriptionRepo struct {
	recs      map[string]*models.SubscriptionRecord
	gets      int
	failGet   bool
	failWrite bool
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{recs: map[string]*models.SubscriptionRecord{}}
}

func (r *fakeSubscriptionRepo) GetByUserID(_ context.Context, userID string) (*models.SubscriptionRecord, error) {
	r.gets++
	if r.failGet {
		return nil, errStore
	}
	s, ok := r.recs[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) Upsert(_ context.Context, s *models.SubscriptionRecord) error {
	if r.failWrite {
		return errStore
	}
	cp := *s
	r.recs[s.UserID] = &cp
	return nil
}

type fakeLLM struct {
	calls    []llm.Request
	response string
	err      error
}

func (f *fakeLLM) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Close() error { return nil }

type fakeEnricher struct {
	calls int
	out   models.Enrichment
}

func (f *fakeEnricher) Enrich(context.Context, models.JobData) models.Enrichment {
	f.calls++
	return f.out
}

type fakeObjectStore struct {
	objects map[string][]byte
	fail    bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (s *fakeObjectStore) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if s.fail {
		return "", errStore
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[name] = b
	return name, nil
}

func (s *fakeObjectStore) Download(_ context.Context, name string, _ int64) ([]byte, error) {
	if s.fail {
		return nil, errStore
	}
	b, ok := s.objects[name]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return b, nil
}
