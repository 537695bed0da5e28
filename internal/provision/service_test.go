package provision

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ownerassign/ownerassign/internal/listings"
	"github.com/ownerassign/ownerassign/internal/shared"
	"github.com/ownerassign/ownerassign/internal/users"
)

const adminID = 1

type fakeListings struct {
	mu        sync.Mutex
	items     map[int64]listings.Listing
	updateErr map[int64]error
}

func newFakeListings(items ...listings.Listing) *fakeListings {
	f := &fakeListings{items: make(map[int64]listings.Listing), updateErr: make(map[int64]error)}
	for _, l := range items {
		f.items[l.ID] = l
	}
	return f
}

func (f *fakeListings) Get(ctx context.Context, id int64) (listings.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return listings.Listing{}, listings.ErrNotFound
	}
	return l, nil
}

func (f *fakeListings) UpdateAuthor(ctx context.Context, id, authorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[id]; err != nil {
		return err
	}
	l := f.items[id]
	l.AuthorID = authorID
	f.items[id] = l
	return nil
}

func (f *fakeListings) author(id int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].AuthorID
}

type fakeUsers struct {
	mu      sync.Mutex
	users   []users.User
	inputs  []users.CreateUserInput
	creates int
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (f *fakeUsers) CreateUser(ctx context.Context, in users.CreateUserInput) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	login := users.SanitizeLogin(in.Login)
	if login == "" {
		return users.User{}, users.ErrEmptyLogin
	}
	for _, u := range f.users {
		if u.Login == login {
			return users.User{}, users.ErrLoginExists
		}
	}
	u := users.User{ID: int64(100 + len(f.users)), Login: login, Email: in.Email, DisplayName: in.DisplayName}
	f.users = append(f.users, u)
	f.inputs = append(f.inputs, in)
	return u, nil
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) ObserveProvision(outcome string) {
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[outcome]++
}

type memoryAuditor struct {
	logs []shared.AuditLog
}

func (a *memoryAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func listing(id int64, title, email string) listings.Listing {
	return listings.Listing{ID: id, PostType: listings.PostType, Status: "publish", Title: title, AuthorID: adminID, Email: email}
}

func TestProvisionCreatesOwnerAndAssigns(t *testing.T) {
	store := newFakeListings(listing(12, "Sunny Villa", "a@x.com"))
	userStore := &fakeUsers{}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{12})

	require.Len(t, userStore.users, 1)
	created := userStore.users[0]
	assert.Equal(t, "Sunny Villa", created.Login)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, created.ID, store.author(12))

	in := userStore.inputs[0]
	assert.Equal(t, shared.RoleOwner, in.Role)
	assert.Equal(t, "Sunny Villa", in.DisplayName)
	assert.Len(t, in.Password, users.GeneratedPasswordLength)
	assert.Equal(t, 1, report.Count(OutcomeCreated))
}

func TestProvisionReusesExistingUser(t *testing.T) {
	store := newFakeListings(listing(5, "Harbour Loft", "Owner@Example.com"))
	userStore := &fakeUsers{users: []users.User{{ID: 42, Login: "existing", Email: "owner@example.com"}}}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{5})

	assert.Equal(t, int64(42), store.author(5))
	assert.Zero(t, userStore.creates)
	assert.Equal(t, []Result{{ListingID: 5, Outcome: OutcomeAssignedExisting, UserID: 42}}, report.Results)
}

func TestProvisionSkipsListingWithoutEmail(t *testing.T) {
	store := newFakeListings(listing(7, "No Mail", "   "))
	userStore := &fakeUsers{}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{7})

	assert.Equal(t, int64(adminID), store.author(7))
	assert.Zero(t, userStore.creates)
	assert.Equal(t, 1, report.Count(OutcomeSkippedNoEmail))
}

func TestProvisionSharedEmailCreatesSingleUser(t *testing.T) {
	store := newFakeListings(listing(3, "Lake House", "b@y.com"), listing(4, "Lake Cabin", "b@y.com"))
	userStore := &fakeUsers{}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{3, 4})

	require.Len(t, userStore.users, 1)
	owner := userStore.users[0].ID
	assert.Equal(t, owner, store.author(3))
	assert.Equal(t, owner, store.author(4))
	assert.Equal(t, 1, report.Count(OutcomeCreated))
	assert.Equal(t, 1, report.Count(OutcomeAssignedExisting))
}

func TestProvisionIgnoresInvalidIDs(t *testing.T) {
	page := listing(9, "About", "page@x.com")
	page.PostType = "page"
	store := newFakeListings(page)
	userStore := &fakeUsers{}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{0, -3, 9, 999})

	assert.Equal(t, int64(adminID), store.author(9))
	assert.Zero(t, userStore.creates)
	assert.Equal(t, 4, report.Count(OutcomeSkippedInvalid))
}

func TestProvisionContinuesAfterCreateFailure(t *testing.T) {
	store := newFakeListings(
		listing(1, "日本", "jp@x.com"),
		listing(2, "Taken", "taken-new@x.com"),
		listing(3, "Fresh", "fresh@x.com"),
	)
	userStore := &fakeUsers{users: []users.User{{ID: 50, Login: "Taken", Email: "taken@x.com"}}}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{1, 2, 3})

	assert.Equal(t, int64(adminID), store.author(1))
	assert.Equal(t, int64(adminID), store.author(2))
	assert.NotEqual(t, int64(adminID), store.author(3))
	assert.Equal(t, 2, report.Count(OutcomeCreateFailed))
	assert.Equal(t, 1, report.Count(OutcomeCreated))
}

func TestProvisionKeepsEarlierAssignmentsWhenUpdateFails(t *testing.T) {
	store := newFakeListings(listing(1, "First", "first@x.com"), listing(2, "Second", "second@x.com"))
	store.updateErr[2] = errors.New("connection reset")
	userStore := &fakeUsers{}
	svc := NewService(store, userStore, nil)

	report := svc.Provision(context.Background(), []int64{1, 2})

	assert.NotEqual(t, int64(adminID), store.author(1))
	assert.Equal(t, int64(adminID), store.author(2))
	assert.Equal(t, 1, report.Count(OutcomeUpdateFailed))
	assert.Equal(t, 1, report.Assigned())
}

func TestProvisionRecordsMetricsAndAudit(t *testing.T) {
	store := newFakeListings(listing(12, "Sunny Villa", "a@x.com"), listing(7, "Empty", ""))
	recorder := &countingRecorder{}
	auditor := &memoryAuditor{}
	svc := NewService(store, &fakeUsers{}, nil, WithRecorder(recorder), WithAuditor(auditor))

	svc.Provision(context.Background(), []int64{12, 7})

	assert.Equal(t, map[string]int{"created": 1, "skipped_no_email": 1}, recorder.counts)
	require.Len(t, auditor.logs, 1)
	entry := auditor.logs[0]
	assert.Equal(t, "listing.author_assigned", entry.Action)
	assert.Equal(t, "12", entry.EntityID)
	assert.Equal(t, int64(adminID), entry.Meta["previous_author_id"])
	assert.Equal(t, true, entry.Meta["user_created"])
}

func TestProvisionConcurrentCallsShareCreation(t *testing.T) {
	var items []listings.Listing
	for i := int64(1); i <= 8; i++ {
		items = append(items, listing(i, "Shared Owner", "shared@x.com"))
	}
	store := newFakeListings(items...)
	userStore := &fakeUsers{}
	svc := NewService(store, userStore, nil)

	var wg sync.WaitGroup
	for i := int64(1); i <= 8; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			svc.Provision(context.Background(), []int64{id})
		}(i)
	}
	wg.Wait()

	require.Len(t, userStore.users, 1)
	for i := int64(1); i <= 8; i++ {
		assert.Equal(t, userStore.users[0].ID, store.author(i))
	}
}
