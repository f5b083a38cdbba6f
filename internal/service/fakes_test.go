package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/mailer"
	"github.com/codequest/backend/pkg/media"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Tags = append([]string{}, a.Tags...)
	c.Friends = append([]string{}, a.Friends...)
	return &c
}

type fakeAccounts struct {
	mu        sync.Mutex
	byID      map[string]*domain.Account
	createErr error
}

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[string]*domain.Account{}}
	for _, a := range accounts {
		f.byID[a.ID] = cloneAccount(a)
	}
	return f
}

func (f *fakeAccounts) Create(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if a.Email != nil && x.Email != nil && *a.Email == *x.Email {
			return &domain.ErrDuplicate{Field: "email"}
		}
		if a.Phone != nil && x.Phone != nil && *a.Phone == *x.Phone {
			return &domain.ErrDuplicate{Field: "phone"}
		}
	}
	f.byID[a.ID] = cloneAccount(a)
	return nil
}

func (f *fakeAccounts) find(match func(*domain.Account) bool) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if match(a) {
			return cloneAccount(a)
		}
	}
	return nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	return f.find(func(a *domain.Account) bool { return a.ID == id }), nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	return f.find(func(a *domain.Account) bool { return a.Email != nil && *a.Email == email }), nil
}

func (f *fakeAccounts) FindByPhone(_ context.Context, phone string) (*domain.Account, error) {
	return f.find(func(a *domain.Account) bool { return a.Phone != nil && *a.Phone == phone }), nil
}

func (f *fakeAccounts) FindByIDs(_ context.Context, ids []string) ([]*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Account{}
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (f *fakeAccounts) ListAll(_ context.Context) ([]*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Account{}
	for _, a := range f.byID {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, id, name, about string, tags []string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	a.Name, a.About, a.Tags = name, about, tags
	return cloneAccount(a), nil
}

func (f *fakeAccounts) LinkGoogleID(_ context.Context, id, googleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[id]; ok {
		a.GoogleID = &googleID
	}
	return nil
}

func (f *fakeAccounts) addFriend(a, b string) {
	acct := f.byID[a]
	if acct != nil && !acct.HasFriend(b) {
		acct.Friends = append(acct.Friends, b)
	}
}

func (f *fakeAccounts) removeFriend(a, b string) {
	acct := f.byID[a]
	if acct == nil {
		return
	}
	kept := []string{}
	for _, id := range acct.Friends {
		if id != b {
			kept = append(kept, id)
		}
	}
	acct.Friends = kept
}

type fakeSubscriptions struct {
	mu      sync.Mutex
	byUser  map[string]domain.Subscription
	saves   int
	saveErr error
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{byUser: map[string]domain.Subscription{}}
}

func (f *fakeSubscriptions) FindByUserID(_ context.Context, userID string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (f *fakeSubscriptions) CreateIfAbsent(_ context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byUser[sub.UserID]; ok {
		return &existing, nil
	}
	f.byUser[sub.UserID] = *sub
	out := *sub
	return &out, nil
}

func (f *fakeSubscriptions) Save(_ context.Context, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byUser[sub.UserID] = *sub
	f.saves++
	return nil
}

func (f *fakeSubscriptions) IncrementUsage(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := f.byUser[userID]
	sub.QuestionsUsedToday++
	f.byUser[userID] = sub
	return sub.QuestionsUsedToday, nil
}

func (f *fakeSubscriptions) get(userID string) domain.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID]
}

func activatePlan(t *testing.T, svc *SubscriptionService, store *fakeSubscriptions, userID string, tier domain.Tier) {
	t.Helper()
	plan := domain.GetPlan(tier)
	sub, err := svc.PrepareActivation(context.Background(), userID, plan, plan.Price, "order_"+userID, "pay_"+userID)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), &sub))
}

type fakePayments struct {
	mu       sync.Mutex
	byOrder  map[string]domain.PaymentOrder
	invoices map[string]bool
	subs     *fakeSubscriptions
}

func newFakePayments(subs *fakeSubscriptions) *fakePayments {
	return &fakePayments{byOrder: map[string]domain.PaymentOrder{}, invoices: map[string]bool{}, subs: subs}
}

func (f *fakePayments) CreateIfAbsent(_ context.Context, p *domain.PaymentOrder) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byOrder[p.OrderID]; ok {
		return false, nil
	}
	f.byOrder[p.OrderID] = *p
	return true, nil
}

func (f *fakePayments) FindByOrderID(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePayments) Complete(ctx context.Context, c domain.PaymentCompletion, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byOrder[c.OrderID]
	if !ok || p.Status != domain.PaymentPending {
		return domain.ErrNotPending
	}
	if f.invoices[c.InvoiceNumber] {
		return &domain.ErrDuplicate{Field: "invoice_number"}
	}
	if err := f.subs.Save(ctx, sub); err != nil {
		return err
	}
	f.invoices[c.InvoiceNumber] = true
	p.Status = domain.PaymentCompleted
	p.PaymentID, p.Signature, p.InvoiceNumber = c.PaymentID, c.Signature, c.InvoiceNumber
	p.CompletedAt = &c.CompletedAt
	f.byOrder[c.OrderID] = p
	return nil
}

func (f *fakePayments) ListByUser(_ context.Context, userID string, limit int) ([]*domain.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.PaymentOrder{}
	for _, p := range f.byOrder {
		if p.UserID == userID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeLoginEvents struct {
	mu        sync.Mutex
	events    []*domain.LoginEvent
	appendErr error
}

func (f *fakeLoginEvents) Append(_ context.Context, e *domain.LoginEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeLoginEvents) ListByUser(_ context.Context, userID string, limit int) ([]*domain.LoginEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.LoginEvent{}
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].UserID == userID {
			out = append(out, f.events[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLoginEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeFriends struct {
	mu       sync.Mutex
	byID     map[string]*domain.FriendRequest
	accounts *fakeAccounts
}

func newFakeFriends(accounts *fakeAccounts) *fakeFriends {
	return &fakeFriends{byID: map[string]*domain.FriendRequest{}, accounts: accounts}
}

func (f *fakeFriends) FindByID(_ context.Context, id string) (*domain.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *fr
	return &c, nil
}

func (f *fakeFriends) FindBetween(_ context.Context, a, b string) (*domain.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fr := range f.byID {
		if (fr.FromUserID == a && fr.ToUserID == b) || (fr.FromUserID == b && fr.ToUserID == a) {
			c := *fr
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeFriends) Create(_ context.Context, fr *domain.FriendRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if (x.FromUserID == fr.FromUserID && x.ToUserID == fr.ToUserID) ||
			(x.FromUserID == fr.ToUserID && x.ToUserID == fr.FromUserID) {
			return &domain.ErrDuplicate{Field: "friend_request"}
		}
	}
	c := *fr
	f.byID[fr.ID] = &c
	return nil
}

func (f *fakeFriends) Reopen(_ context.Context, id, from, to string, at time.Time) (*domain.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.byID[id]
	if !ok || fr.Status == domain.FriendPending {
		return nil, &domain.ErrDuplicate{Field: "friend_request"}
	}
	fr.FromUserID, fr.ToUserID, fr.Status, fr.CreatedAt, fr.RespondedAt = from, to, domain.FriendPending, at, nil
	c := *fr
	return &c, nil
}

func (f *fakeFriends) respond(id string, status domain.FriendRequestStatus, at time.Time) (*domain.FriendRequest, error) {
	fr, ok := f.byID[id]
	if !ok || fr.Status != domain.FriendPending {
		return nil, domain.ErrNotPending
	}
	fr.Status, fr.RespondedAt = status, &at
	c := *fr
	return &c, nil
}

func (f *fakeFriends) Accept(_ context.Context, id string, at time.Time) (*domain.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, err := f.respond(id, domain.FriendAccepted, at)
	if err != nil {
		return nil, err
	}
	f.accounts.mu.Lock()
	f.accounts.addFriend(fr.FromUserID, fr.ToUserID)
	f.accounts.addFriend(fr.ToUserID, fr.FromUserID)
	f.accounts.mu.Unlock()
	return fr, nil
}

func (f *fakeFriends) Reject(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.respond(id, domain.FriendRejected, at)
	return err
}

func (f *fakeFriends) DeletePending(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.byID[id]
	if !ok || fr.Status != domain.FriendPending {
		return domain.ErrNotPending
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFriends) list(match func(*domain.FriendRequest) bool) []*domain.FriendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.FriendRequest{}
	for _, fr := range f.byID {
		if fr.Status == domain.FriendPending && match(fr) {
			c := *fr
			out = append(out, &c)
		}
	}
	return out
}

func (f *fakeFriends) ListIncoming(_ context.Context, userID string) ([]*domain.FriendRequest, error) {
	return f.list(func(fr *domain.FriendRequest) bool { return fr.ToUserID == userID }), nil
}

func (f *fakeFriends) ListOutgoing(_ context.Context, userID string) ([]*domain.FriendRequest, error) {
	return f.list(func(fr *domain.FriendRequest) bool { return fr.FromUserID == userID }), nil
}

func (f *fakeFriends) RemoveFriendship(_ context.Context, a, b string) error {
	f.accounts.mu.Lock()
	defer f.accounts.mu.Unlock()
	f.accounts.removeFriend(a, b)
	f.accounts.removeFriend(b, a)
	return nil
}

func (f *fakeFriends) rows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakePosts struct {
	mu        sync.Mutex
	byID      map[string]*domain.PublicPost
	createErr error
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[string]*domain.PublicPost{}}
}

func (f *fakePosts) Create(_ context.Context, p *domain.PublicPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakePosts) CountByUserBetween(_ context.Context, userID string, from, to time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.byID {
		if p.UserID == userID && !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakePosts) ListPage(_ context.Context, offset, limit int) ([]*domain.PublicPost, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := []*domain.PublicPost{}
	for _, p := range f.byID {
		c := *p
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []*domain.PublicPost{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakePosts) FindByID(_ context.Context, id string) (*domain.PublicPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (f *fakePosts) ToggleLike(_ context.Context, id, userID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return 0, false, nil
	}
	kept := []string{}
	liked := false
	for _, u := range p.Likes {
		if u == userID {
			liked = true
			continue
		}
		kept = append(kept, u)
	}
	if !liked {
		kept = append(kept, userID)
	}
	p.Likes = kept
	return len(kept), true, nil
}

func (f *fakePosts) AddComment(_ context.Context, id string, c domain.Comment) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	p.Comments = append(p.Comments, c)
	return append([]domain.Comment{}, p.Comments...), nil
}

func (f *fakePosts) IncrementShares(_ context.Context, id string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return 0, false, nil
	}
	p.Shares++
	return p.Shares, true, nil
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

type fakeQuestions struct {
	mu        sync.Mutex
	byID      map[string]*domain.Question
	createErr error
	// beforeCreate, when set, runs before each insert.
	beforeCreate func()
}

func newFakeQuestions() *fakeQuestions {
	return &fakeQuestions{byID: map[string]*domain.Question{}}
}

func (f *fakeQuestions) Create(_ context.Context, q *domain.Question) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	c := *q
	f.byID[q.ID] = &c
	return nil
}

func (f *fakeQuestions) List(_ context.Context, filter domain.QuestionFilter) ([]*domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Question{}
	for _, q := range f.byID {
		if (filter == domain.QuestionsWithVideo && !q.HasVideo) || (filter == domain.QuestionsTextOnly && q.HasVideo) {
			continue
		}
		c := *q
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AskedOn.After(out[j].AskedOn) })
	return out, nil
}

func (f *fakeQuestions) FindByID(_ context.Context, id string) (*domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *q
	return &c, nil
}

func (f *fakeQuestions) Update(_ context.Context, q *domain.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *q
	f.byID[q.ID] = &c
	return nil
}

func (f *fakeQuestions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeQuestions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeMedia struct {
	saved     []string
	deleted   []string
	deleteErr error
}

func (f *fakeMedia) Save(_ context.Context, folder string, up media.Upload) (string, error) {
	url := "/uploads/" + folder + "/" + up.Filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func strPtr(s string) *string { return &s }
