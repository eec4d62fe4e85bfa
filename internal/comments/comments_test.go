package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/identity"
	"github.com/UkralStul/blog-service/internal/notify"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"
	"github.com/UkralStul/blog-service/internal/storage/storagetest"
)

func newTestStore(t *testing.T) (storage.Storage, storagetest.Scenario) {
	store := inmemory.New()
	return store, storagetest.Seed(t, store)
}

type recordingNotifier struct {
	events []notify.CommentEvent
}

func (r *recordingNotifier) Publish(ev notify.CommentEvent) { r.events = append(r.events, ev) }

// failingStore injects infrastructure faults into selected calls.
type failingStore struct {
	storage.Storage
	err error
}

func (f failingStore) AddComment(ctx context.Context, post *domain.Post, comment *domain.Comment) error {
	return f.err
}

func (f failingStore) GetCommentByID(ctx context.Context, id uint, rel storage.CommentRelations) (*domain.Comment, error) {
	return nil, f.err
}

func TestValidateCreate(t *testing.T) {
	assert.NoError(t, ValidateCreate(CreateCommand{PostID: 1, Body: "hi"}))
	assert.Error(t, ValidateCreate(CreateCommand{PostID: 0, Body: "hi"}))
	assert.Error(t, ValidateCreate(CreateCommand{PostID: 1, Body: " \n"}))

	long := make([]rune, MaxBodyLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateCreate(CreateCommand{PostID: 1, Body: string(long)}))
}

func TestCreate_ThenDetails(t *testing.T) {
	store, sc := newTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	create := NewCreateHandler(store, identity.Static("bob"), WithNotifier(notifier))
	details := NewDetailsHandler(store)

	issued := time.Now().UTC().Truncate(time.Microsecond)
	res, err := create.Handle(ctx, CreateCommand{PostID: sc.P1.ID, Body: "Great write-up"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Reason())

	created := res.Value()
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Great write-up", created.Body)
	assert.False(t, created.CreatedAt.Before(issued))

	got, err := details.Handle(ctx, DetailsQuery{PostID: sc.P1.ID, ID: created.ID})
	require.NoError(t, err)
	require.True(t, got.IsSuccess(), got.Reason())
	assert.Equal(t, CommentDetails{
		ID:        created.ID,
		Body:      "Great write-up",
		Author:    Author{ID: sc.Bob.ID, Username: "bob"},
		CreatedAt: created.CreatedAt,
	}, got.Value())

	require.Len(t, notifier.events, 1)
	assert.Equal(t, sc.P1.ID, notifier.events[0].PostID)
	assert.Equal(t, "bob", notifier.events[0].Author)
}

func TestCreate_UsesClock(t *testing.T) {
	store, sc := newTestStore(t)
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	create := NewCreateHandler(store, identity.Static("alice"), WithClock(func() time.Time { return fixed }))
	res, err := create.Handle(context.Background(), CreateCommand{PostID: sc.P2.ID, Body: "x"})
	require.NoError(t, err)
	assert.Equal(t, fixed, res.Value().CreatedAt)
}

func TestCreate_PostDoesNotExist(t *testing.T) {
	store, sc := newTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	create := NewCreateHandler(store, identity.Static("alice"), WithNotifier(notifier))
	res, err := create.Handle(ctx, CreateCommand{PostID: 999, Body: "hello"})
	require.NoError(t, err)
	assert.True(t, res.IsFailure())
	assert.Equal(t, "Post does not exist", res.Reason())
	assert.Empty(t, notifier.events)

	for _, id := range []uint{sc.P1.ID, sc.P2.ID} {
		post, err := store.GetPostByID(ctx, id, storage.PostRelations{Comments: true})
		require.NoError(t, err)
		assert.Empty(t, post.Comments)
	}
}

func TestCreate_AuthorMustResolve(t *testing.T) {
	store, sc := newTestStore(t)
	ctx := context.Background()

	for name, ident := range map[string]identity.Accessor{
		"unknown user":  identity.Static("carol"),
		"no identity":   identity.ContextAccessor{},
		"case mismatch": identity.Static("Alice"),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := NewCreateHandler(store, ident).Handle(ctx, CreateCommand{PostID: sc.P1.ID, Body: "hi"})
			require.NoError(t, err)
			assert.Equal(t, "Author does not exist", res.Reason())
		})
	}

	post, err := store.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{Comments: true})
	require.NoError(t, err)
	assert.Empty(t, post.Comments)
}

func TestCreate_IdentityFromContext(t *testing.T) {
	store, sc := newTestStore(t)
	ctx := identity.WithUsername(context.Background(), "alice")

	res, err := NewCreateHandler(store, identity.ContextAccessor{}).Handle(ctx, CreateCommand{PostID: sc.P2.ID, Body: "hi"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Reason())

	got, err := NewDetailsHandler(store).Handle(ctx, DetailsQuery{PostID: sc.P2.ID, ID: res.Value().ID})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Value().Author.Username)
}

func TestCreate_StoreFaultPropagates(t *testing.T) {
	store, sc := newTestStore(t)
	boom := errors.New("disk full")
	notifier := &recordingNotifier{}

	create := NewCreateHandler(failingStore{Storage: store, err: boom}, identity.Static("alice"), WithNotifier(notifier))
	_, err := create.Handle(context.Background(), CreateCommand{PostID: sc.P1.ID, Body: "hi"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, notifier.events)
}

func TestDetails_CommentDoesNotExist(t *testing.T) {
	store, sc := newTestStore(t)

	res, err := NewDetailsHandler(store).Handle(context.Background(), DetailsQuery{PostID: sc.P1.ID, ID: 12345})
	require.NoError(t, err)
	assert.Equal(t, "Comment does not exist", res.Reason())
}

func TestDetails_WrongPostIsNotFound(t *testing.T) {
	store, sc := newTestStore(t)
	ctx := context.Background()

	res, err := NewCreateHandler(store, identity.Static("alice")).Handle(ctx, CreateCommand{PostID: sc.P1.ID, Body: "on P1"})
	require.NoError(t, err)

	got, err := NewDetailsHandler(store).Handle(ctx, DetailsQuery{PostID: sc.P2.ID, ID: res.Value().ID})
	require.NoError(t, err)
	assert.True(t, got.IsFailure())
	assert.Equal(t, "Comment does not exist", got.Reason())
}

func TestDetails_StoreFaultPropagates(t *testing.T) {
	store, sc := newTestStore(t)
	boom := errors.New("connection reset")

	_, err := NewDetailsHandler(failingStore{Storage: store, err: boom}).Handle(context.Background(), DetailsQuery{PostID: sc.P1.ID, ID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestList_OldestFirstWithAuthors(t *testing.T) {
	store, sc := newTestStore(t)
	ctx := context.Background()

	clock := storagetest.T2
	create := NewCreateHandler(store, identity.Static("bob"), WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	for _, body := range []string{"first", "second"} {
		res, err := create.Handle(ctx, CreateCommand{PostID: sc.P1.ID, Body: body})
		require.NoError(t, err)
		require.True(t, res.IsSuccess(), res.Reason())
	}

	res, err := NewListHandler(store).Handle(ctx, ListQuery{PostID: sc.P1.ID})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Reason())
	require.Len(t, res.Value(), 2)
	assert.Equal(t, "first", res.Value()[0].Body)
	assert.Equal(t, "second", res.Value()[1].Body)
	assert.Equal(t, Author{ID: sc.Bob.ID, Username: "bob"}, res.Value()[0].Author)
}

func TestList_EmptyAndMissingPost(t *testing.T) {
	store, sc := newTestStore(t)
	list := NewListHandler(store)

	empty, err := list.Handle(context.Background(), ListQuery{PostID: sc.P2.ID})
	require.NoError(t, err)
	require.True(t, empty.IsSuccess())
	assert.NotNil(t, empty.Value())
	assert.Empty(t, empty.Value())

	missing, err := list.Handle(context.Background(), ListQuery{PostID: 999})
	require.NoError(t, err)
	assert.Equal(t, ReasonPostNotFound, missing.Reason())

	assert.Error(t, ValidateList(ListQuery{}))
	assert.NoError(t, ValidateList(ListQuery{PostID: sc.P1.ID}))
}

// postFaultStore fails every post lookup.
type postFaultStore struct {
	storage.Storage
	err error
}

func (f postFaultStore) GetPostByID(ctx context.Context, id uint, rel storage.PostRelations) (*domain.Post, error) {
	return nil, f.err
}

func TestList_StoreFaultPropagates(t *testing.T) {
	store, sc := newTestStore(t)
	boom := errors.New("connection reset")

	res, err := NewListHandler(postFaultStore{Storage: store, err: boom}).Handle(context.Background(), ListQuery{PostID: sc.P1.ID})
	assert.ErrorIs(t, err, boom)
	assert.False(t, res.IsSuccess())
}
