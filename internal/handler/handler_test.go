package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altera-oes/backend/internal/logging"
	"github.com/altera-oes/backend/internal/middleware"
	"github.com/altera-oes/backend/internal/model"
	"github.com/altera-oes/backend/internal/queue"
	"github.com/altera-oes/backend/internal/repository"
	"github.com/altera-oes/backend/internal/utils"
)

type fakeComments struct {
	createErr error
	listErr   error
	created   []model.Comment
}

func (f *fakeComments) Create(_ context.Context, c *model.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = uint64(len(f.created) + 1)
	c.CreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeComments) ListWithAuthor(context.Context) ([]model.CommentWithAuthor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []model.CommentWithAuthor{}, nil
}

type fakeContacts struct{ err error }

func (f fakeContacts) Create(_ context.Context, c *model.Contact) error {
	if f.err != nil {
		return f.err
	}
	c.ID = 9
	return nil
}

type failingEvents struct{ calls int }

func (f *failingEvents) PublishCommentCreated(context.Context, queue.CommentCreatedEvent) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingEvents) PublishContactReceived(context.Context, queue.ContactReceivedEvent) error {
	f.calls++
	return errors.New("broker down")
}

type failingPurger struct{ calls int }

func (f *failingPurger) Purge(context.Context) error {
	f.calls++
	return errors.New("redis down")
}

func newContext(method, body string, id *utils.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCommentCreate_SideEffectFailuresOnlyWarn(t *testing.T) {
	store := &fakeComments{}
	events := &failingEvents{}
	purger := &failingPurger{}
	h := &CommentHandler{Comments: store, Events: events, Cache: purger, Log: logging.Nop()}

	c, rec := newContext(http.MethodPost, `{"content":"  hello  "}`, &utils.Identity{UserID: 3, Email: "a@b.c"})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"hello"`)
	assert.Contains(t, rec.Body.String(), `"user_id":3`)
	assert.Equal(t, 1, events.calls)
	assert.Equal(t, 1, purger.calls)
}

func TestCommentCreate_Errors(t *testing.T) {
	id := &utils.Identity{UserID: 3, Email: "a@b.c"}

	h := &CommentHandler{Comments: &fakeComments{}, Events: &failingEvents{}, Cache: &failingPurger{}, Log: logging.Nop()}
	c, rec := newContext(http.MethodPost, `{"content":"x"}`, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodPost, `{"content":`, id)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.Comments = &fakeComments{createErr: repository.ErrUnknownUser}
	c, rec = newContext(http.MethodPost, `{"content":"x"}`, id)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	h.Comments = &fakeComments{createErr: errors.New("deadlock")}
	c, rec = newContext(http.MethodPost, `{"content":"x"}`, id)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "deadlock")
}

func TestCommentList_StoreError(t *testing.T) {
	h := &CommentHandler{Comments: &fakeComments{listErr: errors.New("gone")}, Log: logging.Nop()}

	c, rec := newContext(http.MethodGet, "", nil)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestContactCreate(t *testing.T) {
	events := &failingEvents{}
	h := &ContactHandler{Contacts: fakeContacts{}, Events: events, Log: logging.Nop()}

	c, rec := newContext(http.MethodPost, `{"name":"Ana","email":"a@b.c","message":"   "}`, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"name, email and message are required"}`, rec.Body.String())
	assert.Zero(t, events.calls)

	c, rec = newContext(http.MethodPost, `{"name":"Ana","email":"a@b.c","message":"hi"}`, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, events.calls)

	h.Contacts = fakeContacts{err: errors.New("disk full")}
	c, rec = newContext(http.MethodPost, `{"name":"Ana","email":"a@b.c","message":"hi"}`, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	c, rec := newContext(http.MethodGet, "", nil)
	require.NoError(t, Health(pingFunc(func(context.Context) error { return nil }))(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodGet, "", nil)
	require.NoError(t, Health(pingFunc(func(context.Context) error { return errors.New("x") }))(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type orderLog []string

func (o *orderLog) PublishCommentCreated(context.Context, queue.CommentCreatedEvent) error {
	*o = append(*o, "publish")
	return nil
}

func (o *orderLog) Purge(context.Context) error {
	*o = append(*o, "purge")
	return nil
}

func TestCommentCreate_PurgesCacheLast(t *testing.T) {
	var order orderLog
	h := &CommentHandler{Comments: &fakeComments{}, Events: &order, Cache: &order, Log: logging.Nop()}

	c, rec := newContext(http.MethodPost, `{"content":"x"}`, &utils.Identity{UserID: 1, Email: "a@b.c"})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, orderLog{"publish", "purge"}, order)
}
