package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/EO-DataHub/eodhp-todo-services/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(users ...models.User) (*TodoService, *store.MemoryStore) {
	ms := store.NewMemoryStore(users...)
	return NewTodoService(ms, nil), ms
}

func readUsers(t *testing.T, ms *store.MemoryStore) []models.User {
	t.Helper()
	users, err := ms.ReadAll(context.Background())
	require.NoError(t, err)
	return users
}

func TestAddTodoNewUser(t *testing.T) {
	svc, ms := newTestService()

	todos, err := svc.AddTodo(context.Background(), "Jukka", "Eat")
	require.NoError(t, err)

	assert.Equal(t, []string{"Eat"}, todos)
	assert.Equal(t, []models.User{{Name: "Jukka", Todos: []string{"Eat"}}}, readUsers(t, ms))
}

func TestAddTodoExistingUserAppends(t *testing.T) {
	svc, ms := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat"}})

	todos, err := svc.AddTodo(context.Background(), "Jukka", "Sleep")
	require.NoError(t, err)

	assert.Equal(t, []string{"Eat", "Sleep"}, todos)
	assert.Equal(t, []models.User{{Name: "Jukka", Todos: []string{"Eat", "Sleep"}}}, readUsers(t, ms))
}

func TestAddTodoMultipleUsersKeepsOrder(t *testing.T) {
	svc, ms := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat"}})
	ctx := context.Background()

	_, err := svc.AddTodo(ctx, "Jukka", "Sleep")
	require.NoError(t, err)
	_, err = svc.AddTodo(ctx, "Matti", "Work")
	require.NoError(t, err)
	_, err = svc.AddTodo(ctx, "jukka", "Code")
	require.NoError(t, err)

	assert.Equal(t, []models.User{
		{Name: "Jukka", Todos: []string{"Eat", "Sleep"}},
		{Name: "Matti", Todos: []string{"Work"}},
		{Name: "jukka", Todos: []string{"Code"}},
	}, readUsers(t, ms), "names are case-sensitive and insertion order is kept")
}

func TestAddTodoAllowsDuplicates(t *testing.T) {
	svc, ms := newTestService()
	ctx := context.Background()

	_, err := svc.AddTodo(ctx, "Jukka", "Eat")
	require.NoError(t, err)
	todos, err := svc.AddTodo(ctx, "Jukka", "Eat")
	require.NoError(t, err)

	assert.Equal(t, []string{"Eat", "Eat"}, todos)
	assert.Len(t, readUsers(t, ms), 1)
}

func TestListTodos(t *testing.T) {
	svc, _ := newTestService(
		models.User{Name: "Jukka", Todos: []string{"Eat", "Sleep"}},
		models.User{Name: "Empty"},
	)

	todos, err := svc.ListTodos(context.Background(), "Jukka")
	require.NoError(t, err)
	assert.Equal(t, []string{"Eat", "Sleep"}, todos)

	todos, err = svc.ListTodos(context.Background(), "Empty")
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestListTodosUserNotFound(t *testing.T) {
	svc, _ := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat"}})

	todos, err := svc.ListTodos(context.Background(), "Matti")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, todos, "a missing user is an error, never an empty list")
}

func TestDeleteUser(t *testing.T) {
	svc, ms := newTestService(
		models.User{Name: "Jukka", Todos: []string{"Eat"}},
		models.User{Name: "Matti", Todos: []string{"Work"}},
		models.User{Name: "Liisa", Todos: []string{"Read"}},
	)

	err := svc.DeleteUser(context.Background(), "Matti")
	require.NoError(t, err)

	assert.Equal(t, []models.User{
		{Name: "Jukka", Todos: []string{"Eat"}},
		{Name: "Liisa", Todos: []string{"Read"}},
	}, readUsers(t, ms))
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, ms := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat"}})

	err := svc.DeleteUser(context.Background(), "jukka")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Len(t, readUsers(t, ms), 1)
}

func TestDeleteTodoRemovesFirstMatch(t *testing.T) {
	svc, ms := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat", "Sleep", "Eat"}})

	err := svc.DeleteTodo(context.Background(), "Jukka", "Eat")
	require.NoError(t, err)

	assert.Equal(t, []models.User{{Name: "Jukka", Todos: []string{"Sleep", "Eat"}}}, readUsers(t, ms))
}

func TestDeleteTodoLastEntryLeavesEmptyList(t *testing.T) {
	svc, ms := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat"}})

	err := svc.DeleteTodo(context.Background(), "Jukka", "Eat")
	require.NoError(t, err)

	assert.Equal(t, []models.User{{Name: "Jukka", Todos: []string{}}}, readUsers(t, ms))
}

func TestDeleteTodoNotFound(t *testing.T) {
	svc, ms := newTestService(models.User{Name: "Jukka", Todos: []string{"Eat"}})

	err := svc.DeleteTodo(context.Background(), "Jukka", "Sleep")
	assert.ErrorIs(t, err, ErrTodoNotFound)

	var badRequest *BadRequestError
	assert.True(t, errors.As(err, &badRequest))
	assert.Equal(t, []models.User{{Name: "Jukka", Todos: []string{"Eat"}}}, readUsers(t, ms))
}

func TestDeleteTodoUserNotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.DeleteTodo(context.Background(), "Jukka", "Eat")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFailuresDoNotWrite(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("ReadAll", mock.Anything).Return([]models.User{{Name: "Jukka", Todos: []string{"Eat"}}}, nil)
	svc := NewTodoService(mockStore, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteTodo(ctx, "Jukka", "Sleep"), ErrTodoNotFound)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, "Matti", "Eat"), ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, "Matti"), ErrUserNotFound)

	mockStore.AssertNotCalled(t, "WriteAll", mock.Anything, mock.Anything)
}

func TestReadErrorIsPropagated(t *testing.T) {
	mockStore := new(MockStore)
	readErr := fmt.Errorf("%w: boom", store.ErrDataFileRead)
	mockStore.On("ReadAll", mock.Anything).Return(nil, readErr)
	svc := NewTodoService(mockStore, nil)

	_, err := svc.AddTodo(context.Background(), "Jukka", "Eat")
	assert.ErrorIs(t, err, store.ErrDataFileRead)
	mockStore.AssertNotCalled(t, "WriteAll", mock.Anything, mock.Anything)
}

func TestWriteErrorIsPropagated(t *testing.T) {
	mockStore := new(MockStore)
	mockNotifier := new(MockNotifier)
	mockStore.On("ReadAll", mock.Anything).Return([]models.User{}, nil)
	mockStore.On("WriteAll", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: disk full", store.ErrDataFileWrite))
	svc := NewTodoService(mockStore, mockNotifier)

	_, err := svc.AddTodo(context.Background(), "Jukka", "Eat")
	assert.ErrorIs(t, err, store.ErrDataFileWrite)

	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestEventsArePublished(t *testing.T) {
	mockNotifier := new(MockNotifier)
	svc := NewTodoService(store.NewMemoryStore(), mockNotifier)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	mockNotifier.On("Notify", mock.Anything, models.TodoEvent{Action: models.ActionTodoAdded, Name: "Jukka", Todo: "Eat", Timestamp: 1700000000}).Return(nil).Once()
	mockNotifier.On("Notify", mock.Anything, models.TodoEvent{Action: models.ActionTodoDeleted, Name: "Jukka", Todo: "Eat", Timestamp: 1700000000}).Return(nil).Once()
	mockNotifier.On("Notify", mock.Anything, models.TodoEvent{Action: models.ActionUserDeleted, Name: "Jukka", Timestamp: 1700000000}).Return(errors.New("pulsar down")).Once()

	_, err := svc.AddTodo(ctx, "Jukka", "Eat")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTodo(ctx, "Jukka", "Eat"))
	require.NoError(t, svc.DeleteUser(ctx, "Jukka"), "a failed publish should not fail the request")

	mockNotifier.AssertExpectations(t)
}

func TestConcurrentAddTodoLosesNoUpdates(t *testing.T) {
	svc, ms := newTestService()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddTodo(ctx, "Jukka", fmt.Sprintf("todo-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	users := readUsers(t, ms)
	require.Len(t, users, 1)
	assert.Len(t, users[0].Todos, workers)
}

// blockingNotifier holds every Notify call until release is closed.
type blockingNotifier struct {
	started chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) Notify(ctx context.Context, event models.TodoEvent) error {
	n.started <- struct{}{}
	<-n.release
	return nil
}

func (n *blockingNotifier) Close() {}

func TestSlowNotifierDoesNotBlockOtherRequests(t *testing.T) {
	notifier := &blockingNotifier{started: make(chan struct{}, 1), release: make(chan struct{})}
	svc := NewTodoService(store.NewMemoryStore(models.User{Name: "Matti", Todos: []string{"Work"}}), notifier)
	ctx := context.Background()

	added := make(chan error, 1)
	go func() {
		_, err := svc.AddTodo(ctx, "Jukka", "Eat")
		added <- err
	}()

	select {
	case <-notifier.started:
	case <-time.After(time.Second):
		t.Fatal("AddTodo never published its event")
	}

	listed := make(chan []string, 1)
	go func() {
		todos, err := svc.ListTodos(ctx, "Matti")
		assert.NoError(t, err)
		listed <- todos
	}()

	select {
	case todos := <-listed:
		assert.Equal(t, []string{"Work"}, todos)
	case <-time.After(time.Second):
		t.Fatal("ListTodos waited for the event publish")
	}

	close(notifier.release)
	require.NoError(t, <-added)
}
