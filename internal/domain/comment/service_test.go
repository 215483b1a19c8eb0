package comment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := logtest.NewNullLogger()
	s := NewService(client, logger)
	s.now = func() time.Time { return time.UnixMilli(1731000000000) }
	return s, mr
}

func TestAdd_NewestFirst(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, 7, &CreateCommentRequest{Name: "Laura", Text: "  Llegó rápido  "})
	require.NoError(t, err)
	_, err = s.Add(ctx, 7, &CreateCommentRequest{Text: "Buena calidad"})
	require.NoError(t, err)

	list, err := s.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, Comment{Name: AnonymousName, Text: "Buena calidad", Date: 1731000000000}, list[0])
	assert.Equal(t, "Llegó rápido", list[1].Text)
	assert.Equal(t, "Laura", list[1].Name)

	other, err := s.List(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAdd_Validation(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Add(context.Background(), 1, &CreateCommentRequest{Name: "Ana", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)

	c, err := s.Add(context.Background(), 1, &CreateCommentRequest{Text: strings.Repeat("ñ", MaxTextLength+50)})
	require.NoError(t, err)
	assert.Equal(t, MaxTextLength, len([]rune(c.Text)))
}

func TestAdd_CapsHistory(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < MaxPerProduct+3; i++ {
		_, err := s.Add(ctx, 1, &CreateCommentRequest{Text: "ok"})
		require.NoError(t, err)
	}

	list, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, MaxPerProduct)
}

func TestList_ReadsBrowserFormat(t *testing.T) {
	s, mr := newTestService(t)
	require.NoError(t, mr.Set("comments:product:3", `[{"name":"","text":"hola","date":1731000000000}]`))

	list, err := s.List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, AnonymousName, list[0].Name)
	assert.Equal(t, time.UnixMilli(1731000000000), list[0].Time())
}

func TestList_CorruptData(t *testing.T) {
	s, mr := newTestService(t)
	require.NoError(t, mr.Set("comments:product:3", `{broken`))

	_, err := s.List(context.Background(), 3)
	assert.Error(t, err)
}
