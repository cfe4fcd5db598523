package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStorage map[string][]byte

func (m mapStorage) Get(_ context.Context, key []byte) ([]byte, error) {
	v, ok := m[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m mapStorage) Set(_ context.Context, key []byte, value []byte) error {
	m[string(key)] = value
	return nil
}

type record struct {
	N int `json:"n"`
}

func TestItemLoadMissing(t *testing.T) {
	ctx := context.Background()
	item := NewItem[record]("rec")
	s := mapStorage{}

	_, err := item.Load(ctx, s)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := item.MayLoad(ctx, s)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestItemSaveAndUpdate(t *testing.T) {
	ctx := context.Background()
	item := NewItem[record]("rec")
	s := mapStorage{}

	require.NoError(t, item.Save(ctx, s, record{N: 1}))
	assert.JSONEq(t, `{"n":1}`, string(s["rec"]))

	next, err := item.Update(ctx, s, func(r record) (record, error) {
		r.N += 41
		return r, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, next.N)

	boom := errors.New("boom")
	_, err = item.Update(ctx, s, func(r record) (record, error) {
		r.N = 0
		return r, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := item.Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 42, got.N)
}
