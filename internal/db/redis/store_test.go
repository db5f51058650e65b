package redis

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/shopassist/internal/db"
)

const (
	rowKey1 = "shopassist:catalog:row:000001"
	rowKey2 = "shopassist:catalog:row:000002"
)

func newMockStore(t *testing.T) (*Store, *mock.Client) {
	t.Helper()
	c := mock.NewClient(gomock.NewController(t))
	return NewStoreForTest(c), c
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPing(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG")))

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(context.DeadlineExceeded))

	err := s.Ping(context.Background())
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	var dbErr *db.Error
	if errors.As(err, &dbErr); dbErr.Op != db.OpPing {
		t.Errorf("op = %s, want %s", dbErr.Op, db.OpPing)
	}
}

func TestWaitForReady(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG")))

	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_RetriesUntilUp(t *testing.T) {
	s, c := newMockStore(t)
	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PING")).
			Return(mock.ErrorResult(errors.New("LOADING dataset in memory"))).
			Times(2),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PING")).
			Return(mock.Result(mock.RedisString("PONG"))),
	)

	if err := s.WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !isDBError(err) {
		t.Errorf("expected the last ping error to be joined, got %v", err)
	}
}

func TestHSetMulti(t *testing.T) {
	s, c := newMockStore(t)

	var got [][]string
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			for _, cmd := range cmds {
				got = append(got, cmd.Commands())
			}
			return []rueidis.RedisResult{
				mock.Result(mock.RedisInt64(2)),
				mock.Result(mock.RedisInt64(1)),
			}
		})

	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: rowKey1, Fields: map[string]string{"name": "Desk Lamp", "price": "45 USD"}},
		{Key: rowKey2, Fields: map[string]string{"name": "Ceramic Vase"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pipelined commands, got %d", len(got))
	}
	if got[0][0] != "HSET" || got[0][1] != rowKey1 || len(got[0]) != 6 {
		t.Errorf("first command = %v", got[0])
	}
	if !slices.Contains(got[1], "Ceramic Vase") {
		t.Errorf("second command = %v", got[1])
	}
}

func TestHSetMulti_Errors(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		s := NewStoreForTest(nil) // rejected before any round-trip
		if err := s.HSetMulti(context.Background(), []db.HashSetItem{{Key: rowKey1}}); !isDBError(err) {
			t.Fatalf("expected db.Error, got %v", err)
		}
	})

	t.Run("one command fails", func(t *testing.T) {
		s, c := newMockStore(t)
		c.EXPECT().
			DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]rueidis.RedisResult{
				mock.Result(mock.RedisInt64(1)),
				mock.ErrorResult(context.DeadlineExceeded),
			})

		err := s.HSetMulti(context.Background(), []db.HashSetItem{
			{Key: rowKey1, Fields: map[string]string{"name": "a"}},
			{Key: rowKey2, Fields: map[string]string{"name": "b"}},
		})
		if !isDBError(err) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected wrapped db.Error, got %v", err)
		}
	})
}

func TestHSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAllMulti(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"name":  mock.RedisString("Desk Lamp"),
				"price": mock.RedisString("45 USD"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
		})

	rows, err := s.HGetAllMulti(context.Background(), []string{rowKey1, rowKey2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rows))
	}
	if rows[0]["name"] != "Desk Lamp" || rows[0]["price"] != "45 USD" {
		t.Errorf("first row = %v", rows[0])
	}
	if len(rows[1]) != 0 {
		t.Errorf("vanished key should yield an empty map, got %v", rows[1])
	}
}

func TestHGetAllMulti_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	if _, err := s.HGetAllMulti(context.Background(), []string{rowKey1}); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestHGetAllMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	rows, err := s.HGetAllMulti(context.Background(), nil)
	if err != nil || rows != nil {
		t.Fatalf("got %v, %v; want nil, nil", rows, err)
	}
}

func TestDel(t *testing.T) {
	s, c := newMockStore(t)

	var got [][]string
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			out := make([]rueidis.RedisResult, len(cmds))
			for i, cmd := range cmds {
				got = append(got, cmd.Commands())
				out[i] = mock.Result(mock.RedisInt64(1))
			}
			return out
		})

	if err := s.Del(context.Background(), rowKey1, rowKey2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || !slices.Equal(got[0], []string{"DEL", rowKey1}) || !slices.Equal(got[1], []string{"DEL", rowKey2}) {
		t.Errorf("commands = %v, want one DEL per key", got)
	}

	// no keys, no round-trip
	if err := s.Del(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDel_KeysInDifferentSlots(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl, mock.WithSlotCheck())
	s := NewStoreForTest(c)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	// row keys without a hash tag hash to different cluster slots
	if err := s.Del(context.Background(), "shopassist:catalog:row:000000", "shopassist:catalog:row:000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDel_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.ErrorResult(errors.New("READONLY")),
		})

	err := s.Del(context.Background(), rowKey1, rowKey2)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	var dbErr *db.Error
	if errors.As(err, &dbErr); dbErr.Op != db.OpDel {
		t.Errorf("op = %s, want %s", dbErr.Op, db.OpDel)
	}
}

func scanPage(cursor int64, keys ...string) rueidis.RedisResult {
	elems := make([]rueidis.RedisMessage, len(keys))
	for i, k := range keys {
		elems[i] = mock.RedisString(k)
	}
	return mock.Result(mock.RedisArray(mock.RedisInt64(cursor), mock.RedisArray(elems...)))
}

func TestScan(t *testing.T) {
	s, c := newMockStore(t)
	pattern := "shopassist:catalog:row:*"

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "SCAN" && cmd[1] == "0" && cmd[3] == pattern
			})).
			Return(scanPage(42, rowKey2)),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "SCAN" && cmd[1] == "42"
			})).
			Return(scanPage(0, rowKey1)),
	)

	keys, err := s.Scan(context.Background(), pattern)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(keys, []string{rowKey2, rowKey1}) {
		t.Errorf("keys = %v", keys)
	}
}

func TestScan_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.ErrorResult(context.DeadlineExceeded))

	if _, err := s.Scan(context.Background(), "p:*"); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}
