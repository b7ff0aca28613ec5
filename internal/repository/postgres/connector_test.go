package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

// newTestConnector returns a LazyConnector whose opener hands out dbs in order.
func newTestConnector(t *testing.T, dbs ...*sql.DB) (*LazyConnector, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	c := NewLazyConnector("postgres://test", time.Second)
	c.open = func(dsn string, connectTimeout time.Duration) (*sql.DB, error) {
		n := int(calls.Add(1)) - 1
		require.Equal(t, "postgres://test", dsn)
		require.Equal(t, time.Second, connectTimeout)
		if n >= len(dbs) {
			return nil, errors.New("no more test databases")
		}
		return dbs[n], nil
	}
	return c, &calls
}

func TestLazyConnector_MemoizesHandle(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	c, calls := newTestConnector(t, db)
	ctx := context.Background()

	first, err := c.Conn(ctx)
	require.NoError(t, err)
	second, err := c.Conn(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLazyConnector_ResetsAfterFailure(t *testing.T) {
	failing, failMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	failMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	failMock.ExpectClose()

	healthy, okMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer healthy.Close()
	okMock.ExpectPing()

	c, calls := newTestConnector(t, failing, healthy)
	ctx := context.Background()

	_, err = c.Conn(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "connection refused")

	got, err := c.Conn(ctx)
	require.NoError(t, err)
	assert.Same(t, healthy, got)
	assert.Equal(t, int32(2), calls.Load())
	require.NoError(t, failMock.ExpectationsWereMet())
	require.NoError(t, okMock.ExpectationsWereMet())
}

func TestLazyConnector_OpenError(t *testing.T) {
	c := NewLazyConnector("postgres://test", time.Second)
	c.open = func(string, time.Duration) (*sql.DB, error) {
		return nil, errors.New("bad dsn")
	}

	_, err := c.Conn(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestLazyConnector_ConcurrentCallersShareOneAttempt(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	c, calls := newTestConnector(t, db)
	ctx := context.Background()

	var wg sync.WaitGroup
	got := make([]*sql.DB, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := c.Conn(ctx)
			if err == nil {
				got[i] = conn
			}
		}(i)
	}
	wg.Wait()

	for _, conn := range got {
		assert.Same(t, db, conn)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazyConnector_CloseAllowsReconnect(t *testing.T) {
	first, firstMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	firstMock.ExpectPing()
	firstMock.ExpectClose()

	second, secondMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	secondMock.ExpectPing()
	secondMock.ExpectClose()

	c, calls := newTestConnector(t, first, second)
	ctx := context.Background()

	_, err = c.Conn(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	got, err := c.Conn(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, int32(2), calls.Load())
	require.NoError(t, c.Close())
	require.NoError(t, firstMock.ExpectationsWereMet())
	require.NoError(t, secondMock.ExpectationsWereMet())
}

func TestLazyConnector_CloseWithoutConnect(t *testing.T) {
	c := NewLazyConnector("postgres://test", 0)
	assert.Equal(t, DefaultConnectTimeout, c.timeout)
	require.NoError(t, c.Close())
}

// silentListener accepts TCP connections and never answers, like a wedged server.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			conn.Close()
		}
	})
	return ln.Addr().String()
}

func TestLazyConnector_UnresponsiveServerFailsFast(t *testing.T) {
	addr := silentListener(t)
	c := NewLazyConnector("postgres://app@"+addr+"/events?sslmode=disable", 200*time.Millisecond)
	defer c.Close()

	type result struct {
		db  *sql.DB
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		db, err := c.Conn(context.Background())
		done <- result{db, err}
	}()

	select {
	case res := <-done:
		require.Error(t, res.err)
		assert.Nil(t, res.db)
		assert.ErrorIs(t, res.err, domain.ErrStorage)
		assert.Less(t, time.Since(start), 5*time.Second)
	case <-time.After(10 * time.Second):
		t.Fatal("Conn blocked on a server that never completes the handshake")
	}

	// The mutex is released, so a follow-up caller gets its own bounded attempt.
	_, err := c.Conn(context.Background())
	require.Error(t, err)
}

func TestLazyConnector_DSNTimeoutTakesPrecedence(t *testing.T) {
	addr := silentListener(t)
	c := NewLazyConnector("postgres://app@"+addr+"/events?sslmode=disable&connect_timeout=1", time.Hour)
	defer c.Close()

	start := time.Now()
	_, err := c.Conn(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestHealthCheck_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("server closed the connection"))

	hc := NewHealthCheck(NewStaticConnector(db))
	require.NoError(t, hc.Ping(context.Background()))

	err = hc.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_ConnectorFailure(t *testing.T) {
	hc := NewHealthCheck(failingConnector{err: domain.ErrStorage})
	assert.ErrorIs(t, hc.Ping(context.Background()), domain.ErrStorage)
}
