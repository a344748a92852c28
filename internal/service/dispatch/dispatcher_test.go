package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(buf *bytes.Buffer) *Dispatcher {
	return New(slog.New(slog.NewTextHandler(buf, nil)), nil, time.Second)
}

func TestDispatcher_RunsTasks(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDispatcher(&buf)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		d.Go("email", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	d.Wait()

	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, 5.0, testutil.ToFloat64(d.Counter("email", outcomeOK)))
}

func TestDispatcher_FailureIsLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDispatcher(&buf)

	d.Go("notify", func(ctx context.Context) error {
		return errors.New("smtp down")
	})
	d.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Counter("notify", outcomeFailed)))
	assert.Contains(t, buf.String(), "smtp down")
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDispatcher(&buf)

	d.Go("boom", func(ctx context.Context) error {
		panic("nil map")
	})
	d.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Counter("boom", outcomePanic)))
	assert.Contains(t, buf.String(), "nil map")
}

func TestDispatcher_OutlivesRequest(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDispatcher(&buf)

	type key struct{}
	var (
		ctxErr   atomic.Value
		leaked   atomic.Bool
		deadline atomic.Bool
	)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.SetUserContext(context.WithValue(c.UserContext(), key{}, "request"))
		d.Go("slow", func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			ctxErr.Store(fmt.Sprint(ctx.Err()))
			leaked.Store(ctx.Value(key{}) != nil)
			_, ok := ctx.Deadline()
			deadline.Store(ok)
			return nil
		})
		return c.SendStatus(fiber.StatusAccepted)
	})

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	}
	d.Wait()

	assert.Equal(t, "<nil>", ctxErr.Load())
	assert.False(t, leaked.Load())
	assert.True(t, deadline.Load())
	assert.Equal(t, 5.0, testutil.ToFloat64(d.Counter("slow", outcomeOK)))
	assert.Zero(t, testutil.ToFloat64(d.Counter("slow", outcomePanic)))
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	var buf bytes.Buffer
	d := New(slog.New(slog.NewTextHandler(&buf, nil)), nil, 10*time.Millisecond)

	d.Go("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Counter("stuck", outcomeFailed)))
	assert.Contains(t, buf.String(), "deadline exceeded")
}

func TestDispatcher_CloseDrainsAndRejects(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDispatcher(&buf)

	var done atomic.Bool
	d.Go("slow", func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
		return nil
	})
	d.Close()
	assert.True(t, done.Load())

	d.Go("late", func(ctx context.Context) error {
		t.Error("task ran after close")
		return nil
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Counter("late", outcomeDropped)))
}

func TestNew_RegistersCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), reg, 0)

	d.Go("email", func(ctx context.Context) error { return nil })
	d.Wait()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "school_portal_dispatch_total", families[0].GetName())
}
