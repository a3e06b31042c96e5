package metadata

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_CountsByCause(t *testing.T) {
	r := NewRecorder("test-worker")

	r.RecordError(NewErrorRecord("crawler", "fetch", CauseNetworkFailure, errors.New("timeout")))
	r.RecordError(NewErrorRecord("crawler", "fetch", CauseNetworkFailure, errors.New("reset")))
	r.RecordError(NewErrorRecord("storage", "put", CauseStorageFailure, errors.New("disk full")))

	assert.Equal(t, 2, r.ErrorCount(CauseNetworkFailure))
	assert.Equal(t, 1, r.ErrorCount(CauseStorageFailure))
	assert.Equal(t, 0, r.ErrorCount(CausePolicyDisallow))
	assert.Equal(t, 3, r.TotalErrors())
}

func TestRecorder_FetchEvents(t *testing.T) {
	r := NewRecorder("test-worker")

	r.RecordFetch(NewFetchEvent("https://example.com/", 200, 12*time.Millisecond, "text/html", 0, 1))
	assert.Equal(t, 1, r.TotalFetches())
}

func TestRecorder_ConcurrentEmission(t *testing.T) {
	r := NewRecorder("test-worker")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordError(NewErrorRecord("crawler", "fetch", CauseNetworkFailure, errors.New("x")))
			r.RecordFetch(NewFetchEvent("u", 200, time.Millisecond, "", 0, 0))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.TotalErrors())
	assert.Equal(t, 50, r.TotalFetches())
}

func TestErrorRecord_Accessors(t *testing.T) {
	rec := NewErrorRecord("robotsgate", "fetch", CausePolicyDisallow, errors.New("blocked"),
		NewAttr(AttrHost, "example.com"))

	assert.Equal(t, "robotsgate", rec.Package())
	assert.Equal(t, "fetch", rec.Action())
	assert.EqualValues(t, CausePolicyDisallow, rec.Cause())
	assert.Equal(t, "blocked", rec.Error())
	assert.False(t, rec.ObservedAt().IsZero())
	assert.Len(t, rec.Attrs(), 1)
}
