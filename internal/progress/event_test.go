package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent(stage Stage) Event {
	return Event{
		RunID:       UUIDToBytes(uuid.New()),
		TS:          time.Now().UTC(),
		Stage:       stage,
		Site:        "example.com",
		StatusClass: Status2xx,
	}
}

func TestEvent_Validate(t *testing.T) {
	t.Parallel()

	t.Run("all stages accept a complete event", func(t *testing.T) {
		t.Parallel()
		for _, stage := range []Stage{
			StageRunStart, StageRunDone, StageRunError,
			StageFetchStart, StageFetchDone, StageFetchFailed,
			StageMediaDispatch,
		} {
			assert.NoError(t, validEvent(stage).Validate(), string(stage))
		}
	})

	t.Run("missing run id", func(t *testing.T) {
		t.Parallel()
		evt := validEvent(StageRunStart)
		evt.RunID = [16]byte{}
		assert.Error(t, evt.Validate())
	})

	t.Run("missing timestamp", func(t *testing.T) {
		t.Parallel()
		evt := validEvent(StageRunStart)
		evt.TS = time.Time{}
		assert.Error(t, evt.Validate())
	})

	t.Run("unknown stage", func(t *testing.T) {
		t.Parallel()
		evt := validEvent(Stage("BOGUS"))
		assert.Error(t, evt.Validate())
	})

	t.Run("fetch start requires site", func(t *testing.T) {
		t.Parallel()
		evt := validEvent(StageFetchStart)
		evt.Site = ""
		assert.Error(t, evt.Validate())
	})

	t.Run("fetch done requires status class", func(t *testing.T) {
		t.Parallel()
		evt := validEvent(StageFetchDone)
		evt.StatusClass = ""
		assert.Error(t, evt.Validate())
	})

	t.Run("negative duration", func(t *testing.T) {
		t.Parallel()
		evt := validEvent(StageRunDone)
		evt.Dur = -time.Second
		assert.Error(t, evt.Validate())
	})
}

func TestUUIDRoundTrip(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	evt := Event{RunID: UUIDToBytes(id)}
	require.Equal(t, id, evt.RunUUID())
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Status2xx, ClassifyStatus(200))
	assert.Equal(t, Status2xx, ClassifyStatus(204))
	assert.Equal(t, Status3xx, ClassifyStatus(301))
	assert.Equal(t, Status4xx, ClassifyStatus(404))
	assert.Equal(t, Status5xx, ClassifyStatus(503))
	assert.Equal(t, StatusOther, ClassifyStatus(0))
	assert.Equal(t, StatusOther, ClassifyStatus(999))
}
