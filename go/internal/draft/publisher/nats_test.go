package publisher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftkit/draftroom/go/internal/draft/events"
)

func TestSubjectFor(t *testing.T) {
	roomID := uuid.MustParse("2f9d3a70-1111-4a2b-9c3d-000000000042")
	env, err := events.NewEnvelope(roomID, events.EventTypePickMade, time.Now(), events.PickMadePayload{})
	require.NoError(t, err)

	require.Equal(t,
		"draft.rooms.2f9d3a70-1111-4a2b-9c3d-000000000042.PickMade",
		subjectFor(env),
	)
}
