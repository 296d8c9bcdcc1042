package eventbridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plant-backend/domain/events"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func createdEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewPlantCreated("p", "u", i+1, "name", nil, "store", time.Now())
	}
	return out
}

func TestPublisher_PublishBatch(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		if len(in.Entries) != 10 {
			return false
		}
		var detail map[string]interface{}
		if err := json.Unmarshal([]byte(aws.ToString(in.Entries[0].Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(in.Entries[0].DetailType) == events.TypePlantCreated &&
			aws.ToString(in.Entries[0].Source) == "plant-backend" &&
			detail["human_id"] == float64(1)
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 2
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(client, "plant-events", "plant-backend", zap.NewNop())

	require.NoError(t, p.PublishBatch(context.Background(), createdEvents(12)))
	client.AssertExpectations(t)
}

func TestPublisher_FailedEntries(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
		},
	}, nil)

	p := NewPublisher(client, "plant-events", "plant-backend", zap.NewNop())

	assert.EqualError(t, p.Publish(context.Background(), createdEvents(1)[0]), "1 events failed to publish")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NewNopPublisher(zap.NewNop()).PublishBatch(context.Background(), createdEvents(3)))
}
