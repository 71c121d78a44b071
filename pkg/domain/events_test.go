package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeHooks(t *testing.T) {
	var calls []string

	first := InteractionHooks{
		OnNodeSelected: func(ctx context.Context, e *SelectionEvent) {
			calls = append(calls, "first:"+e.NodeID)
		},
		OnGesture: func(ctx context.Context, e *GestureEvent) {
			calls = append(calls, "first:"+e.Gesture)
		},
	}
	second := InteractionHooks{
		OnNodeSelected: func(ctx context.Context, e *SelectionEvent) {
			calls = append(calls, "second:"+e.NodeID)
		},
		// OnGesture left nil on purpose.
	}

	merged := MergeHooks(first, second)
	ctx := context.Background()

	merged.OnNodeSelected(ctx, &SelectionEvent{NodeID: "api"})
	merged.OnGesture(ctx, &GestureEvent{Gesture: GestureDrag, Phase: GesturePhaseStart})
	merged.OnEditPulse(ctx, &PulseEvent{Reason: PulseNoSession})

	assert.Equal(t, []string{"first:api", "second:api", "first:drag"}, calls)
}

func TestMergeHooksPreservesOrder(t *testing.T) {
	var order []int
	hooks := make([]InteractionHooks, 3)
	for i := range hooks {
		i := i
		hooks[i] = InteractionHooks{
			OnNodeMoved: func(ctx context.Context, e *NodeEvent) {
				order = append(order, i)
			},
		}
	}

	MergeHooks(hooks...).OnNodeMoved(context.Background(), &NodeEvent{NodeID: "db"})
	assert.Equal(t, []int{0, 1, 2}, order)
}
