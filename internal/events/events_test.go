package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dojosmash/dojo-smash/internal/model"
)

func TestMultiFansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, Nop{}, b}

	m.Publish(context.Background(), model.Event{Type: model.EventUserCreated})
	m.Publish(context.Background(), model.Event{Type: model.EventUserDeleted})

	want := []model.EventType{model.EventUserCreated, model.EventUserDeleted}
	assert.Equal(t, want, a.Types())
	assert.Equal(t, want, b.Types())

	a.Reset()
	assert.Empty(t, a.Events())
	assert.Len(t, b.Events(), 2)
}
