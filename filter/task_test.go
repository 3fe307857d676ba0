package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rspamd/rspamd-filter-go/config"
)

func TestNewTaskFromMessage(t *testing.T) {
	cfg := config.NewConfig()

	a := NewTaskFromMessage(cfg, []byte("message one"))
	b := NewTaskFromMessage(cfg, []byte("message one"))
	c := NewTaskFromMessage(cfg, []byte("message two"))

	assert.NotEmpty(t, a.MessageID)
	assert.Equal(t, a.MessageID, b.MessageID)
	assert.NotEqual(t, a.MessageID, c.MessageID)
}

func TestPoolDestructorOrder(t *testing.T) {
	var order []int

	p := &Pool{}
	p.AddDestructor(func() { order = append(order, 1) })
	p.AddDestructor(func() { order = append(order, 2) })
	p.Destroy()

	// Reverse registration order, like the scanner memory pool
	assert.Equal(t, []int{2, 1}, order)

	p.Destroy()
	assert.Len(t, order, 2)
}

func TestTaskLogger(t *testing.T) {
	task := NewTask(nil)
	assert.NotNil(t, task.Logger())

	task = NewTask(config.NewConfig())
	assert.NotNil(t, task.Logger())
}

func TestSettingsMapLookup(t *testing.T) {
	m := SettingsMap{"FOO": 1.5}

	v, ok := m.Lookup("FOO")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = m.Lookup("BAR")
	assert.False(t, ok)
}
