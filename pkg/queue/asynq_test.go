package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAsynqQueueBadURL(t *testing.T) {
	_, err := NewAsynqQueue(&Options{URL: "not-a-redis-uri"})

	assert.NotNil(t, err)
}

func TestRunWithoutRegister(t *testing.T) {
	a, err := NewAsynqQueue(&Options{URL: "redis://localhost:6379/0"})
	assert.Nil(t, err)

	assert.NotNil(t, a.Run())
}

func TestRegisterBuildsServerOnce(t *testing.T) {
	a, err := NewAsynqQueue(&Options{URL: "redis://localhost:6379/0", Concurrency: 3})
	assert.Nil(t, err)

	assert.Nil(t, a.Register(func(jobID string) error { return nil }))
	srv, mux := a.srv, a.mux
	assert.NotNil(t, srv)
	assert.NotNil(t, mux)

	// a second handler reuses the same server & mux
	assert.Nil(t, a.Register(func(jobID string) error { return nil }))
	assert.Equal(t, srv, a.srv)
	assert.Equal(t, mux, a.mux)
}

func TestCloseWithoutServer(t *testing.T) {
	a, err := NewAsynqQueue(&Options{URL: "redis://localhost:6379/0"})
	assert.Nil(t, err)

	assert.Nil(t, a.Close())
}
