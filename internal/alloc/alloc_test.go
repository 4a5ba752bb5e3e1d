package alloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leafpack/internal/resource"
)

func TestSlab_AllocFree(t *testing.T) {
	s := NewSlab()

	m, err := s.Alloc(32)
	require.NoError(t, err)
	assert.NotZero(t, m.Ref)
	assert.Len(t, m.Words, 4)
	assert.Equal(t, 32, m.Size())

	words, err := s.Translate(m.Ref)
	require.NoError(t, err)
	words[0] = 42
	assert.Equal(t, uint64(42), m.Words[0])

	st := s.Stats()
	assert.Equal(t, uint64(1), st.LiveRegions)
	assert.Equal(t, uint64(32), st.LiveBytes)

	require.NoError(t, s.Free(m.Ref))
	assert.ErrorIs(t, s.Free(m.Ref), ErrInvalidRef)
	_, err = s.Translate(m.Ref)
	assert.ErrorIs(t, err, ErrInvalidRef)

	st = s.Stats()
	assert.Zero(t, st.LiveRegions)
	assert.Zero(t, st.LiveBytes)
}

func TestSlab_ReuseIsZeroed(t *testing.T) {
	s := NewSlab()
	m, err := s.Alloc(16)
	require.NoError(t, err)
	m.Words[1] = 7
	require.NoError(t, s.Free(m.Ref))

	m2, err := s.Alloc(16)
	require.NoError(t, err)
	assert.NotEqual(t, m.Ref, m2.Ref)
	assert.Equal(t, []uint64{0, 0}, m2.Words)
	assert.Equal(t, uint64(1), s.Stats().Reused)
}

func TestSlab_InvalidSize(t *testing.T) {
	s := NewSlab()
	_, err := s.Alloc(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = s.Alloc(12)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestSlab_MemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	s := NewSlab(WithMemoryAcquirer(rc))

	m, err := s.Alloc(48)
	require.NoError(t, err)
	assert.Equal(t, int64(48), rc.MemoryUsage())

	_, err = s.Alloc(24)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	require.NoError(t, s.Free(m.Ref))
	assert.Zero(t, rc.MemoryUsage())

	_, err = s.Alloc(24)
	require.NoError(t, err)
}

func TestSlab_Concurrent(t *testing.T) {
	s := NewSlab(WithMaxFreeListLen(4))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m, err := s.Alloc(8 * (1 + i%4))
				if err != nil {
					t.Error(err)
					return
				}
				if err := s.Free(m.Ref); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	st := s.Stats()
	assert.Equal(t, uint64(800), st.Allocs)
	assert.Equal(t, uint64(800), st.Frees)
	assert.Zero(t, st.LiveRegions)
}
