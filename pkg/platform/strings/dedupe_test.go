package strings

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "familydir/pkg/domain"
)

func TestDedupe(t *testing.T) {
	t.Run("keeps first-seen order", func(t *testing.T) {
		assert.Equal(t, []int{3, 1, 2}, Dedupe([]int{3, 1, 3, 2, 1}))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Dedupe[string](nil))
	})

	t.Run("person ids", func(t *testing.T) {
		a := id.PersonID(uuid.New())
		b := id.PersonID(uuid.New())
		assert.Equal(t, []id.PersonID{a, b}, Dedupe([]id.PersonID{a, b, a, a, b}))
	})
}
