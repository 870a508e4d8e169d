package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "familydir/pkg/domain"
)

func TestPrincipalDefaults(t *testing.T) {
	ctx := context.Background()
	assert.True(t, PersonID(ctx).IsNil())
	assert.False(t, IsAdmin(ctx))
	assert.Empty(t, RequestID(ctx))
}

func TestWithPrincipal(t *testing.T) {
	personID := id.NewPersonID()
	ctx := WithPrincipal(context.Background(), personID, true)
	assert.Equal(t, personID, PersonID(ctx))
	assert.True(t, IsAdmin(ctx))
}

func TestWithTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
}
