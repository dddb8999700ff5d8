package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

func TestWithID_FromContext(t *testing.T) {
	ctx := tenant.WithID(context.Background(), "taller-norte")
	assert.Equal(t, "taller-norte", tenant.FromContext(ctx))
	assert.Empty(t, tenant.FromContext(context.Background()))
}
