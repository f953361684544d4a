package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(CodeDependencyConflict, "被 %d 个数据集引用", 3)
	assert.Equal(t, CodeDependencyConflict, err.Code)
	assert.Equal(t, "被 3 个数据集引用", err.Error())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, CodeNotFound, NewNotFound("x").Code)
	assert.Equal(t, CodeInvalidParam, NewInvalidParam("x").Code)
	assert.Equal(t, CodeForbidden, NewForbidden("x").Code)
	assert.Equal(t, CodeConflict, NewConflict("x").Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeSuccess, CodeOf(nil))
	assert.Equal(t, CodeUnsafeQuery, CodeOf(New(CodeUnsafeQuery, "x")))
	assert.Equal(t, CodeServerError, CodeOf(fmt.Errorf("plain")))
}
