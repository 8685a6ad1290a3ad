package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentmesh/orchestrator/internal/domain"
)

func TestExpandPathTemplate(t *testing.T) {
	path, derr := ExpandPathTemplate("/products/{product_id}", map[string]interface{}{"product_id": "1"})
	assert.Nil(t, derr)
	assert.Equal(t, "/products/1", path)
}

func TestExpandPathTemplateMultipleFields(t *testing.T) {
	path, derr := ExpandPathTemplate("/shops/{shop}/items/{item}", map[string]interface{}{
		"shop": "acme",
		"item": float64(42),
	})
	assert.Nil(t, derr)
	assert.Equal(t, "/shops/acme/items/42", path)
}

func TestExpandPathTemplateEscapesValues(t *testing.T) {
	path, derr := ExpandPathTemplate("/files/{name}", map[string]interface{}{"name": "a/b c"})
	assert.Nil(t, derr)
	assert.Equal(t, "/files/a%2Fb%20c", path)
}

func TestExpandPathTemplateMissingFields(t *testing.T) {
	_, derr := ExpandPathTemplate("/a/{x}/b/{y}", map[string]interface{}{"x": "1"})
	assert.NotNil(t, derr)
	assert.Equal(t, domain.ErrCodeBadRequest, derr.Code)
	assert.Contains(t, derr.Message, "y")
}

func TestExpandPathTemplateEmpty(t *testing.T) {
	path, derr := ExpandPathTemplate("", map[string]interface{}{"x": "1"})
	assert.Nil(t, derr)
	assert.Equal(t, "", path)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "s", fieldString("s"))
	assert.Equal(t, "10.5", fieldString(float64(10.5)))
	assert.Equal(t, "3", fieldString(float64(3)))
	assert.Equal(t, "1.50", fieldString(json.Number("1.50")))
	assert.Equal(t, "true", fieldString(true))
	assert.Equal(t, "null", fieldString(nil))
}
