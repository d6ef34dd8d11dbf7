package catalog

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		ID  ID   `json:"id"`
		IDs []ID `json:"ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","ids":[3,"1"," 2 "]}`), &body))
	assert.Equal(t, ID(7), body.ID)
	assert.Equal(t, []int64{3, 1, 2}, Int64s(body.IDs))

	assert.Error(t, json.Unmarshal([]byte(`{"id":"seven"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1.5}`), &body))
}

func TestLookupField(t *testing.T) {
	f, ok := LookupField(TableFooter, "storeInfo")
	require.True(t, ok)
	assert.Equal(t, FooterStoreInfo, f)
	assert.Equal(t, "footer.storeInfo", f.String())

	_, ok = LookupField(TableHeader, "password")
	assert.False(t, ok)
	_, ok = LookupField(Table("admin"), "token")
	assert.False(t, ok)
}

func TestFieldsIsACopy(t *testing.T) {
	fs := Fields()
	fs[0] = Field{}
	assert.Equal(t, HeaderIcon, Fields()[0])
}

func TestErrorHelpers(t *testing.T) {
	err := error(Invalid("%s is too long", "header.title"))
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "header.title is too long", e.Message)

	assert.Equal(t, "product not found", NotFound("product").Message)
	_, ok = AsError(ErrNotFound)
	assert.False(t, ok)
}
