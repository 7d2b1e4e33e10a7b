package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_ValidateVariants(t *testing.T) {
	create := NewCreateAction(NewLocalID(), EntryData{FirstName: "Ana", LastNames: "Ruiz"})
	require.NoError(t, create.Validate())

	update := NewUpdateAction(RemoteID("id1"), EntryData{FirstName: "Ana", LastNames: "Ruiz"})
	require.NoError(t, update.Validate())

	del := NewDeleteAction(RemoteID("id1"))
	require.NoError(t, del.Validate())
}

func TestAction_ValidateRejectsBadShapes(t *testing.T) {
	assert.Error(t, Action{Kind: ActionCreate}.Validate(), "kind without payload")

	assert.Error(t, Action{
		Kind:   ActionCreate,
		Create: &CreateAction{},
		Delete: &DeleteAction{ID: RemoteID("x")},
	}.Validate(), "two variants set")

	assert.Error(t, Action{Kind: "RENAME", Create: &CreateAction{}}.Validate(), "unknown kind")

	assert.Error(t, NewUpdateAction(EntryID{}, EntryData{}).Validate(), "update without target")
	assert.Error(t, NewDeleteAction(EntryID{}).Validate(), "delete without target")
}

func TestAction_EncodeDecodeRoundTrip(t *testing.T) {
	tempID := NewLocalID()
	original := NewCreateAction(tempID, EntryData{
		FirstName: "José",
		LastNames: "Martínez",
		Locality:  "Centro",
	})

	payload, err := EncodeAction(original)
	require.NoError(t, err)

	decoded, err := DecodeAction(payload)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, decoded.Kind)
	require.NotNil(t, decoded.Create)
	assert.True(t, decoded.Create.TempID.IsLocal())
	assert.Equal(t, tempID.String(), decoded.Create.TempID.String())
	assert.Equal(t, "José Martínez", decoded.Create.Data.FullName())
}

func TestDecodeAction_RejectsInvalid(t *testing.T) {
	_, err := DecodeAction([]byte(`{"kind":"UPDATE"}`))
	assert.Error(t, err)

	_, err = DecodeAction([]byte(`not json`))
	assert.Error(t, err)
}

func TestAction_Label(t *testing.T) {
	create := NewCreateAction(NewLocalID(), EntryData{FirstName: "Luz", LastNames: "Vega"})
	assert.Equal(t, "CREATE: Luz Vega", create.Label())

	del := NewDeleteAction(RemoteID("id9"))
	assert.Equal(t, "DELETE: id9", del.Label())
}
