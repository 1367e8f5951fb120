package model

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr []string
	}{
		{name: "valid", req: CreateUserRequest{Email: "a@x.io", Name: "A"}},
		{name: "email not checked for format", req: CreateUserRequest{Email: "not-an-email", Name: "A"}},
		{name: "missing email", req: CreateUserRequest{Name: "A"}, wantErr: []string{"Email"}},
		{name: "missing both", req: CreateUserRequest{}, wantErr: []string{"Email", "Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var fields []string
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			assert.Equal(t, tt.wantErr, fields)
		})
	}
}

func TestUpdateUserRequest(t *testing.T) {
	t.Run("empty patch is valid and has no changes", func(t *testing.T) {
		req := UpdateUserRequest{ID: 1}
		assert.NoError(t, req.Validate())
		assert.False(t, req.HasChanges())
	})

	t.Run("supplied field must be non-empty", func(t *testing.T) {
		req := UpdateUserRequest{ID: 1, Name: strPtr("")}
		assert.Error(t, req.Validate())
	})

	t.Run("single field", func(t *testing.T) {
		req := UpdateUserRequest{ID: 1, Email: strPtr("b@x.io")}
		assert.NoError(t, req.Validate())
		assert.True(t, req.HasChanges())
	})

	t.Run("absent vs null in JSON", func(t *testing.T) {
		var req UpdateUserRequest
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Alicia","id":99}`), &req))
		assert.Nil(t, req.Email)
		require.NotNil(t, req.Name)
		assert.Equal(t, "Alicia", *req.Name)
		assert.Zero(t, req.ID, "id only comes from the path")
	})
}

func TestDeleteUserResponse_JSON(t *testing.T) {
	body, err := json.Marshal(NewDeleteUserResponse(User{ID: 1, Email: "a@x.io", Name: "Alice"}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"message":"User deleted successfully","user":{"id":1,"email":"a@x.io","name":"Alice"}}`,
		string(body))
}
