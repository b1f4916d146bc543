package leads

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateReq(email string) *CreateLeadRequest {
	value := 250.0
	return &CreateLeadRequest{
		FirstName: "Ava",
		LastName:  "Smith",
		Email:     email,
		Phone:     "555-0101",
		Company:   "Acme Corp",
		City:      "New York",
		State:     "NY",
		Source:    SourceWebsite,
		Status:    StatusNew,
		LeadValue: &value,
	}
}

func updateReq(t *testing.T, body string) *UpdateLeadRequest {
	t.Helper()
	var req UpdateLeadRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestInMemoryRepository_Create(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, validCreateReq("ava@acme.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "ava@acme.com", lead.Email)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, 0, lead.Score, "score defaults to zero")
	assert.False(t, lead.IsQualified, "is_qualified defaults to false")
	assert.Nil(t, lead.LastActivityAt)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.Equal(t, lead.CreatedAt, lead.UpdatedAt)
}

func TestInMemoryRepository_Create_Validation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	t.Run("blank required field", func(t *testing.T) {
		req := validCreateReq("a@b.com")
		req.Company = "   "
		_, err := repo.Create(ctx, req)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("missing lead_value", func(t *testing.T) {
		req := validCreateReq("a@b.com")
		req.LeadValue = nil
		_, err := repo.Create(ctx, req)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("invalid source", func(t *testing.T) {
		req := validCreateReq("a@b.com")
		req.Source = "carrier_pigeon"
		_, err := repo.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("invalid status", func(t *testing.T) {
		req := validCreateReq("a@b.com")
		req.Status = "maybe"
		_, err := repo.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("score out of range", func(t *testing.T) {
		req := validCreateReq("a@b.com")
		score := 101
		req.Score = &score
		_, err := repo.Create(ctx, req)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)
	})

	t.Run("negative lead_value", func(t *testing.T) {
		req := validCreateReq("a@b.com")
		value := -1.0
		req.LeadValue = &value
		_, err := repo.Create(ctx, req)
		assert.ErrorIs(t, err, ErrNegativeLeadValue)
	})
}

func TestInMemoryRepository_Create_EmailUnique(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, validCreateReq("ava@acme.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, validCreateReq("AVA@ACME.COM"))
	assert.ErrorIs(t, err, ErrEmailTaken, "email uniqueness is case-insensitive")
}

func TestInMemoryRepository_Create_NormalizesEmail(t *testing.T) {
	repo := NewInMemoryRepository()

	lead, err := repo.Create(context.Background(), validCreateReq("  Ava@Acme.Com "))
	require.NoError(t, err)
	assert.Equal(t, "ava@acme.com", lead.Email)
}

func TestInMemoryRepository_FindSortedAndPaged(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	for _, email := range emails {
		_, err := repo.Create(ctx, validCreateReq(email))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	all, err := repo.Find(ctx, Filter{}, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt),
			"results must be sorted created_at descending")
	}
	assert.Equal(t, "e@x.com", all[0].Email, "newest first")

	total, err := repo.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	pageTwo, err := repo.Find(ctx, Filter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, pageTwo, 2)
	assert.Equal(t, all[2].ID, pageTwo[0].ID)
	assert.Equal(t, all[3].ID, pageTwo[1].ID)

	past, err := repo.Find(ctx, Filter{}, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, past, "skip past the end yields an empty page")
}

func TestInMemoryRepository_FindFiltered(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	won := validCreateReq("won@x.com")
	won.Status = StatusWon
	_, err := repo.Create(ctx, won)
	require.NoError(t, err)

	lost := validCreateReq("lost@x.com")
	lost.Status = StatusLost
	_, err = repo.Create(ctx, lost)
	require.NoError(t, err)

	f := ParseFilter(url.Values{"status": {"won"}})
	found, err := repo.Find(ctx, f, 0, 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "won@x.com", found[0].Email)

	total, err := repo.Count(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestInMemoryRepository_GetByID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validCreateReq("ava@acme.com"))
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByID(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestInMemoryRepository_UpdateByID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validCreateReq("ava@acme.com"))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	t.Run("partial update refreshes updated_at", func(t *testing.T) {
		updated, err := repo.UpdateByID(ctx, created.ID, updateReq(t, `{"status":"won","score":90}`))
		require.NoError(t, err)
		assert.Equal(t, StatusWon, updated.Status)
		assert.Equal(t, 90, updated.Score)
		assert.Equal(t, "ava@acme.com", updated.Email, "untouched fields survive")
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.Equal(t, created.CreatedAt, updated.CreatedAt, "created_at is immutable")
	})

	t.Run("unknown fields are dropped", func(t *testing.T) {
		updated, err := repo.UpdateByID(ctx, created.ID, updateReq(t, `{"status":"lost","unknown_field":"x"}`))
		require.NoError(t, err)
		assert.Equal(t, StatusLost, updated.Status)
	})

	t.Run("validation matches creation", func(t *testing.T) {
		_, err := repo.UpdateByID(ctx, created.ID, updateReq(t, `{"score":1000}`))
		assert.ErrorIs(t, err, ErrScoreOutOfRange)

		_, err = repo.UpdateByID(ctx, created.ID, updateReq(t, `{"status":"bogus"}`))
		assert.ErrorIs(t, err, ErrInvalidStatus)

		_, err = repo.UpdateByID(ctx, created.ID, updateReq(t, `{"first_name":"  "}`))
		assert.ErrorIs(t, err, ErrMissingFields)

		_, err = repo.UpdateByID(ctx, created.ID, updateReq(t, `{"score":"not a number"}`))
		assert.ErrorIs(t, err, ErrInvalidField)
	})

	t.Run("failed update leaves lead untouched", func(t *testing.T) {
		before, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)

		_, err = repo.UpdateByID(ctx, created.ID, updateReq(t, `{"score":1000}`))
		require.Error(t, err)

		after, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("last_activity_at can be set to null", func(t *testing.T) {
		activity := time.Now().Format(time.RFC3339)
		updated, err := repo.UpdateByID(ctx, created.ID, updateReq(t, `{"last_activity_at":"`+activity+`"}`))
		require.NoError(t, err)
		require.NotNil(t, updated.LastActivityAt)

		updated, err = repo.UpdateByID(ctx, created.ID, updateReq(t, `{"last_activity_at":null}`))
		require.NoError(t, err)
		assert.Nil(t, updated.LastActivityAt)
	})

	t.Run("email uniqueness enforced on update", func(t *testing.T) {
		other, err := repo.Create(ctx, validCreateReq("other@acme.com"))
		require.NoError(t, err)

		_, err = repo.UpdateByID(ctx, other.ID, updateReq(t, `{"email":"ava@acme.com"}`))
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.UpdateByID(ctx, "nonexistent", updateReq(t, `{"status":"won"}`))
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})
}

func TestInMemoryRepository_DeleteByID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validCreateReq("ava@acme.com"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	assert.ErrorIs(t, repo.DeleteByID(ctx, created.ID), ErrLeadNotFound)
}
