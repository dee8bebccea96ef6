package web_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

const newTalkJSON = `{"title":"Fuzzing","abstract":"Find bugs","level":300,"speaker":{"firstName":"Rob","lastName":"Pike"}}`

func TestTalksController_List(t *testing.T) {
	t.Parallel()

	a, _ := newApp(t)
	e, _ := newTestAPI(t, a)

	rec := serve(e, http.MethodGet, "/api/camps/ATL2024/talks?includeSpeakers=true", "")
	assertStatus(t, rec, http.StatusOK)

	var talks []domain.Talk
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &talks))
	assert.Len(t, talks, 2)
	assert.Equal(t, "Generics", talks[0].Title)
	assert.Equal(t, "Lovelace", talks[0].Speaker.LastName)
}

func TestTalksController_Show(t *testing.T) {
	t.Parallel()

	a, repo := newApp(t)
	e, _ := newTestAPI(t, a)

	talks, _ := repo.TalksByMoniker(ctx, "ATL2024", false)
	id := strconv.Itoa(talks[0].TalkID)

	rec := serve(e, http.MethodGet, "/api/camps/ATL2024/talks/"+id, "")
	assertStatus(t, rec, http.StatusOK)
	assert.NotContains(t, rec.Body.String(), `"speaker"`)

	rec = serve(e, http.MethodGet, "/api/camps/ATL2024/talks/999", "")
	assertStatus(t, rec, http.StatusNotFound)

	rec = serve(e, http.MethodGet, "/api/camps/ATL2024/talks/abc", "")
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestTalksController_Create(t *testing.T) {
	t.Parallel()

	t.Run("create talk", func(t *testing.T) {
		t.Parallel()

		a, repo := newApp(t)
		e, _ := newTestAPI(t, a)

		rec := serve(e, http.MethodPost, "/api/camps/ATL2024/talks", newTalkJSON)
		assertStatus(t, rec, http.StatusCreated)
		assert.Equal(t, "/api/camps/ATL2024/talks", rec.Header().Get("Location"))

		speakers, _ := repo.AllSpeakers(ctx)
		assert.Len(t, speakers, 2)
	})

	t.Run("unknown camp", func(t *testing.T) {
		t.Parallel()

		a, _ := newApp(t)
		e, _ := newTestAPI(t, a)

		rec := serve(e, http.MethodPost, "/api/camps/NOPE/talks", newTalkJSON)
		assertStatus(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "Camp does not exists")
	})
}

func TestTalksController_Update(t *testing.T) {
	t.Parallel()

	a, repo := newApp(t)
	e, _ := newTestAPI(t, a)

	talks, _ := repo.TalksByMoniker(ctx, "ATL2024", false)
	id := strconv.Itoa(talks[0].TalkID)

	rec := serve(e, http.MethodPut, "/api/camps/ATL2024/talks/"+id,
		`{"title":"Generics","abstract":"Updated","level":400,"speaker":{"firstName":"Ada","lastName":"Lovelace"}}`)
	assertStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"level":400`)

	rec = serve(e, http.MethodPut, "/api/camps/ATL2024/talks/999", newTalkJSON)
	assertStatus(t, rec, http.StatusBadRequest)

	// speaker does not exist, the update is not applied completely
	rec = serve(e, http.MethodPut, "/api/camps/ATL2024/talks/"+id, newTalkJSON)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestTalksController_Delete(t *testing.T) {
	t.Parallel()

	t.Run("delete talk", func(t *testing.T) {
		t.Parallel()

		a, repo := newApp(t)
		e, _ := newTestAPI(t, a)

		talks, _ := repo.TalksByMoniker(ctx, "ATL2024", false)

		rec := serve(e, http.MethodDelete, "/api/camps/ATL2024/talks/"+strconv.Itoa(talks[0].TalkID), "")
		assertStatus(t, rec, http.StatusOK)

		rec = serve(e, http.MethodDelete, "/api/camps/ATL2024/talks/"+strconv.Itoa(talks[0].TalkID), "")
		assertStatus(t, rec, http.StatusNotFound)
	})

	t.Run("database failure", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestAPI(t, failingApp())

		rec := serve(e, http.MethodDelete, "/api/camps/ATL2024/talks/1", "")
		assertStatus(t, rec, http.StatusInternalServerError)
	})
}
